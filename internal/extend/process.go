package extend

import (
	"errors"

	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
)

// Extended is one appended block and where its source sits in the input.
type Extended struct {
	SourceStart int
	Result
}

// Output is the outcome of Process.
type Output struct {
	Lines    []rinex.Line // original lines followed by the appended blocks
	Blocks   []Extended
	Modified int
}

// Process locates the last complete hour of records in lines, shifts each
// of its blocks by off, and returns the original lines with the shifted
// blocks appended. The input slice is not modified.
func Process(lines []rinex.Line, off rinex.Offset) (Output, error) {
	located, err := Locate(lines)
	if err != nil {
		return Output{}, err
	}
	extended, err := TransformAll(located, off)
	if err != nil {
		return Output{}, err
	}

	blocks := make([]rinex.EpochBlock, len(extended))
	for i, e := range extended {
		blocks[i] = e.Block
	}
	return Output{
		Lines:    Append(lines, blocks),
		Blocks:   extended,
		Modified: len(extended),
	}, nil
}

// TransformAll shifts each located block by off, preserving order.
func TransformAll(located []Located, off rinex.Offset) ([]Extended, error) {
	out := make([]Extended, 0, len(located))
	for _, loc := range located {
		res, err := Transform(loc.Block, off)
		if err != nil {
			var rfe *RequiredFieldError
			if errors.As(err, &rfe) {
				return nil, &RequiredFieldError{LineIndex: loc.Start + rfe.LineIndex, Err: rfe.Err}
			}
			return nil, err
		}
		out = append(out, Extended{SourceStart: loc.Start, Result: res})
	}
	return out, nil
}
