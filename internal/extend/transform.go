package extend

import (
	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
)

// Field names an optional time-bearing field of a block.
type Field string

const (
	FieldTOE              Field = "toe"
	FieldTransmissionTime Field = "transmission_time"
)

// FieldStatus says what happened to an optional field.
type FieldStatus int

const (
	FieldRewritten FieldStatus = iota
	FieldSkipped
)

func (s FieldStatus) String() string {
	switch s {
	case FieldRewritten:
		return "rewritten"
	case FieldSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// FieldOutcome records the result of shifting one optional field. Reason is
// set only for skipped fields; the line is then left as it was.
type FieldOutcome struct {
	Field  Field
	Status FieldStatus
	Reason error
}

// Result is a transformed block and what happened to its optional fields.
type Result struct {
	Block            rinex.EpochBlock
	TOE              FieldOutcome
	TransmissionTime FieldOutcome
}

// Skipped lists the optional fields that were left untouched.
func (r Result) Skipped() []FieldOutcome {
	var out []FieldOutcome
	for _, o := range []FieldOutcome{r.TOE, r.TransmissionTime} {
		if o.Status == FieldSkipped {
			out = append(out, o)
		}
	}
	return out
}

// Transform shifts every time-bearing field of b by off and returns the new
// block. The epoch timestamp must decode; the time of ephemeris and the
// transmission time are best effort. Lines other than 0, 3 and 6 are copied
// unchanged, and b itself is never modified.
func Transform(b rinex.EpochBlock, off rinex.Offset) (Result, error) {
	out := b

	epoch, err := rinex.ShiftEpochLine(b[rinex.EpochLineIndex].Text, off)
	if err != nil {
		return Result{}, &RequiredFieldError{LineIndex: rinex.EpochLineIndex, Err: err}
	}
	out[rinex.EpochLineIndex].Text = epoch

	res := Result{
		TOE:              FieldOutcome{Field: FieldTOE},
		TransmissionTime: FieldOutcome{Field: FieldTransmissionTime},
	}

	if text, err := rinex.ShiftTOELine(b[rinex.TOELineIndex].Text, off); err != nil {
		res.TOE.Status, res.TOE.Reason = FieldSkipped, err
	} else {
		out[rinex.TOELineIndex].Text = text
	}

	if text, _, err := rinex.ShiftTransmissionLine(b[rinex.TransmissionLineIndex].Text, off); err != nil {
		res.TransmissionTime.Status, res.TransmissionTime.Reason = FieldSkipped, err
	} else {
		out[rinex.TransmissionLineIndex].Text = text
	}

	res.Block = out
	return res, nil
}
