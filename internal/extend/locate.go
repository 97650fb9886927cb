// Package extend finds the newest complete hour of navigation records and
// appends a time-shifted copy of it to the file.
package extend

import (
	"slices"

	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
)

// Located is a block found by Locate together with its position.
type Located struct {
	Start int // index of the block's epoch line in the input
	Block rinex.EpochBlock
}

// Locate returns the blocks whose epoch hour is one less than the hour of
// the last record in lines, oldest first.
//
// The backward scan stops at the first record older than the target hour;
// records are assumed to be in time order. A file without any record yields
// no blocks and no error. Groups cut short by the end of the file are not
// blocks and are left out.
func Locate(lines []rinex.Line) ([]Located, error) {
	lastHour, found, err := lastRecordHour(lines)
	if err != nil || !found {
		return nil, err
	}

	target := lastHour - 1
	var out []Located
	for i := len(lines) - 1; i >= 0; i-- {
		if !lines[i].IsRecord() {
			continue
		}
		hour, err := rinex.EpochHour(lines[i].Text)
		if err != nil {
			return nil, &RequiredFieldError{LineIndex: i, Err: err}
		}
		if hour < target {
			break
		}
		if hour != target {
			continue
		}
		if b, ok := rinex.BlockAt(lines, i); ok {
			out = append(out, Located{Start: i, Block: b})
		}
	}
	slices.Reverse(out)
	return out, nil
}

func lastRecordHour(lines []rinex.Line) (hour int, found bool, err error) {
	for i := len(lines) - 1; i >= 0; i-- {
		if !lines[i].IsRecord() {
			continue
		}
		hour, err := rinex.EpochHour(lines[i].Text)
		if err != nil {
			return 0, false, &RequiredFieldError{LineIndex: i, Err: err}
		}
		return hour, true, nil
	}
	return 0, false, nil
}
