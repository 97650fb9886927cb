package rinex

import (
	"fmt"
	"math"
	"time"
)

// BlockLines is the number of lines in a GPS legacy navigation record.
const BlockLines = 8

// Line indexes inside an EpochBlock that carry time-bearing fields.
const (
	EpochLineIndex        = 0
	TOELineIndex          = 3
	TransmissionLineIndex = 6
)

// EpochBlock is one satellite's navigation parameters for one reference
// epoch. It is an array so that copies never share backing storage.
type EpochBlock [BlockLines]Line

// Lines returns the block as a slice, oldest line first.
func (b EpochBlock) Lines() []Line {
	out := make([]Line, BlockLines)
	copy(out, b[:])
	return out
}

// BlockAt copies the BlockLines lines starting at start. ok is false when
// fewer than BlockLines lines remain.
func BlockAt(lines []Line, start int) (b EpochBlock, ok bool) {
	if start < 0 || start+BlockLines > len(lines) {
		return b, false
	}
	copy(b[:], lines[start:start+BlockLines])
	return b, true
}

// Offset is a signed time shift in seconds.
type Offset float64

// OffsetFromHours converts an hour count, possibly fractional, to an Offset.
func OffsetFromHours(h float64) Offset { return Offset(h * 3600) }

// Seconds returns the offset in seconds.
func (o Offset) Seconds() float64 { return float64(o) }

// Hours returns the offset in hours.
func (o Offset) Hours() float64 { return float64(o) / 3600 }

// Duration converts the offset to a time.Duration rounded to whole
// microseconds, the resolution the timestamp codec carries.
func (o Offset) Duration() time.Duration {
	return time.Duration(math.Round(float64(o)*1e6)) * time.Microsecond
}

// ParseError reports a field that could not be decoded.
type ParseError struct {
	Field  string // "epoch", "toe", "transmission_time"
	Input  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("rinex: invalid %s field %q: %s", e.Field, e.Input, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }
