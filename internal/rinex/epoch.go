package rinex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Column layout of the epoch timestamp on the first line of a block.
const (
	EpochFieldStart = 3
	EpochFieldEnd   = 22 // exclusive; 19 characters
	BucketFieldEnd  = 19 // exclusive; the 16 characters used for hour bucketing
)

// Two-digit years below this pivot belong to the 2000s.
const yearPivot = 69

// Timestamp is a calendar time decoded from an epoch field. Year keeps the
// two digits exactly as written.
type Timestamp struct {
	Year        int
	Month       int
	Day         int
	Hour        int
	Minute      int
	Second      int
	Microsecond int
}

// Seconds returns the seconds component including its fraction.
func (t Timestamp) Seconds() float64 {
	return float64(t.Second) + float64(t.Microsecond)/1e6
}

// Time converts t to UTC, mapping the two-digit year onto 1969-2068.
func (t Timestamp) Time() time.Time {
	year := 1900 + t.Year
	if t.Year < yearPivot {
		year = 2000 + t.Year
	}
	return time.Date(year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second,
		t.Microsecond*int(time.Microsecond), time.UTC)
}

// ParseTimestamp decodes a "YY MM DD HH MM SS[.f]" field. Blank padding in
// front of single-digit components is accepted, so both "24  6  1" and
// "24 06 01" read the same. The fraction is optional.
func ParseTimestamp(field string) (Timestamp, error) {
	fail := func(reason string, err error) (Timestamp, error) {
		return Timestamp{}, &ParseError{Field: "epoch", Input: field, Reason: reason, Err: err}
	}

	parts := strings.Split(strings.ReplaceAll(field, "  ", " 0"), " ")
	if len(parts) != 6 {
		return fail(fmt.Sprintf("want 6 components, got %d", len(parts)), nil)
	}

	secPart, fracPart, hasFrac := strings.Cut(parts[5], ".")
	comps := [...]struct {
		name     string
		text     string
		min, max int
		width    int
	}{
		{"year", parts[0], 0, 99, 2},
		{"month", parts[1], 1, 12, 0},
		{"day", parts[2], 1, 31, 0},
		{"hour", parts[3], 0, 23, 0},
		{"minute", parts[4], 0, 59, 0},
		{"second", secPart, 0, 59, 0},
	}
	var vals [len(comps)]int
	for i, c := range comps {
		if c.width > 0 && len(c.text) != c.width {
			return fail(c.name+" must have 2 digits", nil)
		}
		if c.width == 0 && (len(c.text) < 1 || len(c.text) > 2) {
			return fail(c.name+" must have 1 or 2 digits", nil)
		}
		if !isDigits(c.text) {
			return fail(c.name+" is not numeric", nil)
		}
		v, err := strconv.Atoi(c.text)
		if err != nil {
			return fail(c.name+" is not numeric", err)
		}
		if v < c.min || v > c.max {
			return fail(fmt.Sprintf("%s %d out of range", c.name, v), nil)
		}
		vals[i] = v
	}

	micro := 0
	if hasFrac {
		if len(fracPart) < 1 || len(fracPart) > 6 || !isDigits(fracPart) {
			return fail("fractional seconds must have 1 to 6 digits", nil)
		}
		v, err := strconv.Atoi(fracPart + strings.Repeat("0", 6-len(fracPart)))
		if err != nil {
			return fail("fractional seconds are not numeric", err)
		}
		micro = v
	}

	ts := Timestamp{
		Year:        vals[0],
		Month:       vals[1],
		Day:         vals[2],
		Hour:        vals[3],
		Minute:      vals[4],
		Second:      vals[5],
		Microsecond: micro,
	}
	// time.Date normalises Feb 30 into March; reject instead.
	if t := ts.Time(); t.Day() != ts.Day || int(t.Month()) != ts.Month {
		return fail(fmt.Sprintf("day %d does not exist in month %d", ts.Day, ts.Month), nil)
	}
	return ts, nil
}

// FormatTimestamp renders t as the 19-character epoch field
// "YY MM DD HH MM SS.S": year zero-padded to 2, month through minute
// right-justified in 3, then a space and the seconds as %4.1f.
func FormatTimestamp(t time.Time) string {
	t = t.UTC().Round(100 * time.Millisecond)
	sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return fmt.Sprintf("%02d%3d%3d%3d%3d %4.1f",
		t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), sec)
}

// EpochField returns the timestamp columns of a record line. Lines shorter
// than EpochFieldEnd yield whatever columns exist.
func EpochField(text string) string {
	return clip(text, EpochFieldStart, EpochFieldEnd)
}

// EpochHour decodes only the bucketing columns of a record line and returns
// the hour.
func EpochHour(text string) (int, error) {
	ts, err := ParseTimestamp(clip(text, EpochFieldStart, BucketFieldEnd))
	if err != nil {
		return 0, err
	}
	return ts.Hour, nil
}

// ShiftEpochLine rewrites the timestamp of a record line by off, leaving
// the prefix and everything after the field untouched.
func ShiftEpochLine(text string, off Offset) (string, error) {
	ts, err := ParseTimestamp(EpochField(text))
	if err != nil {
		return "", err
	}
	shifted := FormatTimestamp(ts.Time().Add(off.Duration()))
	return clip(text, 0, EpochFieldStart) + shifted + clip(text, EpochFieldEnd, len(text)), nil
}

func clip(s string, from, to int) string {
	if from > len(s) {
		return ""
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
