package rinex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column layout of the time of ephemeris on the fourth line of a block.
const (
	TOEFieldStart = 4
	TOEFieldEnd   = 23 // exclusive; 19 characters
	FieldWidth    = 19
)

// MaxSecondsOfWeek bounds a plausible GPS seconds-of-week value.
const MaxSecondsOfWeek = 604800

// ParseDFloat decodes a FORTRAN-style number whose exponent is introduced
// by D (or d) instead of E. Surrounding blanks are ignored.
func ParseDFloat(s string) (float64, error) {
	str := strings.TrimSpace(strings.NewReplacer("D", "E", "d", "e").Replace(s))
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

// FormatTOE renders v in the navigation-file convention
// "0.dddddddddddd D+ee": twelve mantissa digits behind a literal "0." and an
// exponent one larger than the ordinary scientific one. Non-negative values
// lose their sign column and the result is left-aligned in FieldWidth.
func FormatTOE(v float64) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", fmt.Errorf("cannot format %v", v)
	}
	sign := " "
	if v < 0 {
		sign = "-"
	}
	mant, exp, ok := strings.Cut(strconv.FormatFloat(math.Abs(v), 'E', 11, 64), "E")
	if !ok {
		return "", fmt.Errorf("cannot format %v", v)
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return "", fmt.Errorf("exponent of %v: %w", v, err)
	}
	digits := strings.Replace(mant, ".", "", 1)
	s := fmt.Sprintf("%s0.%sD%+03d", sign, digits, e+1)
	return fmt.Sprintf("%-*s", FieldWidth, strings.TrimSpace(s)), nil
}

// FormatTransmissionTime renders v as a FieldWidth-wide scientific number
// with twelve fraction digits, a blank sign column and a D exponent.
func FormatTransmissionTime(v float64) string {
	return strings.Replace(fmt.Sprintf("% *.12E", FieldWidth, v), "E", "D", 1)
}

// ShiftTOELine adds off to the time of ephemeris on a block's fourth line.
func ShiftTOELine(text string, off Offset) (string, error) {
	field := clip(text, TOEFieldStart, TOEFieldEnd)
	v, err := ParseDFloat(field)
	if err != nil {
		return "", &ParseError{Field: "toe", Input: field, Reason: "not a number", Err: err}
	}
	out, err := FormatTOE(v + off.Seconds())
	if err != nil {
		return "", &ParseError{Field: "toe", Input: field, Reason: "shifted value not representable", Err: err}
	}
	return clip(text, 0, TOEFieldStart) + out + clip(text, TOEFieldEnd, len(text)), nil
}

// ShiftTransmissionLine locates the transmission time on a block's seventh
// line and adds off to it. Candidates are visited rightmost first; the first
// one whose value is a plausible seconds-of-week is rewritten in place and
// every other byte of the line is kept.
func ShiftTransmissionLine(text string, off Offset) (string, DNumber, error) {
	nums := ScanDNumbers(text)
	for i := len(nums) - 1; i >= 0; i-- {
		n := nums[i]
		v, err := ParseDFloat(n.Text)
		if err != nil {
			continue
		}
		if v < 0 || v > MaxSecondsOfWeek {
			continue
		}
		return text[:n.Start] + FormatTransmissionTime(v+off.Seconds()) + text[n.End:], n, nil
	}
	reason := "no seconds-of-week value"
	if len(nums) == 0 {
		reason = "no D-exponent numbers"
	}
	return "", DNumber{}, &ParseError{Field: "transmission_time", Input: text, Reason: reason}
}
