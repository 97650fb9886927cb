package rinex

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestParseDFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{" 0.123456789012D+04", 1234.56789012},
		{"-1.136868377216D-12", -1.136868377216e-12},
		{"0.100000000000d+06 ", 100000},
		{"4.0", 4},
	}
	for _, tt := range tests {
		got, err := ParseDFloat(tt.in)
		if err != nil {
			t.Fatalf("ParseDFloat(%q): %v", tt.in, err)
		}
		if math.Abs(got-tt.want) > 1e-9*math.Max(1, math.Abs(tt.want)) {
			t.Fatalf("ParseDFloat(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseDFloat("abc"); err == nil {
		t.Fatal("ParseDFloat(abc) succeeded, want error")
	}
}

func TestFormatTOE(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{8434.56789012, "0.843456789012D+04 "},
		{-8434.56789012, "-0.843456789012D+04"},
		{345600, "0.345600000000D+06 "},
		{0, "0.000000000000D+01 "},
		{9.9999999999996, "0.100000000000D+02 "},
		{1.5e-7, "0.150000000000D-06 "},
	}
	for _, tt := range tests {
		got, err := FormatTOE(tt.in)
		if err != nil {
			t.Fatalf("FormatTOE(%v): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("FormatTOE(%v) = %q, want %q", tt.in, got, tt.want)
		}
		if len(got) != FieldWidth {
			t.Fatalf("FormatTOE(%v) width = %d, want %d", tt.in, len(got), FieldWidth)
		}
	}
	if _, err := FormatTOE(math.NaN()); err == nil {
		t.Fatal("FormatTOE(NaN) succeeded, want error")
	}
}

func TestFormatTOEIdempotent(t *testing.T) {
	values := []float64{1234.56789012, 0.000123456789012, 345600, 604799.999, -17.25, 1e-3}
	offsets := []Offset{0, 7200, -7200, 1800.5}
	for _, v := range values {
		for _, off := range offsets {
			first, err := FormatTOE(v + off.Seconds())
			if err != nil {
				t.Fatalf("FormatTOE(%v): %v", v+off.Seconds(), err)
			}
			back, err := ParseDFloat(first)
			if err != nil {
				t.Fatalf("ParseDFloat(%q): %v", first, err)
			}
			second, err := FormatTOE(back)
			if err != nil {
				t.Fatalf("FormatTOE(%v): %v", back, err)
			}
			if first != second {
				t.Fatalf("FormatTOE not idempotent for %v%+v: %q then %q", v, off, first, second)
			}
		}
	}
}

func TestFormatTransmissionTime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{107200, " 1.072000000000D+05"},
		{352800, " 3.528000000000D+05"},
		{-5, "-5.000000000000D+00"},
		{0, " 0.000000000000D+00"},
	}
	for _, tt := range tests {
		if got := FormatTransmissionTime(tt.in); got != tt.want {
			t.Fatalf("FormatTransmissionTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestShiftTOELine(t *testing.T) {
	line := "    0.123456789012D+04 0.000000000000D+00-0.500000000000D+00 0.000000000000D+00"
	got, err := ShiftTOELine(line, 7200)
	if err != nil {
		t.Fatalf("ShiftTOELine: %v", err)
	}
	want := "    0.843456789012D+04 0.000000000000D+00-0.500000000000D+00 0.000000000000D+00"
	if got != want {
		t.Fatalf("ShiftTOELine =\n%q\nwant\n%q", got, want)
	}
}

func TestShiftTOELineMalformed(t *testing.T) {
	line := "    NOT-A-NUMBER-HERE 0.000000000000D+00"
	_, err := ShiftTOELine(line, 7200)
	var pe *ParseError
	if !errors.As(err, &pe) || pe.Field != "toe" {
		t.Fatalf("ShiftTOELine error = %v, want *ParseError for toe", err)
	}
}

func TestShiftTransmissionLineSelectsInRange(t *testing.T) {
	line := "    3.456000000000D+05 7.000000000000D+05"
	got, n, err := ShiftTransmissionLine(line, 7200)
	if err != nil {
		t.Fatalf("ShiftTransmissionLine: %v", err)
	}
	want := "    3.528000000000D+05 7.000000000000D+05"
	if got != want {
		t.Fatalf("ShiftTransmissionLine =\n%q\nwant\n%q", got, want)
	}
	if n.Start != 3 || n.End != 22 {
		t.Fatalf("selected span = [%d,%d), want [3,22)", n.Start, n.End)
	}
	if !strings.HasSuffix(got, " 7.000000000000D+05") {
		t.Fatalf("out-of-range value was modified: %q", got)
	}
}

func TestShiftTransmissionLineRightmostWins(t *testing.T) {
	line := "    1.000000000000D+05 2.000000000000D+05"
	got, _, err := ShiftTransmissionLine(line, 100)
	if err != nil {
		t.Fatalf("ShiftTransmissionLine: %v", err)
	}
	want := "    1.000000000000D+05 2.001000000000D+05"
	if got != want {
		t.Fatalf("ShiftTransmissionLine =\n%q\nwant\n%q", got, want)
	}
}

func TestShiftTransmissionLineNoCandidate(t *testing.T) {
	for _, line := range []string{
		"",
		"    .100000000000D+06",
		"   -1.000000000000D+02 9.000000000000D+05",
	} {
		if _, _, err := ShiftTransmissionLine(line, 7200); err == nil {
			t.Fatalf("ShiftTransmissionLine(%q) succeeded, want error", line)
		}
	}
}
