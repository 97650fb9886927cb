package rinex

import (
	"reflect"
	"testing"
)

func TestSplitLinesKeepsTerminators(t *testing.T) {
	data := "a\r\nbb\n\nccc"
	want := []Line{
		{Text: "a", EOL: "\r\n"},
		{Text: "bb", EOL: "\n"},
		{Text: "", EOL: "\n"},
		{Text: "ccc"},
	}
	got := SplitLines(data)
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SplitLines = %+v, want %+v", got, want)
	}
	if Join(got) != data {
		t.Fatalf("Join(SplitLines(x)) = %q, want %q", Join(got), data)
	}
}

func TestSplitLinesTrailingNewline(t *testing.T) {
	if got := SplitLines("x\n"); len(got) != 1 {
		t.Fatalf("SplitLines(x\\n) returned %d lines, want 1", len(got))
	}
	if got := SplitLines(""); len(got) != 0 {
		t.Fatalf("SplitLines(\"\") returned %d lines, want 0", len(got))
	}
}

func TestIsRecord(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"10 24  6 24  4  0  0.0", true},
		{"1234567890123456789", true},
		{"123456789012345678", false},
		{" 1 24  6 24  4  0  0.0", false},
		{"     2.11           N: GPS NAV DATA", false},
	}
	for _, tt := range tests {
		if got := (Line{Text: tt.text}).IsRecord(); got != tt.want {
			t.Fatalf("IsRecord(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestBlockAt(t *testing.T) {
	lines := SplitLines("0\n1\n2\n3\n4\n5\n6\n7\n8\n")
	b, ok := BlockAt(lines, 1)
	if !ok {
		t.Fatal("BlockAt(1) not ok")
	}
	if b[0].Text != "1" || b[7].Text != "8" {
		t.Fatalf("BlockAt(1) = %+v", b)
	}
	if _, ok := BlockAt(lines, 2); ok {
		t.Fatal("BlockAt(2) ok, want short block rejected")
	}
	b[0].Text = "changed"
	if lines[1].Text != "1" {
		t.Fatal("BlockAt shares storage with input")
	}
}
