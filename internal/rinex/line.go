// Package rinex models the fixed-width records of a GPS RINEX navigation
// file and the codecs for the time-bearing fields inside them.
package rinex

import "strings"

// MinRecordLen is the shortest line that can carry an epoch timestamp.
const MinRecordLen = 19

// Line is one physical line of a navigation file. Text excludes the line
// terminator; EOL holds it ("\n", "\r\n", or "" for an unterminated last
// line) so the original bytes can be reproduced exactly.
type Line struct {
	Text string
	EOL  string
}

// String returns the line as it appeared in the file.
func (l Line) String() string { return l.Text + l.EOL }

// IsRecord reports whether the line opens a navigation record: at least
// MinRecordLen characters and a leading decimal digit.
func (l Line) IsRecord() bool {
	return len(l.Text) >= MinRecordLen && l.Text[0] >= '0' && l.Text[0] <= '9'
}

// Terminated returns a copy of l that is guaranteed to end with a newline.
func (l Line) Terminated() Line {
	if l.EOL == "" {
		l.EOL = "\n"
	}
	return l
}

// SplitLines breaks data into lines, keeping each terminator. A trailing
// terminator does not produce an extra empty line.
func SplitLines(data string) []Line {
	var lines []Line
	for len(data) > 0 {
		i := strings.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, Line{Text: data})
			break
		}
		text, eol := data[:i], "\n"
		if strings.HasSuffix(text, "\r") {
			text, eol = text[:len(text)-1], "\r\n"
		}
		lines = append(lines, Line{Text: text, EOL: eol})
		data = data[i+1:]
	}
	return lines
}

// Join concatenates lines back into file content.
func Join(lines []Line) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l.Text)
		b.WriteString(l.EOL)
	}
	return b.String()
}
