package extend

import (
	"bufio"
	"fmt"
	"io"

	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
)

// Append returns original followed by every block's lines. The original
// lines are kept byte for byte; each appended line ends with a newline,
// its own terminator when it had one. If the original content does not end
// with a terminator, one is added so the first appended line starts a new
// line.
func Append(original []rinex.Line, blocks []rinex.EpochBlock) []rinex.Line {
	out := make([]rinex.Line, 0, len(original)+len(blocks)*rinex.BlockLines)
	out = append(out, original...)
	if len(blocks) > 0 && len(out) > 0 && out[len(out)-1].EOL == "" {
		out[len(out)-1] = out[len(out)-1].Terminated()
	}
	for _, b := range blocks {
		for _, l := range b {
			out = append(out, l.Terminated())
		}
	}
	return out
}

// WriteLines writes lines to w exactly as they are held.
func WriteLines(w io.Writer, lines []rinex.Line) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		if _, err := bw.WriteString(l.Text); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
		if _, err := bw.WriteString(l.EOL); err != nil {
			return fmt.Errorf("write line: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
