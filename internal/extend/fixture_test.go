package extend

import (
	"fmt"
	"strings"

	"github.com/signalsfoundry/ephemeris-extender/internal/rinex"
)

const navHeader = "     2.10           N: GPS NAV DATA                         RINEX VERSION / TYPE\n" +
	"                                                            END OF HEADER\n"

const zeroField = " 0.000000000000D+00"

// navRecord builds one 8-line GPS navigation record. toe is the 18-character
// time of ephemeris and tx the 19-character transmission time field.
type navRecord struct {
	prn              int
	year, month, day int
	hour, minute     int
	toe              string
	tx               string
}

func (r navRecord) lines() []string {
	toe := r.toe
	if toe == "" {
		toe = "0.144000000000D+05"
	}
	tx := r.tx
	if tx == "" {
		tx = " 1.000000000000D+05"
	}
	orbit := "   " + strings.Repeat(zeroField, 4)
	return []string{
		fmt.Sprintf("%2d %02d%3d%3d%3d%3d %4.1f", r.prn, r.year, r.month, r.day, r.hour, r.minute, 0.0) +
			" 1.234567890123D-04-1.136868377216D-12" + zeroField,
		orbit,
		"   " + " 0.100000000000D+03 0.200000000000D+00 0.300000000000D-05 0.400000000000D+04",
		"    " + toe + zeroField + "-0.500000000000D-07" + zeroField,
		orbit,
		"   " + " 0.500000000000D+00 0.600000000000D+00 0.700000000000D+00 0.800000000000D+00",
		"   " + tx,
		orbit,
	}
}

func navFile(records ...navRecord) string {
	var b strings.Builder
	b.WriteString(navHeader)
	for _, r := range records {
		for _, l := range r.lines() {
			b.WriteString(l)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func rec(prn, hour int) navRecord {
	return navRecord{prn: prn, year: 24, month: 6, day: 24, hour: hour}
}

func texts(lines []rinex.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}
