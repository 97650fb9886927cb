package rinex

// DNumber is one D-exponent number found on a line. Text is line[Start:End]
// and includes the optional leading blank or minus sign.
type DNumber struct {
	Text  string
	Start int
	End   int
}

// ScanDNumbers tokenizes every occurrence of the grammar
//
//	[ -]? digits "." digits "D" [+-] digits
//
// left to right without overlap. A leading blank or minus sign belongs to
// the token when the rest of the grammar follows it.
func ScanDNumbers(line string) []DNumber {
	var out []DNumber
	for i := 0; i < len(line); {
		start := i
		end, ok := 0, false
		if c := line[i]; c == ' ' || c == '-' {
			end, ok = scanUnsigned(line, i+1)
		}
		if !ok {
			end, ok = scanUnsigned(line, i)
		}
		if !ok {
			i++
			continue
		}
		out = append(out, DNumber{Text: line[start:end], Start: start, End: end})
		i = end
	}
	return out
}

// scanUnsigned matches digits "." digits "D" [+-] digits at i and returns
// the end offset of the match.
func scanUnsigned(s string, i int) (int, bool) {
	j := skipDigits(s, i)
	if j == i || j >= len(s) || s[j] != '.' {
		return 0, false
	}
	k := skipDigits(s, j+1)
	if k == j+1 || k >= len(s) || s[k] != 'D' {
		return 0, false
	}
	k++
	if k >= len(s) || (s[k] != '+' && s[k] != '-') {
		return 0, false
	}
	m := skipDigits(s, k+1)
	if m == k+1 {
		return 0, false
	}
	return m, true
}

func skipDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}
