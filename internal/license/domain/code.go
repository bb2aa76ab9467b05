package domain

import "strings"

const (
	codeLength = 16
	codeGroup  = 4
)

// NormalizeCode turns arbitrary user input into the canonical activation code
// shape: strip everything outside [A-Za-z0-9], upper-case, keep at most 16
// characters, re-group by 4 with dashes. Total over any input; an incomplete
// code yields a shorter final group. Applied on every keystroke client-side
// and once more server-side before lookup.
func NormalizeCode(raw string) string {
	var kept strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			kept.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			kept.WriteRune(r)
		case r >= 'a' && r <= 'z':
			kept.WriteRune(r - ('a' - 'A'))
		}
		if kept.Len() == codeLength {
			break
		}
	}

	chars := kept.String()
	if chars == "" {
		return ""
	}

	var out strings.Builder
	for i := 0; i < len(chars); i += codeGroup {
		if i > 0 {
			out.WriteByte('-')
		}
		end := i + codeGroup
		if end > len(chars) {
			end = len(chars)
		}
		out.WriteString(chars[i:end])
	}
	return out.String()
}
