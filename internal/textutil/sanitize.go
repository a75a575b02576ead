package textutil

import (
	"strings"
	"unicode"
)

// SafeTitle converts a chapter title into a filename-safe token. Letters,
// digits, underscores, and hyphens are kept, every other character is
// dropped, and each whitespace run in the trimmed remainder collapses to a
// single underscore. "Chapter 4: The Road" becomes "Chapter_4_The_Road".
func SafeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), "_")
}
