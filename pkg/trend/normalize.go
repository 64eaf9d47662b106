package trend

import (
	"strings"
	"unicode"
)

// NormalizeKeyword canonicalizes a raw keyword into the matching key used
// to merge items across platforms: surrounding whitespace is trimmed, only
// CJK ideographs, ASCII letters and ASCII digits are kept, and ASCII
// letters are lowercased. Two items merge iff their normalized keys are
// equal; the match is exact-after-normalization, never semantic.
func NormalizeKeyword(raw string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case unicode.Is(unicode.Han, r):
			b.WriteRune(r)
		}
	}
	return b.String()
}
