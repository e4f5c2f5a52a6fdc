package patterns

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize returns the matching form of s: NFKC, case-folded, apostrophes
// dropped, every other run of non-alphanumeric runes collapsed to one space.
//
// "You can't  judge—a Book!" and "you cant judge a book" normalize identically.
func Normalize(s string) string {
	// Casers carry state and must not be shared across goroutines.
	s = cases.Fold().String(norm.NFKC.String(s))

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case isApostrophe(r):
			continue
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

func isApostrophe(r rune) bool {
	switch r {
	case '\'', '’', '‘', 'ʼ':
		return true
	}
	return false
}

// CountWord counts the word-bounded occurrences of the normalized phrase in
// the normalized text.
func CountWord(normalizedText, normalizedPhrase string) int {
	if normalizedPhrase == "" || normalizedText == "" {
		return 0
	}
	padded := " " + normalizedText + " "
	needle := " " + normalizedPhrase + " "
	n := 0
	for i := 0; ; {
		j := strings.Index(padded[i:], needle)
		if j < 0 {
			return n
		}
		n++
		// Resume on the trailing space so adjacent repeats share a boundary.
		i += j + len(needle) - 1
	}
}
