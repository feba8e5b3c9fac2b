// Package lookup answers user-initiated questions about a delivered reminder:
// a cheap offline pronunciation clue, and an AI explanation for meaning.
// Neither call is part of the scheduling core.
package lookup

import (
	"fmt"
	"strings"

	"github.com/notexe/vocab-trainer/internal/srs"
)

// Clue returns a basic phonetic hint for a word: first and last letter plus
// the vowel count.
func Clue(word string) string {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return "N/A (empty word)"
	}
	runes := []rune(word)
	return fmt.Sprintf("Basic: %c-%c V:%d", runes[0], runes[len(runes)-1], srs.CountVowels(word))
}

// FirstWord extracts the leading word of a phrase for clue/explain requests,
// stripped of punctuation.
func FirstWord(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.IndexByte(text, ' '); i > 0 {
		text = text[:i]
	}
	var b strings.Builder
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '\'', r == '-':
			b.WriteRune(r)
		}
	}
	return b.String()
}
