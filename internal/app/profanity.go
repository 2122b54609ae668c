package app

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

const maskRune = '*'

// DefaultProfanityWords is used when the configuration lists none.
var DefaultProfanityWords = []string{
	"damn", "hell", "shit", "fuck", "bitch", "bastard", "asshole", "crap",
}

// ProfanityFilter masks listed words in chat text. Matching is per word and
// case-insensitive; a match is replaced by the same number of mask runes.
type ProfanityFilter struct {
	words map[string]struct{}
}

func NewProfanityFilter(words []string) *ProfanityFilter {
	fold := cases.Fold()
	f := &ProfanityFilter{words: make(map[string]struct{}, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		f.words[fold.String(w)] = struct{}{}
	}
	return f
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Clean never rejects text, it only redacts.
func (f *ProfanityFilter) Clean(text string) string {
	if f == nil || len(f.words) == 0 {
		return text
	}
	// cases.Caser is stateful, one per call.
	fold := cases.Fold()
	var b strings.Builder
	b.Grow(len(text))

	start := -1
	flush := func(end int) {
		word := text[start:end]
		if _, bad := f.words[fold.String(word)]; bad {
			b.WriteString(strings.Repeat(string(maskRune), utf8.RuneCountInString(word)))
		} else {
			b.WriteString(word)
		}
		start = -1
	}
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			flush(i)
		}
		b.WriteRune(r)
	}
	if start >= 0 {
		flush(len(text))
	}
	return b.String()
}
