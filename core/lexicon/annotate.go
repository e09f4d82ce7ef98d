package lexicon

import (
	"regexp"
	"strings"
)

// wordRun matches one word token: a maximal run of ASCII letters, optionally
// continued by one or more apostrophe-joined letter groups. Digits and every
// other byte separate tokens, so "2019" contributes no words and
// "state-of-the-art" contributes four.
var wordRun = regexp.MustCompile(`[A-Za-z]+(?:'[A-Za-z]+)*`)

// Text is a string annotated with the interned handle of every word token in
// it, in order of occurrence, duplicates preserved. Texts are built once and
// never mutated.
type Text struct {
	Raw   string
	Words []Word
}

// Annotate tokenizes raw, lowercases each token, and interns it in a.
func Annotate(a *Arena, raw string) Text {
	matches := wordRun.FindAllString(raw, -1)
	words := make([]Word, 0, len(matches))
	for _, m := range matches {
		words = append(words, a.Intern(strings.ToLower(m)))
	}
	return Text{Raw: raw, Words: words}
}

// WordCount reports the number of word tokens in the text.
func (t Text) WordCount() int {
	return len(t.Words)
}

func (t Text) String() string {
	return t.Raw
}
