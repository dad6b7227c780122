package nmt

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	punctExp = regexp.MustCompile(`([.!?])`)
	junkExp  = regexp.MustCompile(`[^a-zA-Z.!?]+`)
)

// Normalize turns a raw sentence into a canonical token
// stream: accents are stripped, the text is lowercased,
// sentence punctuation is spaced out, and every other
// non-letter character is dropped.
//
// The result is a single-space-joined string which may be
// empty if the input had no usable content.
func Normalize(s string) string {
	s = stripMarks(strings.ToLower(strings.TrimSpace(s)))
	s = punctExp.ReplaceAllString(s, " $1")
	s = junkExp.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Tokens normalizes a sentence and splits it into tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// stripMarks decomposes the string and removes combining
// marks, turning accented letters into plain ASCII ones.
func stripMarks(s string) string {
	decomposed := norm.NFD.String(s)
	res := make([]rune, 0, len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		res = append(res, r)
	}
	return string(res)
}
