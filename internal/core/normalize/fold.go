package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Folded is a lower-cased, accent-free copy of a document that remembers,
// for every byte, where it came from in the original text.
type Folded struct {
	Text    string
	source  string
	offsets []int // len(Text)+1 entries
}

// Fold lower-cases s and strips combining marks so "Salário" matches "salario".
func Fold(s string) Folded {
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	var b strings.Builder
	b.Grow(len(s))
	offsets := make([]int, 0, len(s)+1)
	for i, r := range s {
		f := foldRune(stripMarks, r)
		b.WriteString(f)
		for range len(f) {
			offsets = append(offsets, i)
		}
	}
	offsets = append(offsets, len(s))
	return Folded{Text: b.String(), source: s, offsets: offsets}
}

func foldRune(t transform.Transformer, r rune) string {
	if r < utf8.RuneSelf {
		return string(unicode.ToLower(r))
	}
	lower := strings.ToLower(string(r))
	out, _, err := transform.String(t, lower)
	if err != nil || out == "" {
		return lower
	}
	return out
}

// Original returns the source text behind the folded byte range [start, end).
func (f Folded) Original(start, end int) string {
	if start < 0 || end > len(f.Text) || start >= end {
		return ""
	}
	return f.source[f.offsets[start]:f.offsets[end]]
}

// FoldString is Fold(s).Text.
func FoldString(s string) string {
	return Fold(s).Text
}
