// Package normalize canonicalizes chat text for keyword matching
// Pipeline order
// 1 UTF-8 repair drop invalid bytes
// 2 Lowercase
// 3 Canonical decomposition (NFD)
// 4 Strip combining diacritical marks U+0300..U+036F
// 5 Punctuation to space
// 6 Collapse whitespace to single spaces and trim
//
// There is no stemming: "informes" and "informe" stay distinct
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// diacritics is the Combining Diacritical Marks block
var diacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// punct lists the characters that separate words in chat text
const punct = ".,;:!?¡¿\"'`´“”‘’«»()[]{}-–—…"

func isPunct(r rune) bool { return strings.ContainsRune(punct, r) }

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			cases.Lower(language.Und),
			norm.NFD,
			runes.Remove(runes.In(diacritics)),
			runes.Map(func(r rune) rune {
				if isPunct(r) {
					return ' '
				}
				return r
			}),
		)
	},
}

// Normalize returns the matching form of s
// It is pure and total, and Normalize(Normalize(s)) == Normalize(s)
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, err := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	if err != nil {
		// transformers here never fail on valid UTF-8; fall back to the simple path
		ns = strings.Map(func(r rune) rune {
			if isPunct(r) {
				return ' '
			}
			return r
		}, strings.ToLower(s))
	}

	return strings.Join(strings.Fields(ns), " ")
}

// Tokens splits normalized text into whitespace-separated words
func Tokens(normalized string) []string { return strings.Fields(normalized) }
