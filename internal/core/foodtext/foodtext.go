// Package foodtext folds food names and portion hints into lookup keys
// Pipeline order
// 1 drop invalid UTF-8
// 2 NFKD so accents split from their base letters
// 3 strip combining marks and format chars
// 4 width fold and case fold
// 5 runs of anything else become one space; Hint folds every dash to '-' and also keeps '.', '~' and '-'
package foodtext

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			cases.Fold(),
			norm.NFC,
		)
	},
}

func fold(s string) string {
	s = strings.ToValidUTF8(s, "")
	tr := chainPool.Get().(transform.Transformer)
	out, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)
	return out
}

// Key folds a food name or category: "Jalapeño  Poppers!" -> "jalapeno poppers"
func Key(s string) string {
	if s == "" {
		return ""
	}
	return collapse(fold(s), func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	})
}

// Hint folds free text hints and keeps the punctuation count rules read; any dash becomes '-'
func Hint(s string) string {
	if s == "" {
		return ""
	}
	return collapse(strings.Map(dash, fold(s)), func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '~' || r == '-'
	})
}

// dash maps en and em dashes, hyphen variants and the minus sign to '-'
func dash(r rune) rune {
	if r == '\u2212' || unicode.Is(unicode.Pd, r) {
		return '-'
	}
	return r
}

func collapse(s string, keep func(rune) bool) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if !keep(r) {
			space = b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Words splits a folded key on spaces
func Words(key string) []string { return strings.Fields(key) }

// ContainsWord reports whether word appears in key as a whole word
func ContainsWord(key, word string) bool {
	for _, w := range strings.Fields(key) {
		if w == word {
			return true
		}
	}
	return false
}

// ContainsPhrase reports whether phrase appears in key on word boundaries
func ContainsPhrase(key, phrase string) bool {
	if phrase == "" {
		return false
	}
	k := " " + key + " "
	return strings.Contains(k, " "+phrase+" ")
}

// Singular strips a plain English plural: "spears" -> "spear", "slices" -> "slice", "berries" -> "berry"
func Singular(w string) string {
	switch {
	case len(w) <= 3:
		return w
	case strings.HasSuffix(w, "ies"):
		return w[:len(w)-3] + "y"
	case strings.HasSuffix(w, "ches"), strings.HasSuffix(w, "shes"), strings.HasSuffix(w, "oes"):
		return w[:len(w)-2]
	case strings.HasSuffix(w, "ss"), strings.HasSuffix(w, "us"):
		return w
	case strings.HasSuffix(w, "s"):
		return w[:len(w)-1]
	}
	return w
}
