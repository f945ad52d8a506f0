// Package portion estimates grams for a detected food item from count hints, plate footprint or a base table
package portion

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"platewise/internal/core/foodtext"
)

// Base is a nominal portion with its valid range; Min <= Grams <= Max
type Base struct {
	Grams int `json:"grams"`
	Min   int `json:"min"`
	Max   int `json:"max"`
}

// MatchKind tells how LookupBase resolved a base
type MatchKind string

// lookup resolutions, most specific first
const (
	MatchName     MatchKind = "name"
	MatchContains MatchKind = "contains"
	MatchCategory MatchKind = "category"
	MatchFallback MatchKind = "fallback"
)

// Lookup is a resolved base plus the key that matched
type Lookup struct {
	Base
	Kind     MatchKind
	Key      string
	Category string
}

type namedBase struct {
	Base
	Category string `json:"category"`
}

type table struct {
	Fallback   Base                 `json:"fallback"`
	Categories map[string]Base      `json:"categories"`
	Names      map[string]namedBase `json:"names"`

	byLength []string
}

//go:embed data/portions.json
var portionsJSON []byte

var bases = mustLoad(portionsJSON)

func mustLoad(raw []byte) *table {
	t, err := loadTable(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func loadTable(raw []byte) (*table, error) {
	var t table
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("portion table: %w", err)
	}
	if err := t.Fallback.check("fallback"); err != nil {
		return nil, err
	}
	for k, b := range t.Categories {
		if err := b.check("category " + k); err != nil {
			return nil, err
		}
	}
	for k, b := range t.Names {
		if err := b.check("name " + k); err != nil {
			return nil, err
		}
		t.byLength = append(t.byLength, k)
	}
	// longest first so "chicken breast" beats "chicken"
	sort.Slice(t.byLength, func(i, j int) bool {
		a, b := t.byLength[i], t.byLength[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return &t, nil
}

func (b Base) check(what string) error {
	if b.Min <= 0 || b.Min > b.Grams || b.Grams > b.Max {
		return fmt.Errorf("portion table: %s has min=%d grams=%d max=%d", what, b.Min, b.Grams, b.Max)
	}
	return nil
}

// LookupBase resolves name, then the longest table name contained in it, then category, then the fallback
func LookupBase(name, category string) Lookup {
	key := foodtext.Key(name)
	cat := categoryKey(category)

	if nb, ok := bases.Names[key]; ok {
		return Lookup{Base: nb.Base, Kind: MatchName, Key: key, Category: knownOr(cat, nb.Category)}
	}
	if key != "" {
		for _, n := range bases.byLength {
			if foodtext.ContainsPhrase(key, n) || foodtext.ContainsPhrase(singularWords(key), n) {
				nb := bases.Names[n]
				return Lookup{Base: nb.Base, Kind: MatchContains, Key: n, Category: knownOr(cat, nb.Category)}
			}
		}
	}
	if b, ok := bases.Categories[cat]; ok {
		return Lookup{Base: b, Kind: MatchCategory, Key: cat, Category: cat}
	}
	return Lookup{Base: bases.Fallback, Kind: MatchFallback, Category: cat}
}

func categoryKey(category string) string {
	c := foodtext.Key(category)
	if _, ok := bases.Categories[c]; ok {
		return c
	}
	if s := foodtext.Singular(c); s != c {
		if _, ok := bases.Categories[s]; ok {
			return s
		}
	}
	return c
}

func singularWords(key string) string {
	words := foodtext.Words(key)
	for i, w := range words {
		words[i] = foodtext.Singular(w)
	}
	return strings.Join(words, " ")
}

// knownOr prefers the caller's category when the table knows it
func knownOr(cat, def string) string {
	if _, ok := bases.Categories[cat]; ok {
		return cat
	}
	return def
}
