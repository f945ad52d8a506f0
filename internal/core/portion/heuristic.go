package portion

import (
	"fmt"
	"math"
	"regexp"
	"strconv"

	"platewise/internal/core/foodtext"
)

// sizeWord multiplies the base when any of its words appears
type sizeWord struct {
	words []string
	mult  float64
}

var sizeWords = []sizeWord{
	{words: []string{"small", "mini", "little"}, mult: 0.7},
	{words: []string{"large", "big", "jumbo"}, mult: 1.4},
	{words: []string{"side"}, mult: 0.6},
}

var legacyCountRe = regexp.MustCompile(`(\d+)\s*(spear|wedge)s?\b`)

// Heuristic is the single pass estimator used when the ordered estimators fail
func Heuristic(in Inputs) (Result, error) {
	name := foodtext.Key(in.Name)
	text := name + " " + foodtext.Hint(in.Hints)
	base := LookupBase(in.Name, in.Category)

	g := float64(base.Grams)
	if m := legacyCountRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 && n <= MaxCount {
			w, _ := UnitWeight(m[2], name)
			g = float64(n) * w
		}
	}
	for _, sw := range sizeWords {
		for _, w := range sw.words {
			if foodtext.ContainsWord(text, w) {
				g *= sw.mult
				break
			}
		}
	}
	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
		return Result{}, fmt.Errorf("heuristic: %q produced %v grams", in.Name, g)
	}
	grams := Round5(g)
	r := RangeOf(grams)
	return Result{Grams: grams, Source: SourceHeuristic, Range: &r}, nil
}
