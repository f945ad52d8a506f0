package portion

import (
	"regexp"
	"strconv"

	"platewise/internal/core/foodtext"
)

// MaxCount bounds a parsed count; larger counts are treated as noise
const MaxCount = 50

// countRe reads "[~|about] <n>[-<m>|to <m>] [size word] <unit>"
var countRe = regexp.MustCompile(`(?:~|about\s+)?(\d+(?:\.\d+)?)(?:\s*(?:-|to)\s*(\d+(?:\.\d+)?))?\s*(?:(?:extra\s+large|small|medium|large|big|jumbo|mini|little)\s+)?([a-z]+)`)

// Count is a parsed "<n> <unit>" hint; ranges keep their midpoint
type Count struct {
	N    float64
	Unit string
}

type unitWeight struct {
	def   float64
	foods []foodWeight
}

type foodWeight struct {
	food  string
	grams float64
}

// unitWeights holds grams per unit; food overrides are checked in order
var unitWeights = map[string]unitWeight{
	"spear":    {def: 16, foods: []foodWeight{{"asparagus", 16}, {"broccoli", 30}, {"pickle", 35}}},
	"wing":     {def: 30, foods: []foodWeight{{"chicken", 32}}},
	"wedge":    {def: 20, foods: []foodWeight{{"lemon", 8}, {"lime", 7}, {"potato", 30}, {"orange", 25}}},
	"slice":    {def: 30, foods: []foodWeight{{"pizza", 110}, {"cheese", 20}, {"bacon", 10}, {"tomato", 15}, {"bread", 30}}},
	"piece":    {def: 25, foods: []foodWeight{{"chicken", 40}, {"sushi", 30}, {"chocolate", 10}}},
	"strip":    {def: 15, foods: []foodWeight{{"bacon", 10}, {"chicken", 30}}},
	"nugget":   {def: 17},
	"egg":      {def: 50},
	"cup":      {def: 150, foods: []foodWeight{{"rice", 160}, {"pasta", 140}, {"spinach", 30}, {"salad", 40}}},
	"tbsp":     {def: 15, foods: []foodWeight{{"oil", 14}, {"butter", 14}}},
	"tsp":      {def: 5},
	"leg":      {def: 75},
	"thigh":    {def: 90},
	"fillet":   {def: 140},
	"patty":    {def: 110},
	"shrimp":   {def: 12},
	"meatball": {def: 30},
	"dumpling": {def: 25},
	"roll":     {def: 40},
	"cookie":   {def: 15},
	"scoop":    {def: 70},
	"floret":   {def: 10},
	"berry":    {def: 5, foods: []foodWeight{{"strawberry", 12}}},
}

// unitAliases maps spellings onto unitWeights keys after singularising
var unitAliases = map[string]string{
	"tablespoon": "tbsp",
	"tbs":        "tbsp",
	"teaspoon":   "tsp",
	"pc":         "piece",
	"pcs":        "piece",
	"filet":      "fillet",
	"strawberry": "berry",
	"blueberry":  "berry",
}

// UnitWeight returns grams per unit, preferring an override for a food named in nameKey
func UnitWeight(unit, nameKey string) (float64, bool) {
	u := normalizeUnit(unit)
	w, ok := unitWeights[u]
	if !ok {
		return 0, false
	}
	for _, f := range w.foods {
		if foodtext.ContainsWord(nameKey, f.food) || foodtext.ContainsWord(singularWords(nameKey), f.food) {
			return f.grams, true
		}
	}
	return w.def, true
}

func normalizeUnit(unit string) string {
	u := foodtext.Singular(unit)
	if a, ok := unitAliases[u]; ok {
		return a
	}
	if a, ok := unitAliases[unit]; ok {
		return a
	}
	return u
}

// ParseCounts returns every count phrase in hints whose count is in (0, MaxCount]
func ParseCounts(hints string) []Count {
	h := foodtext.Hint(hints)
	if h == "" {
		return nil
	}
	var out []Count
	for _, m := range countRe.FindAllStringSubmatch(h, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			hi, err := strconv.ParseFloat(m[2], 64)
			if err != nil {
				continue
			}
			n = (n + hi) / 2
		}
		if n <= 0 || n > MaxCount {
			continue
		}
		out = append(out, Count{N: n, Unit: normalizeUnit(m[3])})
	}
	return out
}

// CountGrams finds the first count with a known unit weight and returns count x weight
func CountGrams(hints, nameKey string) (float64, Count, bool) {
	for _, c := range ParseCounts(hints) {
		if w, ok := UnitWeight(c.Unit, nameKey); ok {
			return c.N * w, c, true
		}
	}
	return 0, Count{}, false
}
