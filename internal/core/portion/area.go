package portion

// point maps a plate ratio to a multiplier of the base grams
type point struct{ ratio, mult float64 }

// Curve is a piecewise linear ratio to multiplier mapping, ratios ascending
type Curve []point

// curve families; a ratio around 0.15 of the plate is a nominal serving
var (
	curveVegetable = Curve{{0.005, 0.3}, {0.05, 0.6}, {0.15, 1.0}, {0.30, 1.6}, {0.65, 2.5}}
	curveProtein   = Curve{{0.005, 0.4}, {0.05, 0.7}, {0.15, 1.0}, {0.30, 1.4}, {0.65, 2.0}}
	curveFruit     = Curve{{0.005, 0.5}, {0.05, 0.8}, {0.15, 1.0}, {0.30, 1.3}, {0.65, 1.8}}
	curveCondiment = Curve{{0.005, 0.3}, {0.03, 0.7}, {0.08, 1.0}, {0.20, 1.5}, {0.65, 2.5}}
	curveDefault   = Curve{{0.005, 0.4}, {0.05, 0.7}, {0.15, 1.0}, {0.30, 1.5}, {0.65, 2.2}}
)

// CurveFor picks the family for a folded category
func CurveFor(category string) Curve {
	switch category {
	case "vegetable", "leafy":
		return curveVegetable
	case "protein":
		return curveProtein
	case "fruit":
		return curveFruit
	case "condiment", "oil", "sauce":
		return curveCondiment
	}
	return curveDefault
}

// At interpolates the multiplier for ratio, holding the end values outside the curve
func (c Curve) At(ratio float64) float64 {
	if len(c) == 0 {
		return 1
	}
	if ratio <= c[0].ratio {
		return c[0].mult
	}
	for i := 1; i < len(c); i++ {
		if ratio <= c[i].ratio {
			a, b := c[i-1], c[i]
			t := (ratio - a.ratio) / (b.ratio - a.ratio)
			return a.mult + t*(b.mult-a.mult)
		}
	}
	return c[len(c)-1].mult
}

// AreaGrams scales the base through the category curve; ok is false when the footprint is unusable
func AreaGrams(base Lookup, itemArea, plateArea float64) (float64, float64, bool) {
	ratio, ok := PlateRatio(itemArea, plateArea)
	if !ok || ratio <= MinPlateRatio {
		return 0, ratio, false
	}
	return float64(base.Grams) * CurveFor(base.Category).At(ratio), ratio, true
}
