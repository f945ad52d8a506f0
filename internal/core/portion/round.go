package portion

import "math"

// Round5 rounds to the nearest multiple of 5, never below 5
func Round5(g float64) int {
	if math.IsNaN(g) || g <= 0 {
		return 5
	}
	return max(5, int(math.Round(g/5))*5)
}

// RangeOf is the +-15% band around grams
func RangeOf(grams int) [2]int {
	g := float64(grams)
	return [2]int{int(math.Round(g * 0.85)), int(math.Round(g * 1.15))}
}

// Clamp bounds g to the base range
func (b Base) Clamp(g float64) float64 {
	return math.Min(math.Max(g, float64(b.Min)), float64(b.Max))
}
