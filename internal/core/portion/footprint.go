package portion

import "math"

// plate ratio bounds
const (
	MinPlateRatio = 0.005
	MaxPlateRatio = 0.65
)

// BBox is a detection box in pixels
type BBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area is W x H, zero for degenerate boxes
func (b BBox) Area() float64 {
	if b.W <= 0 || b.H <= 0 {
		return 0
	}
	return b.W * b.H
}

// ItemArea prefers the mask area and falls back to the box
func ItemArea(in Inputs) float64 {
	if in.MaskArea > 0 && !math.IsInf(in.MaskArea, 0) {
		return in.MaskArea
	}
	if in.BBox != nil {
		return in.BBox.Area()
	}
	return 0
}

// PlateRatio is itemArea / plateArea clamped to [MinPlateRatio, MaxPlateRatio]; ok is false without both areas
func PlateRatio(itemArea, plateArea float64) (float64, bool) {
	if itemArea <= 0 || plateArea <= 0 || math.IsNaN(itemArea) || math.IsNaN(plateArea) {
		return 0, false
	}
	r := itemArea / plateArea
	return math.Min(math.Max(r, MinPlateRatio), MaxPlateRatio), true
}
