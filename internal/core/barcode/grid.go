package barcode

import (
	"image"
	"math"
)

// Crop is a fractional region of the source image
type Crop struct {
	Name           string
	X0, Y0, X1, Y1 float64
}

// Rect maps the crop onto b
func (c Crop) Rect(b image.Rectangle) image.Rectangle {
	w, h := float64(b.Dx()), float64(b.Dy())
	return image.Rect(
		b.Min.X+int(math.Round(c.X0*w)),
		b.Min.Y+int(math.Round(c.Y0*h)),
		b.Min.X+int(math.Round(c.X1*w)),
		b.Min.Y+int(math.Round(c.Y1*h)),
	).Intersect(b)
}

// crops in priority order; barcodes usually sit mid frame
var (
	CropCenterBand = Crop{Name: "center-band-30", X0: 0, Y0: 0.35, X1: 1, Y1: 0.65}
	CropCenterBox  = Crop{Name: "center-box", X0: 0.2, Y0: 0.2, X1: 0.8, Y1: 0.8}
	CropTopBand    = Crop{Name: "top-band", X0: 0, Y0: 0.05, X1: 1, Y1: 0.40}
	CropBottomBand = Crop{Name: "bottom-band", X0: 0, Y0: 0.60, X1: 1, Y1: 0.95}
)

// DefaultCrops is the crop order the grid walks
func DefaultCrops() []Crop {
	return []Crop{CropCenterBand, CropCenterBox, CropTopBand, CropBottomBand}
}

// DefaultScales are tried per crop, largest first
func DefaultScales() []float64 { return []float64{1.0, 0.75, 0.5} }

// DefaultRotations include small tilt corrections after the right angles
func DefaultRotations() []int { return []int{0, 90, 180, 270, 8, -8} }

// DefaultInversions are normal then inverted luminance
func DefaultInversions() []bool { return []bool{false, true} }

// DefaultMinEdge is the minimum shorter edge in pixels handed to the oracle
const DefaultMinEdge = 1080

// MaxCandidates is the size of the default grid
const MaxCandidates = 4 * 3 * 6 * 2

// GridOptions overrides the grid axes; nil axes use the defaults
type GridOptions struct {
	Crops      []Crop
	Scales     []float64
	Rotations  []int
	Inversions []bool
}

func (o GridOptions) withDefaults() GridOptions {
	if o.Crops == nil {
		o.Crops = DefaultCrops()
	}
	if o.Scales == nil {
		o.Scales = DefaultScales()
	}
	if o.Rotations == nil {
		o.Rotations = DefaultRotations()
	}
	if o.Inversions == nil {
		o.Inversions = DefaultInversions()
	}
	return o
}

// Candidate is one grid cell
type Candidate struct {
	Index    int     `json:"index"`
	Crop     Crop    `json:"crop"`
	Scale    float64 `json:"scale"`
	Rotation int     `json:"rotation"`
	Inverted bool    `json:"inverted"`
}

// Grid enumerates crop, then scale, then rotation, then inversion
func Grid(opts GridOptions) []Candidate {
	o := opts.withDefaults()
	out := make([]Candidate, 0, len(o.Crops)*len(o.Scales)*len(o.Rotations)*len(o.Inversions))
	for _, c := range o.Crops {
		for _, s := range o.Scales {
			for _, r := range o.Rotations {
				for _, inv := range o.Inversions {
					out = append(out, Candidate{Index: len(out), Crop: c, Scale: s, Rotation: r, Inverted: inv})
				}
			}
		}
	}
	return out
}

// EffectiveScale raises requested until the shorter crop edge reaches minEdge
func EffectiveScale(requested float64, cropW, cropH, minEdge int) float64 {
	shorter := min(cropW, cropH)
	if shorter <= 0 || minEdge <= 0 {
		return requested
	}
	return max(requested, float64(minEdge)/float64(shorter))
}
