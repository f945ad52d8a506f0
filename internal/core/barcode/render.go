package barcode

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// JPEGQuality is the encode quality for rasters sent to the oracle
const JPEGQuality = 90

// Raster is a rendered candidate ready for the oracle
type Raster struct {
	Base64         string
	Width, Height  int
	EffectiveScale float64
}

// Scaled is a crop resampled to its effective scale, shared by the rotations and inversions of one crop
type Scaled struct {
	Crop           string
	Image          *image.NRGBA
	EffectiveScale float64
}

// Render crops, scales, rotates and optionally inverts src for c, then encodes it as base64 JPEG
func Render(src image.Image, c Candidate, minEdge int) (Raster, error) {
	s, err := Scale(src, c, minEdge)
	if err != nil {
		return Raster{}, err
	}
	return s.Finish(c)
}

// Plan returns the crop rectangle and effective scale c resolves to on src without resampling
func Plan(src image.Image, c Candidate, minEdge int) (image.Rectangle, float64, error) {
	if src == nil {
		return image.Rectangle{}, 0, fmt.Errorf("render %s: nil image", c.Crop.Name)
	}
	rect := c.Crop.Rect(src.Bounds())
	if rect.Empty() {
		return image.Rectangle{}, 0, fmt.Errorf("render %s: empty crop of %v", c.Crop.Name, src.Bounds())
	}
	if c.Scale <= 0 {
		return image.Rectangle{}, 0, fmt.Errorf("render %s: scale %v", c.Crop.Name, c.Scale)
	}
	return rect, EffectiveScale(c.Scale, rect.Dx(), rect.Dy(), minEdge), nil
}

// Scale crops src for c and resamples it; CatmullRom when shrinking, ApproxBiLinear when enlarging
func Scale(src image.Image, c Candidate, minEdge int) (*Scaled, error) {
	rect, eff, err := Plan(src, c, minEdge)
	if err != nil {
		return nil, err
	}
	cropped := imaging.Crop(src, rect)
	w := max(1, int(math.Round(float64(rect.Dx())*eff)))
	h := max(1, int(math.Round(float64(rect.Dy())*eff)))
	scaled := image.NewNRGBA(image.Rect(0, 0, w, h))
	var k draw.Scaler = draw.CatmullRom
	if eff > 1 {
		k = draw.ApproxBiLinear
	}
	k.Scale(scaled, scaled.Bounds(), cropped, cropped.Bounds(), draw.Src, nil)
	return &Scaled{Crop: c.Crop.Name, Image: scaled, EffectiveScale: eff}, nil
}

// Finish rotates and optionally inverts the scaled crop for c, then encodes it; s is not modified
func (s *Scaled) Finish(c Candidate) (Raster, error) {
	img := rotate(s.Image, c.Rotation)
	if c.Inverted {
		img = imaging.Invert(img)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality)); err != nil {
		return Raster{}, fmt.Errorf("render %s: encode: %w", s.Crop, err)
	}
	b := img.Bounds()
	return Raster{
		Base64:         base64.StdEncoding.EncodeToString(buf.Bytes()),
		Width:          b.Dx(),
		Height:         b.Dy(),
		EffectiveScale: s.EffectiveScale,
	}, nil
}

// rotate turns counter-clockwise by deg; right angles are lossless, the rest fill with white
func rotate(img *image.NRGBA, deg int) *image.NRGBA {
	switch ((deg % 360) + 360) % 360 {
	case 0:
		return img
	case 90:
		return imaging.Rotate90(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate270(img)
	}
	return imaging.Rotate(img, float64(deg), color.White)
}
