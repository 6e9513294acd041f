package charmatrix

import (
	"image"

	"github.com/disintegration/imaging"
)

// Adjustments are tone corrections applied to each source frame before it is
// rasterized. Zero values leave the image alone.
type Adjustments struct {
	// Gamma of 1.0 gives the original image. Less than 1.0 darkens, greater
	// lightens.
	Gamma float64 `yaml:"gamma"`
	// Brightness in [-100, 100].
	Brightness float64 `yaml:"brightness"`
	// Contrast in [-100, 100].
	Contrast float64 `yaml:"contrast"`
	// Sharpen sigma, 0 for none.
	Sharpen float64 `yaml:"sharpen"`
	// SigmoidMidpoint in [0, 1] and SigmoidFactor; a zero factor disables the
	// sigmoid contrast curve.
	SigmoidMidpoint float64 `yaml:"sigmoid_midpoint"`
	SigmoidFactor   float64 `yaml:"sigmoid_factor"`
}

func (a Adjustments) IsZero() bool {
	return a == Adjustments{}
}

func (a Adjustments) Validate() error {
	switch {
	case a.Gamma < 0:
		return configErrorf("gamma must be positive, got %v", a.Gamma)
	case a.Brightness < -100 || a.Brightness > 100:
		return configErrorf("brightness must be within [-100, 100], got %v", a.Brightness)
	case a.Contrast < -100 || a.Contrast > 100:
		return configErrorf("contrast must be within [-100, 100], got %v", a.Contrast)
	case a.Sharpen < 0:
		return configErrorf("sharpen must not be negative, got %v", a.Sharpen)
	case a.SigmoidMidpoint < 0 || a.SigmoidMidpoint > 1:
		return configErrorf("sigmoid midpoint must be within [0, 1], got %v", a.SigmoidMidpoint)
	}
	return nil
}

// Apply returns a corrected copy of img, or img itself when nothing is set.
// The result's bounds start at the origin.
func (a Adjustments) Apply(img image.Image) image.Image {
	if a.IsZero() {
		return img
	}
	out := imaging.Clone(img)
	if a.Gamma > 0 && a.Gamma != 1 {
		out = imaging.AdjustGamma(out, a.Gamma)
	}
	if a.Brightness != 0 {
		out = imaging.AdjustBrightness(out, a.Brightness)
	}
	if a.Sharpen > 0 {
		out = imaging.Sharpen(out, a.Sharpen)
	}
	if a.Contrast != 0 {
		out = imaging.AdjustContrast(out, a.Contrast)
	}
	if a.SigmoidFactor != 0 {
		mid := a.SigmoidMidpoint
		if mid == 0 {
			mid = 0.5
		}
		out = imaging.AdjustSigmoid(out, mid, a.SigmoidFactor)
	}
	return out
}
