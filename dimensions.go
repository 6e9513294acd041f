package charmatrix

import "math"

// PlanDimensions returns the character grid size for a source image of
// srcW x srcH pixels. Scale wins over explicit sizes, explicit width and height
// win over a single side, and with nothing requested the source size is used.
// Fractional results are truncated; a zero result is an error.
func PlanDimensions(srcW, srcH int, cfg RenderConfig) (int, int, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, 0, &DimensionsError{Width: srcW, Height: srcH}
	}
	if cfg.CharAspect <= 0 || math.IsNaN(cfg.CharAspect) {
		return 0, 0, configErrorf("char aspect must be positive, got %v", cfg.CharAspect)
	}
	if cfg.Scale < 0 || math.IsNaN(cfg.Scale) {
		return 0, 0, configErrorf("scale must be positive, got %v", cfg.Scale)
	}

	sw, sh := float64(srcW), float64(srcH)
	aspect := cfg.CharAspect

	var w, h int
	switch {
	case cfg.Scale > 0:
		w = atLeastOne(sw * cfg.Scale)
		h = atLeastOne(sh * cfg.Scale / aspect)
	case cfg.Width > 0 && cfg.Height > 0:
		w, h = cfg.Width, cfg.Height
	case cfg.Width > 0:
		w = cfg.Width
		if cfg.PreserveAspect {
			h = int(float64(w) * sh / sw / aspect)
		} else {
			h = int(sh / aspect)
		}
	case cfg.Height > 0:
		h = cfg.Height
		if cfg.PreserveAspect {
			w = int(float64(h) * sw / sh * aspect)
		} else {
			w = srcW
		}
	default:
		w = srcW
		if cfg.PreserveAspect {
			h = int(sh / aspect)
		} else {
			h = srcH
		}
	}

	if w <= 0 || h <= 0 {
		return 0, 0, &DimensionsError{Width: w, Height: h}
	}
	return w, h, nil
}

func atLeastOne(v float64) int {
	if v < 1 {
		return 1
	}
	return int(v)
}
