/*
Package charmatrix renders decoded animation frames as character-cell art.

Every source pixel that lands on an output cell is reduced to a luminance value
using the standard luma weights and mapped onto an ordered ramp of glyphs,
darkest first:

	brightness = (0.299 R + 0.587 G + 0.114 B) / 255
	glyph      = ramp[round(brightness * (len(ramp) - 1))]

The resulting character grids can be dumped as text, re-encoded as an animated
GIF (see GIFEncoder) or played back live in a terminal that may be resized
while playing (see Player).
*/
package charmatrix

import (
	"image/color"
	"math"
)

// RGB is an opaque 8-bit color.
type RGB struct {
	R, G, B uint8
}

// RGBA implements color.Color.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}.RGBA()
}

var (
	Black = RGB{0, 0, 0}
	White = RGB{255, 255, 255}
)

// Brightness returns the perceived brightness of an opaque color in [0, 1].
// When invert is set the scale is flipped.
func Brightness(r, g, b uint8, invert bool) float64 {
	lum := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 255
	if invert {
		lum = 1 - lum
	}
	return math.Max(0, math.Min(1, lum))
}

// glyphAt maps one source pixel to a glyph and its straight (non premultiplied)
// color. Fully transparent pixels are always a space.
func glyphAt(c color.Color, ramp Ramp, invert bool) (rune, RGB) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	if n.A == 0 {
		return ' ', RGB{}
	}
	rgb := RGB{n.R, n.G, n.B}
	return ramp.Glyph(Brightness(n.R, n.G, n.B, invert)), rgb
}
