package charmatrix

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// PaletteSize is the capacity of every palette. Unused slots repeat the
// background color.
const PaletteSize = 256

// Palette is a fixed set of output colors. Entry 0 is the background and entry
// 1 the foreground. A Palette is never modified after it is built.
type Palette struct {
	colors [PaletteSize]RGB
}

// At returns entry i.
func (p *Palette) At(i int) RGB {
	return p.colors[i]
}

func (p *Palette) Background() RGB { return p.colors[0] }
func (p *Palette) Foreground() RGB { return p.colors[1] }

// ColorPalette converts the palette for use with image.Paletted.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, PaletteSize)
	for i, c := range p.colors {
		pal[i] = color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
	}
	return pal
}

type paletteBuilder struct {
	p *Palette
	n int
}

func (b *paletteBuilder) add(c RGB) {
	if b.n < PaletteSize {
		b.p.colors[b.n] = c
		b.n++
	}
}

func (b *paletteBuilder) addColorful(c colorful.Color) {
	r, g, bl := c.Clamped().RGB255()
	b.add(RGB{r, g, bl})
}

func (b *paletteBuilder) build() *Palette {
	bg := b.p.colors[0]
	for i := b.n; i < PaletteSize; i++ {
		b.p.colors[i] = bg
	}
	return b.p
}

func newPaletteBuilder(bg, fg RGB) *paletteBuilder {
	b := &paletteBuilder{p: &Palette{}}
	b.add(bg)
	b.add(fg)
	return b
}

func toColorful(c RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// blendSteps is the number of shades between background and foreground. Small
// glyphs are mostly antialiased edges, so they get more shades.
func blendSteps(glyphSize float64) int {
	switch {
	case glyphSize < 10:
		return 32
	case glyphSize < 20:
		return 16
	default:
		return 8
	}
}

// NewMonochromePalette builds a palette for glyphs of one color: background,
// foreground, then evenly spaced blends from background towards foreground.
func NewMonochromePalette(bg, fg RGB, glyphSize float64) *Palette {
	b := newPaletteBuilder(bg, fg)
	from, to := toColorful(bg), toColorful(fg)
	steps := blendSteps(glyphSize)
	for i := 1; i <= steps; i++ {
		b.addColorful(from.BlendRgb(to, float64(i)/float64(steps+1)))
	}
	logger.WithField("shades", steps).Debug("built monochrome palette")
	return b.build()
}

var paletteHues = []RGB{
	{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
	{255, 255, 0}, {0, 255, 255}, {255, 0, 255},
}

const (
	hueSteps  = 36
	grayLevel = 16
)

var (
	sweepSaturations = []float64{1.0, 0.6}
	sweepValues      = []float64{1.0, 0.7, 0.4}
)

// NewColoredPalette builds a general purpose palette: background, foreground,
// primaries and secondaries, a hue sweep at several saturations and values,
// and a gray ramp.
func NewColoredPalette(bg, fg RGB) *Palette {
	b := newPaletteBuilder(bg, fg)
	for _, c := range paletteHues {
		b.add(c)
	}
	for h := 0; h < hueSteps; h++ {
		hue := float64(h) * 360 / hueSteps
		for _, s := range sweepSaturations {
			for _, v := range sweepValues {
				b.addColorful(colorful.Hsv(hue, s, v))
			}
		}
	}
	for i := 0; i < grayLevel; i++ {
		v := uint8(i * 255 / (grayLevel - 1))
		b.add(RGB{v, v, v})
	}
	logger.WithField("colors", b.n).Debug("built colored palette")
	return b.build()
}

// Quantizer maps colors to palette indexes. It only reads after construction
// and may be shared between goroutines.
type Quantizer struct {
	palette *Palette
	colors  color.Palette
	exact   map[RGB]uint8
}

func NewQuantizer(p *Palette) *Quantizer {
	exact := make(map[RGB]uint8, PaletteSize)
	for i, c := range p.colors {
		if _, ok := exact[c]; !ok {
			exact[c] = uint8(i)
		}
	}
	return &Quantizer{palette: p, colors: p.ColorPalette(), exact: exact}
}

// Index returns the palette entry for c: the first exact match if there is
// one, otherwise the nearest entry by squared RGB distance, lowest index on
// ties.
func (q *Quantizer) Index(c RGB) uint8 {
	if i, ok := q.exact[c]; ok {
		return i
	}
	best, bestDist := 0, math.MaxInt32
	for i, pc := range q.palette.colors {
		dr := int(c.R) - int(pc.R)
		dg := int(c.G) - int(pc.G)
		db := int(c.B) - int(pc.B)
		d := dr*dr + dg*dg + db*db
		if d < bestDist {
			best, bestDist = i, d
			if d == 0 {
				break
			}
		}
	}
	return uint8(best)
}

// Quantize converts an RGBA canvas into a paletted image. Alpha is ignored.
func (q *Quantizer) Quantize(src *image.RGBA) *image.Paletted {
	bounds := src.Bounds()
	dst := image.NewPaletted(bounds, q.colors)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		si := src.PixOffset(bounds.Min.X, y)
		di := dst.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			dst.Pix[di] = q.Index(RGB{src.Pix[si], src.Pix[si+1], src.Pix[si+2]})
			si += 4
			di++
		}
	}
	return dst
}
