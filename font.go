package charmatrix

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io/ioutil"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

// Font draws text onto pixel canvases. Implementations must be safe for use by
// several goroutines at once.
type Font interface {
	// Supports reports whether the font has a glyph for r.
	Supports(r rune) bool
	// Paint draws text with its top left corner at (x, y).
	Paint(dst draw.Image, text string, x, y int, size float64, c color.Color)
	// Advance is the horizontal distance between two glyphs, in pixels.
	Advance(size float64) float64
}

// TrueTypeFont is a Font backed by a parsed TrueType file. Faces are cached per
// size; a face is not safe for concurrent use, so each size keeps a pool.
type TrueTypeFont struct {
	ttf   *truetype.Font
	faces sync.Map // float64 -> *sync.Pool of font.Face
}

// ParseFont parses TrueType data.
func ParseFont(data []byte) (*TrueTypeFont, error) {
	ttf, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &TrueTypeFont{ttf: ttf}, nil
}

// LoadFont reads a TrueType file from disk.
func LoadFont(path string) (*TrueTypeFont, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}
	return ParseFont(data)
}

var (
	defaultFontOnce sync.Once
	defaultFont     *TrueTypeFont
)

// DefaultFont returns Go Mono, which is compiled into the binary.
func DefaultFont() *TrueTypeFont {
	defaultFontOnce.Do(func() {
		f, err := ParseFont(gomono.TTF)
		if err != nil {
			panic(err)
		}
		defaultFont = f
	})
	return defaultFont
}

func (f *TrueTypeFont) Supports(r rune) bool {
	return r == ' ' || f.ttf.Index(r) != 0
}

func (f *TrueTypeFont) pool(size float64) *sync.Pool {
	if p, ok := f.faces.Load(size); ok {
		return p.(*sync.Pool)
	}
	p, _ := f.faces.LoadOrStore(size, &sync.Pool{
		New: func() interface{} {
			return truetype.NewFace(f.ttf, &truetype.Options{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
		},
	})
	return p.(*sync.Pool)
}

func (f *TrueTypeFont) withFace(size float64, fn func(font.Face)) {
	p := f.pool(size)
	face := p.Get().(font.Face)
	defer p.Put(face)
	fn(face)
}

func (f *TrueTypeFont) Paint(dst draw.Image, text string, x, y int, size float64, c color.Color) {
	f.withFace(size, func(face font.Face) {
		d := &font.Drawer{
			Dst:  dst,
			Src:  image.NewUniform(c),
			Face: face,
			Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
		}
		d.DrawString(text)
	})
}

func (f *TrueTypeFont) Advance(size float64) float64 {
	var adv fixed.Int26_6
	f.withFace(size, func(face font.Face) {
		adv, _ = face.GlyphAdvance('M')
	})
	return float64(adv) / 64
}
