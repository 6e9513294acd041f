package charmatrix

import (
	"math"
	"unicode"
	"unicode/utf8"
)

// Names of the built-in ramps.
const (
	RampSimple   = "simple"
	RampDetailed = "detailed"
	RampBraille  = "braille"
)

const (
	simpleGlyphs   = " .:-=+*#%@"
	detailedGlyphs = " .'`^\",:;Il!i><~+_-?][}{1)(|\\/tfjrxnuvczXYUJCLQ0OZmwqpdbkhao*#MW&8%B@"

	minRampLen = 2
	maxRampLen = 256
)

// Ramp is an immutable glyph sequence ordered from darkest to lightest bucket.
type Ramp struct {
	glyphs []rune
}

// NewRamp validates glyphs and builds a ramp from them. Ramps must hold between
// 2 and 256 distinct printable characters.
func NewRamp(glyphs string) (Ramp, error) {
	if !utf8.ValidString(glyphs) {
		return Ramp{}, configErrorf("ramp is not valid UTF-8")
	}
	runes := []rune(glyphs)
	if len(runes) < minRampLen || len(runes) > maxRampLen {
		return Ramp{}, configErrorf("ramp must have %d to %d glyphs, got %d", minRampLen, maxRampLen, len(runes))
	}
	seen := make(map[rune]bool, len(runes))
	for _, r := range runes {
		if r != ' ' && !unicode.IsPrint(r) {
			return Ramp{}, configErrorf("ramp glyph %q is not printable", r)
		}
		if seen[r] {
			return Ramp{}, configErrorf("ramp glyph %q appears more than once", r)
		}
		seen[r] = true
	}
	return Ramp{glyphs: runes}, nil
}

func mustRamp(glyphs string) Ramp {
	r, err := NewRamp(glyphs)
	if err != nil {
		panic(err)
	}
	return r
}

var builtinRamps = map[string]Ramp{
	RampSimple:   mustRamp(simpleGlyphs),
	RampDetailed: mustRamp(detailedGlyphs),
	RampBraille:  mustRamp(brailleGlyphs()),
}

// LookupRamp resolves a built-in ramp by name. A non-empty custom string takes
// precedence over the name. An empty name selects the detailed ramp.
func LookupRamp(name, custom string) (Ramp, error) {
	if custom != "" {
		return NewRamp(custom)
	}
	if name == "" {
		name = RampDetailed
	}
	r, ok := builtinRamps[name]
	if !ok {
		return Ramp{}, configErrorf("unknown ramp %q", name)
	}
	return r, nil
}

// Len returns the number of glyphs.
func (r Ramp) Len() int {
	return len(r.glyphs)
}

// Glyph picks the glyph for a brightness in [0, 1]. Out of range values are
// clamped to the ends of the ramp.
func (r Ramp) Glyph(brightness float64) rune {
	last := len(r.glyphs) - 1
	i := int(math.Round(brightness * float64(last)))
	if i < 0 {
		i = 0
	}
	if i > last {
		i = last
	}
	return r.glyphs[i]
}

// Index returns the position of glyph in the ramp, or -1.
func (r Ramp) Index(glyph rune) int {
	for i, g := range r.glyphs {
		if g == glyph {
			return i
		}
	}
	return -1
}

func (r Ramp) String() string {
	return string(r.glyphs)
}
