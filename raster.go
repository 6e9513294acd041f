package charmatrix

import (
	"context"
	"image"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Cell is one position of a character grid. Color is the source pixel color and
// only meaningful for colored frames.
type Cell struct {
	Glyph rune
	Color RGB
}

// Frame is a rasterized character grid.
type Frame struct {
	Width   int
	Height  int
	Rows    [][]Cell
	Colored bool
	Delay   time.Duration
}

// Lines returns the glyphs of each row without color.
func (f *Frame) Lines() []string {
	lines := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		var sb strings.Builder
		sb.Grow(len(row))
		for _, c := range row {
			sb.WriteRune(c.Glyph)
		}
		lines[i] = sb.String()
	}
	return lines
}

// DisplayLines returns the rows as they should appear on a terminal: plain
// glyphs for monochrome frames, 24-bit color escapes for colored ones.
func (f *Frame) DisplayLines() []string {
	if !f.Colored {
		return f.Lines()
	}
	lines := make([]string, len(f.Rows))
	for i, row := range f.Rows {
		lines[i] = ANSILine(row)
	}
	return lines
}

// Animation is a sequence of rasterized frames.
type Animation struct {
	Frames    []*Frame
	LoopCount int // total plays, 0 forever
	Width     int // source pixels
	Height    int
}

// Rasterize maps img onto a character grid. Each output cell samples the
// nearest source pixel; rows are computed concurrently.
func Rasterize(ctx context.Context, img image.Image, cfg RenderConfig) (*Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ramp, err := cfg.Ramp()
	if err != nil {
		return nil, err
	}
	return rasterize(ctx, img, cfg, ramp)
}

func rasterize(ctx context.Context, img image.Image, cfg RenderConfig, ramp Ramp) (*Frame, error) {
	img = cfg.Adjust.Apply(img)
	bounds := img.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()

	tw, th, err := PlanDimensions(sw, sh, cfg)
	if err != nil {
		return nil, err
	}

	frame := &Frame{
		Width:   tw,
		Height:  th,
		Rows:    make([][]Cell, th),
		Colored: cfg.Colored,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for y := 0; y < th; y++ {
		y := y
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			sy := clampIndex(y*sh/th, sh)
			row := make([]Cell, tw)
			for x := 0; x < tw; x++ {
				sx := clampIndex(x*sw/tw, sw)
				glyph, rgb := glyphAt(img.At(bounds.Min.X+sx, bounds.Min.Y+sy), ramp, cfg.Invert)
				row[x] = Cell{Glyph: glyph, Color: rgb}
			}
			frame.Rows[y] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return frame, nil
}

func clampIndex(i, n int) int {
	if i >= n {
		return n - 1
	}
	if i < 0 {
		return 0
	}
	return i
}

// RasterizeAll rasterizes every frame of src with the same configuration and
// resolves each frame's delay.
func RasterizeAll(ctx context.Context, src *Source, cfg RenderConfig) (*Animation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ramp, err := cfg.Ramp()
	if err != nil {
		return nil, err
	}
	if len(src.Frames) == 0 {
		return nil, configErrorf("source has no frames")
	}

	start := time.Now()
	anim := &Animation{
		Frames:    make([]*Frame, len(src.Frames)),
		LoopCount: src.LoopCount,
		Width:     src.Width,
		Height:    src.Height,
	}
	for i, img := range src.Frames {
		frame, err := rasterize(ctx, img, cfg, ramp)
		if err != nil {
			return nil, err
		}
		frame.Delay = src.Delay(i)
		anim.Frames[i] = frame
	}

	logger.WithField("frames", len(anim.Frames)).
		WithField("cols", anim.Frames[0].Width).
		WithField("rows", anim.Frames[0].Height).
		Debugf("rasterized in %v", time.Since(start))
	return anim, nil
}
