package charmatrix

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"io"
	"runtime"
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/sync/errgroup"
)

// GIFOptions describe the look of an encoded GIF.
type GIFOptions struct {
	FontSize   float64
	FontPath   string  // TrueType file, empty for Go Mono
	LineHeight float64 // multiple of FontSize
	Margin     int
	Background RGB
	Foreground RGB
	// Width and Height force the output size in pixels. When only one is set
	// the other follows the natural aspect ratio.
	Width  int
	Height int
}

// DefaultGIFOptions draws white glyphs on black.
func DefaultGIFOptions() GIFOptions {
	return GIFOptions{
		FontSize:   DefaultFontSize,
		LineHeight: DefaultLineHeight,
		Margin:     DefaultMargin,
		Background: Black,
		Foreground: White,
	}
}

func (o GIFOptions) Validate() error {
	switch {
	case o.FontSize <= 0:
		return configErrorf("font size must be positive, got %v", o.FontSize)
	case o.LineHeight <= 0:
		return configErrorf("line height must be positive, got %v", o.LineHeight)
	case o.Margin < 0:
		return configErrorf("margin must not be negative, got %d", o.Margin)
	case o.Width < 0 || o.Height < 0:
		return &DimensionsError{Width: o.Width, Height: o.Height}
	}
	return nil
}

// GIFOpt configures a GIFEncoder.
type GIFOpt func(*GIFEncoder)

// WithOptions replaces every option at once.
func WithOptions(o GIFOptions) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.opts = o
	}
}

func WithFontSize(size float64) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.opts.FontSize = size
	}
}

func WithLineHeight(multiple float64) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.opts.LineHeight = multiple
	}
}

func WithColors(bg, fg RGB) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.opts.Background = bg
		enc.opts.Foreground = fg
	}
}

// WithPixelSize scales every frame to w x h pixels.
func WithPixelSize(w, h int) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.opts.Width = w
		enc.opts.Height = h
	}
}

// WithFont overrides FontPath with an already loaded font.
func WithFont(f Font) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.font = f
	}
}

// WithProgress registers a callback invoked once per finished frame. It is
// called from several goroutines.
func WithProgress(fn func()) GIFOpt {
	return func(enc *GIFEncoder) {
		enc.progress = fn
	}
}

// GIFEncoder paints rasterized animations with a font and writes them as an
// animated GIF.
type GIFEncoder struct {
	opts     GIFOptions
	font     Font
	progress func()
}

func NewGIFEncoder(opts ...GIFOpt) (*GIFEncoder, error) {
	enc := &GIFEncoder{opts: DefaultGIFOptions()}
	for _, opt := range opts {
		opt(enc)
	}
	if err := enc.opts.Validate(); err != nil {
		return nil, err
	}
	if enc.font == nil {
		if enc.opts.FontPath != "" {
			f, err := LoadFont(enc.opts.FontPath)
			if err != nil {
				return nil, err
			}
			enc.font = f
		} else {
			enc.font = DefaultFont()
		}
	}
	if enc.progress == nil {
		enc.progress = func() {}
	}
	return enc, nil
}

/*
Encode paints every frame of anim and writes the result to w as a GIF.

The palette and quantizer are built once and shared by the frame workers,
which paint and quantize frames concurrently. Frames are then written in
order. Any failing frame aborts the whole encoding.
*/
func (enc *GIFEncoder) Encode(ctx context.Context, w io.Writer, anim *Animation) error {
	if len(anim.Frames) == 0 {
		return fmt.Errorf("%w: animation has no frames", ErrEncoding)
	}

	painter := NewPainter(enc.font, PainterOptions{
		FontSize:   enc.opts.FontSize,
		LineHeight: enc.opts.LineHeight,
		Margin:     enc.opts.Margin,
		Foreground: enc.opts.Foreground,
	})
	if err := painter.Check(anim.Frames); err != nil {
		return err
	}

	var cols, rows int
	colored := false
	for _, f := range anim.Frames {
		if f.Width > cols {
			cols = f.Width
		}
		if f.Height > rows {
			rows = f.Height
		}
		colored = colored || f.Colored
	}
	natW, natH := painter.CanvasSize(cols, rows)
	width, height := enc.outputSize(natW, natH)
	if width <= 0 || height <= 0 {
		return &DimensionsError{Width: width, Height: height}
	}

	var palette *Palette
	if colored {
		palette = NewColoredPalette(enc.opts.Background, enc.opts.Foreground)
	} else {
		palette = NewMonochromePalette(enc.opts.Background, enc.opts.Foreground, enc.opts.FontSize)
	}
	quantizer := NewQuantizer(palette)

	start := time.Now()
	images := make([]*image.Paletted, len(anim.Frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, frame := range anim.Frames {
		i, frame := i, frame
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			canvas := image.NewRGBA(image.Rect(0, 0, natW, natH))
			draw.Draw(canvas, canvas.Bounds(), image.NewUniform(enc.opts.Background), image.Point{}, draw.Src)
			painter.Paint(canvas, frame)

			out := canvas
			if width != natW || height != natH {
				out = toRGBA(resize.Resize(uint(width), uint(height), canvas, resize.Bilinear))
			}
			if b := out.Bounds(); b.Dx() != width || b.Dy() != height {
				return &FrameError{
					Index: i,
					Err:   fmt.Errorf("canvas is %dx%d, want %dx%d", b.Dx(), b.Dy(), width, height),
				}
			}
			images[i] = quantizer.Quantize(out)
			enc.progress()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	logger.WithField("frames", len(images)).Debugf("painted %dx%d frames in %v", width, height, time.Since(start))

	giff := &gif.GIF{
		LoopCount: loopCountToGIF(anim.LoopCount),
		Config: image.Config{
			ColorModel: quantizer.colors,
			Width:      width,
			Height:     height,
		},
	}
	for i, img := range images {
		giff.Image = append(giff.Image, img)
		giff.Delay = append(giff.Delay, delayUnits(anim.Frames[i].Delay))
	}
	if err := gif.EncodeAll(w, giff); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return nil
}

func (enc *GIFEncoder) outputSize(natW, natH int) (int, int) {
	w, h := enc.opts.Width, enc.opts.Height
	switch {
	case w > 0 && h > 0:
		return w, h
	case w > 0:
		return w, w * natH / natW
	case h > 0:
		return h * natW / natH, h
	default:
		return natW, natH
	}
}

// delayUnits converts a delay to hundredths of a second, at least one.
func delayUnits(d time.Duration) int {
	cs := int(d / (10 * time.Millisecond))
	if cs < 1 {
		return 1
	}
	return cs
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
