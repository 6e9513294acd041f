package charmatrix

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"
	"time"
)

/*
DecodeGIF reads every frame of an animated GIF and composites it onto a full
size canvas. Frames are drawn over the previous result; transparent pixels of
a frame leave the canvas untouched. Disposal methods are not honored, so each
frame is the cumulative picture up to that point.

Delays are converted from hundredths of a second. The container's loop count
is kept: a GIF that plays three times yields LoopCount 3, a looping GIF yields
0 (forever).
*/
func DecodeGIF(r io.Reader) (*Source, error) {
	giff, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	if len(giff.Image) == 0 {
		return nil, fmt.Errorf("%w: gif has no frames", ErrDecoding)
	}

	width, height := giff.Config.Width, giff.Config.Height
	if width == 0 || height == 0 {
		var bounds image.Rectangle
		for _, frame := range giff.Image {
			bounds = bounds.Union(frame.Bounds())
		}
		width, height = bounds.Max.X, bounds.Max.Y
	}

	src := &Source{
		Width:     width,
		Height:    height,
		LoopCount: loopCountFromGIF(giff.LoopCount),
	}

	screen := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, frame := range giff.Image {
		drawFrame(screen, frame)

		snapshot := image.NewNRGBA(screen.Rect)
		copy(snapshot.Pix, screen.Pix)
		src.Frames = append(src.Frames, snapshot)

		if i < len(giff.Delay) {
			src.Delays = append(src.Delays, time.Duration(giff.Delay[i])*10*time.Millisecond)
		}
	}

	logger.WithField("frames", len(src.Frames)).
		WithField("loop", src.LoopCount).
		Debugf("decoded %dx%d gif", width, height)
	return src, nil
}

// drawFrame paints source over target, skipping transparent pixels and
// anything outside target.
func drawFrame(target draw.Image, source image.Image) {
	bounds := source.Bounds().Intersect(target.Bounds())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := source.At(x, y)
			if _, _, _, a := c.RGBA(); a == 0 {
				continue
			}
			target.Set(x, y, color.NRGBAModel.Convert(c))
		}
	}
}

// The GIF netscape extension stores repetitions after the first play: 0 loops
// forever, -1 means the extension is absent and the animation plays once.
func loopCountFromGIF(n int) int {
	switch {
	case n == 0:
		return 0
	case n < 0:
		return 1
	default:
		return n + 1
	}
}

func loopCountToGIF(plays int) int {
	switch {
	case plays <= 0:
		return 0
	case plays == 1:
		return -1
	default:
		return plays - 1
	}
}
