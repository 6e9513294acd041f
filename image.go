package charmatrix

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DefaultDelay is used for frames whose delay is missing or zero.
const DefaultDelay = 100 * time.Millisecond

// Source is a decoded animation. Every frame is a full canvas of Width x Height
// pixels, already composited.
type Source struct {
	Width  int
	Height int
	Frames []image.Image
	// Delays may be shorter than Frames, or hold zeros. Use Delay to read them.
	Delays []time.Duration
	// LoopCount is the number of times the animation plays. 0 plays forever.
	LoopCount int
}

// Delay resolves the display time of frame i. A missing or zero delay falls
// back to the first frame's delay and then to DefaultDelay.
func (s *Source) Delay(i int) time.Duration {
	if i >= 0 && i < len(s.Delays) && s.Delays[i] > 0 {
		return s.Delays[i]
	}
	if len(s.Delays) > 0 && s.Delays[0] > 0 {
		return s.Delays[0]
	}
	return DefaultDelay
}

// Decode sniffs r and decodes either an animated GIF or a still image in any
// registered format (png, jpeg, bmp, webp).
func Decode(r io.Reader) (*Source, error) {
	br := bufio.NewReader(r)
	magic, _ := br.Peek(4)
	if bytes.HasPrefix(magic, []byte("GIF8")) {
		return DecodeGIF(br)
	}
	return DecodeImage(br)
}

// DecodeImage decodes a still image into a single frame source.
func DecodeImage(r io.Reader) (*Source, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecoding, err)
	}
	logger.WithField("format", format).Debug("decoded still image")
	return stillSource(img), nil
}

func stillSource(img image.Image) *Source {
	b := img.Bounds()
	canvas := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), img, b.Min, draw.Src)
	return &Source{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Frames:    []image.Image{canvas},
		LoopCount: 1,
	}
}
