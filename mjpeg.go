package charmatrix

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"time"
)

type mjpegFrame struct {
	img image.Image
	err error
}

// MJPEGReader splits a motion JPEG stream into images at each end-of-image
// marker (0xffd9).
type MJPEGReader struct {
	Reader io.Reader
}

// ReadAll streams decoded frames until EOF, the first error, or ctx is done.
// The channel is closed when the reader stops.
func (mjpeg *MJPEGReader) ReadAll(ctx context.Context) <-chan mjpegFrame {
	frames := make(chan mjpegFrame)
	go func() {
		defer close(frames)

		send := func(f mjpegFrame) bool {
			select {
			case frames <- f:
				return true
			case <-ctx.Done():
				return false
			}
		}

		rdr := bufio.NewReader(mjpeg.Reader)
		var buf bytes.Buffer
		for {
			c, err := rdr.ReadByte()
			if err != nil {
				if err != io.EOF {
					send(mjpegFrame{err: err})
				}
				return
			}
			buf.WriteByte(c)

			data := buf.Bytes()
			if len(data) > 1 && data[len(data)-2] == 0xff && data[len(data)-1] == 0xd9 {
				img, err := jpeg.Decode(&buf)
				buf.Reset()
				if err != nil {
					send(mjpegFrame{err: err})
					return
				}
				if !send(mjpegFrame{img: img}) {
					return
				}
			}
		}
	}()
	return frames
}

// DecodeMJPEG collects a motion JPEG stream into a source played once at fps
// frames per second.
func DecodeMJPEG(ctx context.Context, r io.Reader, fps int) (*Source, error) {
	if fps <= 0 {
		return nil, configErrorf("fps must be positive, got %d", fps)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var src *Source
	reader := MJPEGReader{Reader: r}
	for frame := range reader.ReadAll(ctx) {
		if frame.err != nil {
			return nil, fmt.Errorf("%w: mjpeg frame %d: %v", ErrDecoding, frameCount(src), frame.err)
		}
		still := stillSource(frame.img)
		if src == nil {
			src = still
			continue
		}
		if still.Width != src.Width || still.Height != src.Height {
			return nil, fmt.Errorf("%w: mjpeg frame %d is %dx%d, want %dx%d", ErrDecoding,
				len(src.Frames), still.Width, still.Height, src.Width, src.Height)
		}
		src.Frames = append(src.Frames, still.Frames[0])
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: mjpeg stream has no frames", ErrDecoding)
	}
	src.Delays = []time.Duration{time.Second / time.Duration(fps)}
	return src, nil
}

func frameCount(src *Source) int {
	if src == nil {
		return 0
	}
	return len(src.Frames)
}
