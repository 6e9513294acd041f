package charmatrix

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

var frameBanner = strings.Repeat("=", 80)

// WriteText dumps every frame as plain text:
//
//	================...
//	Frame 1
//	================...
//	<rows>
//	<blank line>
//
// Colored frames keep their color escapes. Frames are formatted concurrently
// and written in order.
func WriteText(ctx context.Context, w io.Writer, anim *Animation) error {
	chunks := make([][]byte, len(anim.Frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, frame := range anim.Frames {
		i, frame := i, frame
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var buf bytes.Buffer
			fmt.Fprintf(&buf, "%s\nFrame %d\n%s\n", frameBanner, i+1, frameBanner)
			for _, line := range frame.DisplayLines() {
				buf.WriteString(line)
				buf.WriteByte('\n')
			}
			buf.WriteByte('\n')
			chunks[i] = buf.Bytes()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, chunk := range chunks {
		if _, err := bw.Write(chunk); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadText parses a dump written by WriteText. Delays are not part of the dump
// and come back as DefaultDelay.
//
// A banner only opens a frame at the top of the dump or after the blank line
// that closes the previous frame, and only when a title and a second banner
// follow. Rows made of '=' glyphs are read as rows.
func ReadText(r io.Reader) (*Animation, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	anim := &Animation{}
	var cur *Frame
	finish := func() {
		if cur == nil {
			return
		}
		// drop the blank separator line
		if n := len(cur.Rows); n > 0 && len(cur.Rows[n-1]) == 0 {
			cur.Rows = cur.Rows[:n-1]
		}
		cur.Height = len(cur.Rows)
		anim.Frames = append(anim.Frames, cur)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if line == frameBanner && (i == 0 || lines[i-1] == "") {
			if isFrameHeader(lines[i:]) {
				finish()
				cur = &Frame{Delay: DefaultDelay}
				i += 2
				continue
			}
			if cur == nil {
				return nil, fmt.Errorf("%w: malformed frame header at line %d", ErrDecoding, i+1)
			}
		}
		if cur == nil {
			return nil, fmt.Errorf("%w: text before first frame", ErrDecoding)
		}
		cells, err := ParseANSILine(line)
		if err != nil {
			return nil, err
		}
		if strings.ContainsRune(line, esc) {
			cur.Colored = true
		}
		if len(cells) > cur.Width {
			cur.Width = len(cells)
		}
		cur.Rows = append(cur.Rows, cells)
	}
	finish()
	if len(anim.Frames) == 0 {
		return nil, fmt.Errorf("%w: no frames in text", ErrDecoding)
	}
	return anim, nil
}

// isFrameHeader reports whether lines start with banner, "Frame N", banner.
func isFrameHeader(lines []string) bool {
	if len(lines) < 3 || lines[0] != frameBanner || lines[2] != frameBanner {
		return false
	}
	title := lines[1]
	if !strings.HasPrefix(title, "Frame ") {
		return false
	}
	_, err := strconv.Atoi(strings.TrimPrefix(title, "Frame "))
	return err == nil
}
