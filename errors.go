package charmatrix

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrInvalidDimensions = errors.New("invalid dimensions")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrFontUnsupported   = errors.New("font does not support characters")
	ErrTerminal          = errors.New("terminal operation failed")
	ErrTerminalTooSmall  = errors.New("terminal too small for display")
	ErrEncoding          = errors.New("animation encoding failed")
	ErrDecoding          = errors.New("animation decoding failed")
)

// DimensionsError reports a width or height that cannot be rendered.
type DimensionsError struct {
	Width  int
	Height int
}

func (e *DimensionsError) Error() string {
	return fmt.Sprintf("invalid dimensions: width=%d, height=%d", e.Width, e.Height)
}

func (e *DimensionsError) Is(target error) bool {
	return target == ErrInvalidDimensions
}

// UnsupportedCharsError names every glyph the font cannot draw.
type UnsupportedCharsError struct {
	Chars []rune
}

func (e *UnsupportedCharsError) Error() string {
	quoted := make([]string, len(e.Chars))
	for i, r := range e.Chars {
		quoted[i] = strconv.QuoteRune(r)
	}
	return fmt.Sprintf("font does not support characters: %s", strings.Join(quoted, ", "))
}

func (e *UnsupportedCharsError) Is(target error) bool {
	return target == ErrFontUnsupported
}

// FrameError ties a failure to the frame that caused it.
type FrameError struct {
	Index int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Index, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

func (e *FrameError) Is(target error) bool {
	return target == ErrEncoding
}

func configErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
