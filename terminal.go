package charmatrix

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// TerminalDimensions is a terminal size in character cells.
type TerminalDimensions struct {
	Width  int
	Height int
}

// Key is a key press read from the terminal.
type Key rune

const (
	KeyNone  Key = 0
	KeyCtrlC Key = 0x03
	KeyEsc   Key = 0x1b
	// KeyOther stands for multi byte sequences such as arrow keys.
	KeyOther Key = -1
)

// Terminal is the display used for live playback.
type Terminal interface {
	Size() (TerminalDimensions, error)
	ShowCursor(show bool) error
	Clear() error
	// Home moves the cursor to the top left corner.
	Home() error
	// WriteLines writes lines from the cursor down, clearing the rest of each
	// line.
	WriteLines(lines []string) error
	// PollKey returns the next pending key press without blocking.
	PollKey() (Key, bool)
}

// Xterm drives an ANSI terminal. Start puts the input in raw mode so single
// key presses can be polled; Close restores it.
type Xterm struct {
	Writer io.Writer
	in     *os.File
	out    *os.File

	keys     chan Key
	state    *term.State
	stopOnce sync.Once
}

func NewXterm(in, out *os.File) *Xterm {
	return &Xterm{
		Writer: out,
		in:     in,
		out:    out,
		keys:   make(chan Key, 16),
	}
}

// Start switches the input to raw mode and begins reading keys in the
// background. It is a no-op for input that is not a terminal.
func (t *Xterm) Start() error {
	if t.in == nil || !term.IsTerminal(int(t.in.Fd())) {
		return nil
	}
	state, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("%w: raw mode: %v", ErrTerminal, err)
	}
	t.state = state
	go t.readKeys(t.in)
	return nil
}

// maxKeyReadErrors bounds consecutive failed reads before the key reader
// gives up.
const maxKeyReadErrors = 10

// readKeys feeds key presses from r until it is exhausted. Failed reads are
// logged and retried.
func (t *Xterm) readKeys(r io.Reader) {
	p := make([]byte, 64)
	failures := 0
	for {
		n, err := r.Read(p)
		if n > 0 {
			failures = 0
			if n > 1 && p[0] == byte(KeyEsc) {
				t.push(KeyOther)
			} else {
				for _, b := range p[:n] {
					t.push(Key(b))
				}
			}
		}
		switch {
		case err == nil:
		case errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed):
			return
		default:
			failures++
			if failures >= maxKeyReadErrors {
				logger.WithError(err).Warn("giving up reading keys")
				return
			}
			logger.WithError(err).Warn("reading key")
		}
	}
}

// push drops the key if nobody is polling.
func (t *Xterm) push(k Key) {
	select {
	case t.keys <- k:
	default:
		logger.WithField("key", k).Warn("key buffer full, dropping key")
	}
}

// Close restores the input mode. It is safe to call more than once.
func (t *Xterm) Close() error {
	var err error
	t.stopOnce.Do(func() {
		if t.state != nil {
			err = term.Restore(int(t.in.Fd()), t.state)
		}
	})
	return err
}

func (t *Xterm) Size() (TerminalDimensions, error) {
	for _, f := range []*os.File{t.out, t.in} {
		if f == nil {
			continue
		}
		if w, h, err := term.GetSize(int(f.Fd())); err == nil {
			return TerminalDimensions{Width: w, Height: h}, nil
		}
	}
	return TerminalDimensions{}, fmt.Errorf("%w: size unavailable", ErrTerminal)
}

func (t *Xterm) write(s string) error {
	if _, err := io.WriteString(t.Writer, s); err != nil {
		return fmt.Errorf("%w: %v", ErrTerminal, err)
	}
	return nil
}

func (t *Xterm) ShowCursor(show bool) error {
	if show {
		return t.write("\033[?12l\033[?25h")
	}
	return t.write("\033[?25l")
}

func (t *Xterm) Clear() error {
	return t.write("\033[2J\033[H")
}

func (t *Xterm) Home() error {
	return t.write("\033[H")
}

func (t *Xterm) WriteLines(lines []string) error {
	bw := bufio.NewWriter(t.Writer)
	for _, line := range lines {
		bw.WriteString(line)
		// raw mode does not translate \n
		bw.WriteString("\033[K\r\n")
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrTerminal, err)
	}
	return nil
}

func (t *Xterm) PollKey() (Key, bool) {
	select {
	case k := <-t.keys:
		return k, true
	default:
		return KeyNone, false
	}
}
