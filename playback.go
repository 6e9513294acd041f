package charmatrix

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Margins are the cells kept free around a frame during playback.
type Margins struct {
	Width  int
	Height int
}

// FrameManager renders a source for the current terminal size. Frames are
// cached until the size changes.
type FrameManager struct {
	src     *Source
	cfg     RenderConfig
	margins Margins
	dims    TerminalDimensions
	cache   *Animation
	renders int
}

func NewFrameManager(src *Source, cfg RenderConfig, dims TerminalDimensions, margins Margins) *FrameManager {
	return &FrameManager{
		src:     src,
		cfg:     cfg,
		margins: margins,
		dims:    dims,
	}
}

// Dimensions returns the terminal size frames are rendered for.
func (m *FrameManager) Dimensions() TerminalDimensions {
	return m.dims
}

// Renders counts how many times the frames were regenerated.
func (m *FrameManager) Renders() int {
	return m.renders
}

// UpdateDimensions records a new terminal size and drops the cached frames.
// It reports whether anything changed; an identical size is ignored.
func (m *FrameManager) UpdateDimensions(dims TerminalDimensions) bool {
	if dims == m.dims {
		return false
	}
	m.dims = dims
	m.cache = nil
	return true
}

// Frames returns the cached frames, rendering them first if needed.
func (m *FrameManager) Frames(ctx context.Context) (*Animation, error) {
	if m.cache != nil {
		return m.cache, nil
	}

	cfg := m.cfg
	cfg.Scale = 0
	cfg.Width = m.dims.Width - m.margins.Width
	cfg.Height = m.dims.Height - m.margins.Height
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d leaves %dx%d", ErrTerminalTooSmall,
			m.dims.Width, m.dims.Height, cfg.Width, cfg.Height)
	}

	anim, err := RasterizeAll(ctx, m.src, cfg)
	if err != nil {
		return nil, err
	}
	m.cache = anim
	m.renders++
	logger.WithField("cols", cfg.Width).WithField("rows", cfg.Height).Debug("regenerated frames")
	return anim, nil
}

// PlayerState is the phase of the playback loop.
type PlayerState int32

const (
	StateIdle PlayerState = iota
	StatePlaying
	StatePaused
	StateResizing
	StateExiting
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateResizing:
		return "resizing"
	case StateExiting:
		return "exiting"
	}
	return fmt.Sprintf("PlayerState(%d)", int32(s))
}

func isQuitKey(k Key) bool {
	return k == 'q' || k == 'Q' || k == KeyEsc || k == KeyCtrlC
}

func isPauseKey(k Key) bool {
	return k == 'p' || k == 'P' || k == ' '
}

type step int

const (
	stepNext step = iota
	stepRestart
	stepQuit
)

// Player shows frames on a terminal, following its size as it changes.
type Player struct {
	term   Terminal
	frames *FrameManager
	opts   PlaybackOptions

	// Resize overrides the terminal size watcher. Tests feed sizes through it.
	Resize <-chan TerminalDimensions

	anim  *Animation
	quit  atomic.Bool
	state atomic.Int32
}

func NewPlayer(t Terminal, frames *FrameManager, opts PlaybackOptions) *Player {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPlaybackOptions().PollInterval
	}
	return &Player{
		term:   t,
		frames: frames,
		opts:   opts,
	}
}

// State returns the current phase of the loop.
func (p *Player) State() PlayerState {
	return PlayerState(p.state.Load())
}

func (p *Player) setState(s PlayerState) {
	p.state.Store(int32(s))
}

// Stop asks the loop to exit before the next frame. It may be called from any
// goroutine.
func (p *Player) Stop() {
	p.quit.Store(true)
}

/*
Play loops over the frames until the loop count is exhausted, a quit key is
pressed, Stop is called or ctx is done. A pause key holds the current frame
until any other key is pressed. When the terminal is resized the frames are
rendered again and the current loop restarts at its first frame.

The cursor is hidden while playing and shown again on every exit path.
*/
func (p *Player) Play(ctx context.Context) (err error) {
	p.setState(StateIdle)
	anim, err := p.frames.Frames(ctx)
	if err != nil {
		return err
	}
	p.anim = anim

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	resize := p.Resize
	if resize == nil {
		resize = WatchResize(ctx, p.term, p.opts.PollInterval)
	}

	if err := p.term.ShowCursor(false); err != nil {
		return err
	}
	defer func() {
		p.setState(StateExiting)
		if p.opts.ClearOnExit {
			if cerr := p.term.Clear(); err == nil {
				err = cerr
			}
		}
		if serr := p.term.ShowCursor(true); err == nil {
			err = serr
		}
	}()
	if err := p.term.Clear(); err != nil {
		return err
	}

	p.setState(StatePlaying)
	for loop := 0; p.anim.LoopCount == 0 || loop < p.anim.LoopCount; loop++ {
		for i := 0; i < len(p.anim.Frames); i++ {
			if p.quit.Load() {
				return nil
			}
			frame := p.anim.Frames[i]
			if err := p.show(frame); err != nil {
				return err
			}
			next, err := p.wait(ctx, frame.Delay, resize)
			if err != nil {
				return err
			}
			switch next {
			case stepQuit:
				return nil
			case stepRestart:
				i = -1
			}
		}
	}
	return nil
}

func (p *Player) show(frame *Frame) error {
	if err := p.term.Home(); err != nil {
		return err
	}
	return p.term.WriteLines(frame.DisplayLines())
}

// wait sleeps for one frame delay, reacting to resizes, then polls keys.
func (p *Player) wait(ctx context.Context, delay time.Duration, resize <-chan TerminalDimensions) (step, error) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return stepQuit, ctx.Err()
		case dims, ok := <-resize:
			if !ok {
				return stepQuit, ctx.Err()
			}
			if dims == p.frames.Dimensions() {
				// keep the rest of this frame's delay
				continue
			}
			return p.applyResize(ctx, dims)
		case <-timer.C:
		}
		return p.pollKeys(ctx, resize)
	}
}

func (p *Player) pollKeys(ctx context.Context, resize <-chan TerminalDimensions) (step, error) {
	for {
		k, ok := p.term.PollKey()
		if !ok {
			return stepNext, nil
		}
		switch {
		case isQuitKey(k):
			p.Stop()
			return stepQuit, nil
		case isPauseKey(k):
			return p.pause(ctx, resize)
		}
	}
}

// pause holds the current frame until a key is pressed. A resize seen while
// paused is applied on resume.
func (p *Player) pause(ctx context.Context, resize <-chan TerminalDimensions) (step, error) {
	p.setState(StatePaused)
	var (
		pending    TerminalDimensions
		hasPending bool
	)
	ticker := time.NewTicker(p.opts.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return stepQuit, ctx.Err()
		case dims, ok := <-resize:
			if !ok {
				return stepQuit, ctx.Err()
			}
			pending, hasPending = dims, true
			continue
		case <-ticker.C:
		}

		if p.quit.Load() {
			return stepQuit, nil
		}
		k, ok := p.term.PollKey()
		if !ok {
			continue
		}
		if isQuitKey(k) {
			p.Stop()
			return stepQuit, nil
		}
		p.setState(StatePlaying)
		if hasPending {
			return p.applyResize(ctx, pending)
		}
		return stepNext, nil
	}
}

func (p *Player) applyResize(ctx context.Context, dims TerminalDimensions) (step, error) {
	p.setState(StateResizing)
	if !p.frames.UpdateDimensions(dims) {
		p.setState(StatePlaying)
		return stepNext, nil
	}
	anim, err := p.frames.Frames(ctx)
	if err != nil {
		return stepQuit, err
	}
	p.anim = anim
	if err := p.term.Clear(); err != nil {
		return stepQuit, err
	}
	p.setState(StatePlaying)
	return stepRestart, nil
}
