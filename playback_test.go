package charmatrix

import (
	"context"
	"errors"
	"image"
	"image/color"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func playbackSource(loops int) *Source {
	return &Source{
		Width:     8,
		Height:    8,
		Frames:    []image.Image{solid(8, 8, color.Black), solid(8, 8, color.White), solid(8, 8, color.Black)},
		Delays:    []time.Duration{5 * time.Millisecond},
		LoopCount: loops,
	}
}

var _ = Describe("FrameManager", func() {
	var m *FrameManager

	BeforeEach(func() {
		m = NewFrameManager(playbackSource(0), DefaultRenderConfig(), TerminalDimensions{20, 14}, Margins{2, 4})
	})

	It("renders for the terminal size minus margins", func() {
		anim, err := m.Frames(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(anim.Frames).To(HaveLen(3))
		Expect(anim.Frames[0].Width).To(Equal(18))
		Expect(anim.Frames[0].Height).To(Equal(10))
	})

	It("regenerates once for repeated identical sizes", func() {
		_, err := m.Frames(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(m.UpdateDimensions(TerminalDimensions{30, 20})).To(BeTrue())
		Expect(m.UpdateDimensions(TerminalDimensions{30, 20})).To(BeFalse())
		anim, err := m.Frames(context.Background())
		Expect(err).NotTo(HaveOccurred())
		again, err := m.Frames(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(again).To(BeIdenticalTo(anim))
		Expect(m.Renders()).To(Equal(2))
		Expect(anim.Frames[0].Width).To(Equal(28))
	})

	It("ignores the scale of the template", func() {
		cfg := DefaultRenderConfig()
		cfg.Scale = 3
		m = NewFrameManager(playbackSource(0), cfg, TerminalDimensions{20, 14}, Margins{2, 4})
		anim, err := m.Frames(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(anim.Frames[0].Width).To(Equal(18))
	})

	It("fails when the terminal is smaller than the margins", func() {
		m.UpdateDimensions(TerminalDimensions{2, 30})
		_, err := m.Frames(context.Background())
		Expect(errors.Is(err, ErrTerminalTooSmall)).To(BeTrue())
	})
})

var _ = Describe("Player", func() {
	var (
		term   *fakeTerminal
		resize chan TerminalDimensions
	)

	newPlayer := func(loops int) *Player {
		m := NewFrameManager(playbackSource(loops), DefaultRenderConfig(), term.dims, Margins{2, 4})
		p := NewPlayer(term, m, PlaybackOptions{ClearOnExit: true, PollInterval: time.Millisecond})
		p.Resize = resize
		return p
	}

	BeforeEach(func() {
		term = &fakeTerminal{dims: TerminalDimensions{20, 14}, cursor: true}
		resize = make(chan TerminalDimensions, 1)
	})

	It("plays every frame loop count times", func() {
		p := newPlayer(2)
		Expect(p.Play(context.Background())).To(Succeed())
		Expect(term.Frames()).To(HaveLen(6))
		Expect(term.cursor).To(BeTrue())
		Expect(p.State()).To(Equal(StateExiting))
	})

	It("quits on q and restores the cursor", func() {
		term.keys = []Key{'q'}
		p := newPlayer(0)
		Expect(p.Play(context.Background())).To(Succeed())
		Expect(term.Frames()).To(HaveLen(1))
		Expect(term.cursor).To(BeTrue())
		Expect(term.clears).To(Equal(2))
	})

	It("quits on escape and ctrl-c", func() {
		for _, k := range []Key{KeyEsc, KeyCtrlC, 'Q'} {
			term = &fakeTerminal{dims: TerminalDimensions{20, 14}, keys: []Key{'x', k}}
			p := newPlayer(0)
			Expect(p.Play(context.Background())).To(Succeed())
			Expect(term.Frames()).To(HaveLen(1))
		}
	})

	It("pauses until another key is pressed", func() {
		term.keys = []Key{'p', 'x', 'q'}
		p := newPlayer(0)
		Expect(p.Play(context.Background())).To(Succeed())
		Expect(term.Frames()).To(HaveLen(2))
	})

	It("restarts from the first frame after a resize", func() {
		p := newPlayer(0)
		resize <- TerminalDimensions{30, 24}
		term.keys = []Key{'q'}

		Expect(p.Play(context.Background())).To(Succeed())
		frames := term.Frames()
		Expect(frames).To(HaveLen(2))
		Expect(frames[0]).To(HaveLen(10))
		Expect(frames[1]).To(HaveLen(20))
		Expect(frames[1][0]).To(HaveLen(28))
		Expect(p.frames.Renders()).To(Equal(2))
	})

	It("ignores a resize to the same size", func() {
		p := newPlayer(1)
		resize <- TerminalDimensions{20, 14}
		Expect(p.Play(context.Background())).To(Succeed())
		Expect(p.frames.Renders()).To(Equal(1))
	})

	It("keeps the frame delay when the size did not change", func() {
		src := playbackSource(1)
		src.Delays = []time.Duration{60 * time.Millisecond}
		m := NewFrameManager(src, DefaultRenderConfig(), term.dims, Margins{2, 4})
		p := NewPlayer(term, m, PlaybackOptions{PollInterval: time.Millisecond})
		p.Resize = resize
		resize <- TerminalDimensions{20, 14}

		start := time.Now()
		Expect(p.Play(context.Background())).To(Succeed())
		Expect(time.Since(start)).To(BeNumerically(">=", 180*time.Millisecond))
		Expect(term.Frames()).To(HaveLen(3))
	})

	It("fails when resized below the margins but still restores the cursor", func() {
		p := newPlayer(0)
		resize <- TerminalDimensions{1, 1}
		err := p.Play(context.Background())
		Expect(errors.Is(err, ErrTerminalTooSmall)).To(BeTrue())
		Expect(term.cursor).To(BeTrue())
	})

	It("stops when asked from another goroutine", func() {
		p := newPlayer(0)
		go func() {
			time.Sleep(20 * time.Millisecond)
			p.Stop()
		}()
		Expect(p.Play(context.Background())).To(Succeed())
	})

	It("returns the context error when cancelled", func() {
		p := newPlayer(0)
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
		Expect(errors.Is(p.Play(ctx), context.Canceled)).To(BeTrue())
		Expect(term.cursor).To(BeTrue())
	})
})
