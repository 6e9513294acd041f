package charmatrix

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"image/gif"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func rgbOf(c color.Color) RGB {
	r, g, b, _ := c.RGBA()
	return RGB{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)}
}

var _ = Describe("GIFEncoder", func() {
	var (
		font   *fakeFont
		bg, fg RGB
		anim   *Animation
	)

	BeforeEach(func() {
		font = &fakeFont{}
		bg, fg = RGB{10, 20, 30}, RGB{200, 100, 50}
		anim = &Animation{
			Frames: []*Frame{
				gridFrame(false, textRow("@ @", fg), textRow(" @ ", fg)),
				gridFrame(false, textRow("   ", fg), textRow("@@@", fg)),
			},
			LoopCount: 0,
		}
		anim.Frames[0].Delay = 50 * time.Millisecond
		anim.Frames[1].Delay = 0
	})

	encode := func(a *Animation, opts ...GIFOpt) *gif.GIF {
		enc, err := NewGIFEncoder(append([]GIFOpt{WithFont(font), WithColors(bg, fg)}, opts...)...)
		Expect(err).NotTo(HaveOccurred())
		var buf bytes.Buffer
		Expect(enc.Encode(context.Background(), &buf, a)).To(Succeed())
		g, err := gif.DecodeAll(&buf)
		Expect(err).NotTo(HaveOccurred())
		return g
	}

	It("round trips background and foreground as the first palette entries", func() {
		g := encode(anim)
		Expect(g.Image).To(HaveLen(2))
		pal := g.Image[0].Palette
		Expect(rgbOf(pal[0])).To(Equal(bg))
		Expect(rgbOf(pal[1])).To(Equal(fg))
	})

	It("paints glyph pixels with the foreground index", func() {
		g := encode(anim)
		// 14px font: 7px advance, 16px rows, 10px margin.
		Expect(g.Config.Width).To(Equal(3*7 + 20))
		Expect(g.Config.Height).To(Equal(32))
		Expect(g.Image[0].ColorIndexAt(0, 0)).To(Equal(uint8(0)))
		Expect(g.Image[0].ColorIndexAt(12, 4)).To(Equal(uint8(1)))
		Expect(g.Image[0].ColorIndexAt(19, 4)).To(Equal(uint8(0)))
		Expect(g.Image[1].ColorIndexAt(12, 4)).To(Equal(uint8(0)))
		Expect(g.Image[1].ColorIndexAt(19, 20)).To(Equal(uint8(1)))
	})

	It("converts delays to hundredths with a floor of one", func() {
		g := encode(anim)
		Expect(g.Delay).To(Equal([]int{5, 1}))
	})

	It("keeps the loop count", func() {
		Expect(encode(anim).LoopCount).To(Equal(0))
		anim.LoopCount = 1
		Expect(encode(anim).LoopCount).To(Equal(-1))
		anim.LoopCount = 3
		Expect(encode(anim).LoopCount).To(Equal(2))
	})

	It("scales to an explicit pixel size", func() {
		g := encode(anim, WithPixelSize(82, 64))
		Expect(g.Config.Width).To(Equal(82))
		Expect(g.Config.Height).To(Equal(64))
		Expect(g.Image[0].Bounds().Dx()).To(Equal(82))

		g = encode(anim, WithPixelSize(82, 0))
		Expect(g.Config.Height).To(Equal(64))
	})

	It("uses the colored palette for colored frames", func() {
		red := RGB{255, 0, 0}
		colored := &Animation{Frames: []*Frame{gridFrame(true, textRow("@@", red))}}
		g := encode(colored)
		Expect(rgbOf(g.Image[0].Palette[2])).To(Equal(red))
		Expect(g.Image[0].ColorIndexAt(12, 4)).To(Equal(uint8(2)))
	})

	It("reports progress once per frame", func() {
		var n int32
		done := make(chan struct{}, 2)
		encode(anim, WithProgress(func() { done <- struct{}{} }))
		for range anim.Frames {
			Eventually(done).Should(Receive())
			n++
		}
		Expect(n).To(Equal(int32(2)))
	})

	It("fails on glyphs the font lacks", func() {
		font.unsupported = map[rune]bool{'@': true}
		enc, err := NewGIFEncoder(WithFont(font))
		Expect(err).NotTo(HaveOccurred())
		err = enc.Encode(context.Background(), &bytes.Buffer{}, anim)
		Expect(errors.Is(err, ErrFontUnsupported)).To(BeTrue())
	})

	It("rejects bad options", func() {
		_, err := NewGIFEncoder(WithFontSize(0))
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
		_, err = NewGIFEncoder(WithPixelSize(-1, 10))
		Expect(errors.Is(err, ErrInvalidDimensions)).To(BeTrue())
	})

	It("rejects an empty animation", func() {
		enc, err := NewGIFEncoder(WithFont(font))
		Expect(err).NotTo(HaveOccurred())
		err = enc.Encode(context.Background(), &bytes.Buffer{}, &Animation{})
		Expect(errors.Is(err, ErrEncoding)).To(BeTrue())
	})
})

var _ = Describe("FrameError", func() {
	It("names the frame and matches ErrEncoding", func() {
		err := error(&FrameError{Index: 3, Err: errors.New("boom")})
		Expect(err.Error()).To(Equal("frame 3: boom"))
		Expect(errors.Is(err, ErrEncoding)).To(BeTrue())
	})
})
