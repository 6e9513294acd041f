package charmatrix

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Text dump", func() {
	banner := strings.Repeat("=", 80)

	anim := &Animation{Frames: []*Frame{
		gridFrame(false, textRow("ab", White), textRow("cd", White)),
		gridFrame(false, textRow("ef", White), textRow("gh", White)),
	}}

	It("writes banners, titles and rows", func() {
		var buf bytes.Buffer
		Expect(WriteText(context.Background(), &buf, anim)).To(Succeed())
		Expect(buf.String()).To(Equal(strings.Join([]string{
			banner, "Frame 1", banner, "ab", "cd", "",
			banner, "Frame 2", banner, "ef", "gh", "",
		}, "\n") + "\n"))
	})

	It("reads a dump back", func() {
		var buf bytes.Buffer
		Expect(WriteText(context.Background(), &buf, anim)).To(Succeed())
		back, err := ReadText(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(back.Frames).To(HaveLen(2))
		Expect(back.Frames[1].Lines()).To(Equal([]string{"ef", "gh"}))
		Expect(back.Frames[1].Width).To(Equal(2))
		Expect(back.Frames[1].Height).To(Equal(2))
		Expect(back.Frames[0].Colored).To(BeFalse())
	})

	It("keeps colors through a dump", func() {
		colored := &Animation{Frames: []*Frame{
			gridFrame(true, []Cell{{'x', RGB{1, 2, 3}}, {'y', RGB{4, 5, 6}}}),
		}}
		var buf bytes.Buffer
		Expect(WriteText(context.Background(), &buf, colored)).To(Succeed())
		back, err := ReadText(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(back.Frames[0].Colored).To(BeTrue())
		Expect(back.Frames[0].Rows[0]).To(Equal(colored.Frames[0].Rows[0]))
	})

	It("reads back rows that look like banners", func() {
		flat := &Animation{Frames: []*Frame{
			gridFrame(false, textRow(banner, White), textRow(banner, White)),
			gridFrame(false, textRow(banner, White), textRow("Frame 9", White), textRow(banner, White)),
		}}
		var buf bytes.Buffer
		Expect(WriteText(context.Background(), &buf, flat)).To(Succeed())
		back, err := ReadText(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(back.Frames).To(HaveLen(2))
		Expect(back.Frames[0].Lines()).To(Equal([]string{banner, banner}))
		Expect(back.Frames[1].Lines()).To(Equal([]string{banner, "Frame 9", banner}))
		Expect(back.Frames[0].Width).To(Equal(80))
	})

	It("reads back a flat gray frame drawn with the simple ramp", func() {
		cfg := DefaultRenderConfig()
		cfg.RampName = RampSimple
		cfg.Width, cfg.Height = 80, 2
		gray := color.Gray{Y: 115}
		frame, err := Rasterize(context.Background(), solid(4, 4, gray), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(frame.Lines()[0]).To(Equal(banner))

		var buf bytes.Buffer
		Expect(WriteText(context.Background(), &buf, &Animation{Frames: []*Frame{frame}})).To(Succeed())
		back, err := ReadText(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(back.Frames).To(HaveLen(1))
		Expect(back.Frames[0].Lines()).To(Equal(frame.Lines()))
	})

	It("rejects text that is not a dump", func() {
		_, err := ReadText(strings.NewReader("hello\n"))
		Expect(errors.Is(err, ErrDecoding)).To(BeTrue())
		_, err = ReadText(strings.NewReader(banner + "\nnope\n"))
		Expect(errors.Is(err, ErrDecoding)).To(BeTrue())
		_, err = ReadText(strings.NewReader(""))
		Expect(errors.Is(err, ErrDecoding)).To(BeTrue())
	})
})
