package charmatrix

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("PlanDimensions", func() {
	base := func(mod func(*RenderConfig)) RenderConfig {
		cfg := DefaultRenderConfig()
		mod(&cfg)
		return cfg
	}

	DescribeTable("resolution rules on a 100x50 source",
		func(cfg RenderConfig, wantW, wantH int) {
			w, h, err := PlanDimensions(100, 50, cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(w).To(Equal(wantW))
			Expect(h).To(Equal(wantH))
		},
		Entry("scale", base(func(c *RenderConfig) { c.Scale = 0.5 }), 50, 50),
		Entry("scale ignores aspect preservation", base(func(c *RenderConfig) {
			c.Scale = 0.5
			c.PreserveAspect = false
		}), 50, 50),
		Entry("tiny scale floors to one cell", base(func(c *RenderConfig) { c.Scale = 0.001 }), 1, 1),
		Entry("explicit width and height", base(func(c *RenderConfig) {
			c.Width = 30
			c.Height = 7
		}), 30, 7),
		Entry("width with aspect", base(func(c *RenderConfig) { c.Width = 40 }), 40, 40),
		Entry("width without aspect", base(func(c *RenderConfig) {
			c.Width = 40
			c.PreserveAspect = false
		}), 40, 100),
		Entry("height with aspect", base(func(c *RenderConfig) { c.Height = 20 }), 20, 20),
		Entry("height without aspect", base(func(c *RenderConfig) {
			c.Height = 20
			c.PreserveAspect = false
		}), 100, 20),
		Entry("source size with aspect", base(func(c *RenderConfig) {}), 100, 100),
		Entry("source size without aspect", base(func(c *RenderConfig) { c.PreserveAspect = false }), 100, 50),
	)

	It("rejects empty sources", func() {
		_, _, err := PlanDimensions(0, 10, DefaultRenderConfig())
		Expect(errors.Is(err, ErrInvalidDimensions)).To(BeTrue())

		var dimErr *DimensionsError
		Expect(errors.As(err, &dimErr)).To(BeTrue())
		Expect(dimErr.Width).To(Equal(0))
	})

	It("rejects a result that truncates to zero rows", func() {
		cfg := DefaultRenderConfig()
		cfg.Width = 1
		_, _, err := PlanDimensions(100, 1, cfg)
		Expect(errors.Is(err, ErrInvalidDimensions)).To(BeTrue())
	})

	It("rejects a non positive char aspect", func() {
		cfg := DefaultRenderConfig()
		cfg.CharAspect = 0
		_, _, err := PlanDimensions(10, 10, cfg)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
	})

	It("never returns a zero dimension for valid configs", func() {
		for _, src := range [][2]int{{1, 1}, {1, 1000}, {1000, 1}, {37, 91}} {
			for _, scale := range []float64{0, 0.01, 1, 3} {
				for _, aspect := range []float64{0.1, 0.5, 2} {
					cfg := DefaultRenderConfig()
					cfg.Scale = scale
					cfg.CharAspect = aspect
					w, h, err := PlanDimensions(src[0], src[1], cfg)
					if err != nil {
						Expect(errors.Is(err, ErrInvalidDimensions)).To(BeTrue())
						continue
					}
					Expect(w).To(BeNumerically(">", 0))
					Expect(h).To(BeNumerically(">", 0))
				}
			}
		}
	})
})
