package charmatrix

import (
	"errors"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ramp", func() {
	It("maps brightness bounds to the ends of the ramp", func() {
		r, err := NewRamp(" .:@")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.Glyph(0)).To(Equal(' '))
		Expect(r.Glyph(1)).To(Equal('@'))
		Expect(r.Glyph(-3)).To(Equal(' '))
		Expect(r.Glyph(7)).To(Equal('@'))
		Expect(r.Glyph(0.5)).To(Equal(':'))
	})

	It("has the built-in ramps", func() {
		for name, size := range map[string]int{RampSimple: 10, RampDetailed: 69, RampBraille: 9} {
			r, err := LookupRamp(name, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Len()).To(Equal(size), name)
		}
		r, err := LookupRamp("", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.String()).To(Equal(detailedGlyphs))
	})

	It("orders braille from empty to full", func() {
		r, _ := LookupRamp(RampBraille, "")
		Expect(r.Glyph(0)).To(Equal('⠀'))
		Expect(r.Glyph(1)).To(Equal('⣿'))
	})

	It("prefers a custom ramp", func() {
		r, err := LookupRamp(RampSimple, "ab")
		Expect(err).NotTo(HaveOccurred())
		Expect(r.String()).To(Equal("ab"))
	})

	DescribeInvalid := func(glyphs string) {
		_, err := NewRamp(glyphs)
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue(), glyphs)
	}

	It("rejects malformed ramps", func() {
		DescribeInvalid("")
		DescribeInvalid("x")
		DescribeInvalid("aa")
		DescribeInvalid("a\x01")
		DescribeInvalid("\xff\xfe")
		DescribeInvalid(strings.Repeat("x", 300))
		_, err := LookupRamp("nope", "")
		Expect(errors.Is(err, ErrInvalidConfig)).To(BeTrue())
	})
})

var _ = Describe("Brightness", func() {
	It("uses luma weights", func() {
		Expect(Brightness(0, 0, 0, false)).To(BeNumerically("==", 0))
		Expect(Brightness(255, 255, 255, false)).To(BeNumerically("~", 1, 1e-9))
		Expect(Brightness(255, 0, 0, false)).To(BeNumerically("~", 0.299, 1e-9))
		Expect(Brightness(0, 255, 0, false)).To(BeNumerically("~", 0.587, 1e-9))
		Expect(Brightness(0, 0, 255, true)).To(BeNumerically("~", 1-0.114, 1e-9))
	})

	It("picks non decreasing glyphs as pixels get brighter, reversed when inverted", func() {
		ramp, _ := LookupRamp(RampDetailed, "")
		prev, prevInv := -1, ramp.Len()
		for v := 0; v < 256; v++ {
			c := uint8(v)
			i := ramp.Index(ramp.Glyph(Brightness(c, c, c, false)))
			inv := ramp.Index(ramp.Glyph(Brightness(c, c, c, true)))
			Expect(i).To(BeNumerically(">=", prev))
			Expect(inv).To(BeNumerically("<=", prevInv))
			prev, prevInv = i, inv
		}
	})
})
