package filter_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidf/internal/filter"
)

var _ = Describe("FirstOrderLPF", func() {
	It("derives rc from the cutoff", func() {
		f, err := filter.NewFirstOrderLPF(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.TimeConstant()).To(BeNumerically("~", 1/(2*math.Pi*10), 1e-15))
		Expect(f.CutoffFrequency()).To(Equal(10.0))
	})

	DescribeTable("rejects invalid cutoffs",
		func(fc float64) {
			_, err := filter.NewFirstOrderLPF(fc)
			Expect(err).To(MatchError(filter.ErrInvalidCutoffFrequency))
		},
		Entry("zero", 0.0),
		Entry("negative", -5.0),
		Entry("NaN", math.NaN()),
		Entry("+Inf", math.Inf(1)),
	)

	It("rises monotonically on a step and passes 0.95 within 5·rc·fs ticks", func() {
		const fs = 100.0
		f, err := filter.NewFirstOrderLPF(10)
		Expect(err).NotTo(HaveOccurred())

		limit := int(math.Ceil(5 * f.TimeConstant() * fs))
		prev := 0.0
		crossed := -1
		for i := 0; i < 50; i++ {
			y := f.Process(1, fs)
			Expect(y).To(BeNumerically("<=", 1))
			if prev < 1 {
				Expect(y).To(BeNumerically(">", prev), "tick %d", i)
			}
			if crossed < 0 && y > 0.95 {
				crossed = i + 1
			}
			prev = y
		}
		Expect(crossed).To(BeNumerically(">", 0))
		Expect(crossed).To(BeNumerically("<=", limit))
		Expect(prev).To(Equal(1.0))
	})

	It("converges monotonically to a negative constant", func() {
		f, err := filter.NewFirstOrderLPF(0.5)
		Expect(err).NotTo(HaveOccurred())

		prev := 0.0
		for i := 0; i < 200; i++ {
			y := f.Process(-3.5, 2)
			Expect(y).To(BeNumerically("<=", prev))
			Expect(y).To(BeNumerically(">=", -3.5))
			prev = y
		}
		Expect(prev).To(BeNumerically("~", -3.5, 1e-9))
	})

	It("recomputes the smoothing factor when the rate changes", func() {
		f, err := filter.NewFirstOrderLPF(1)
		Expect(err).NotTo(HaveOccurred())
		rc := f.TimeConstant()

		y1 := f.Process(1, 0.5)
		alpha1 := 0.5 / (rc + 0.5)
		Expect(y1).To(BeNumerically("~", alpha1, 1e-15))

		y2 := f.Process(1, 50)
		alpha2 := 50 / (rc + 50)
		Expect(y2).To(BeNumerically("~", y1+alpha2*(1-y1), 1e-15))
	})

	It("holds its output for an invalid sampling frequency", func() {
		f, err := filter.NewFirstOrderLPF(5)
		Expect(err).NotTo(HaveOccurred())

		y := f.Process(2, 100)
		Expect(f.Process(10, 0)).To(Equal(y))
		Expect(f.Process(10, -1)).To(Equal(y))
		Expect(f.Process(10, math.NaN())).To(Equal(y))
		Expect(f.Process(10, math.Inf(1))).To(Equal(y))
		Expect(f.Output()).To(Equal(y))
	})

	It("does not commit a non-finite result", func() {
		f, err := filter.NewFirstOrderLPF(5)
		Expect(err).NotTo(HaveOccurred())

		y := f.Process(2, 100)
		Expect(f.Process(math.Inf(1), 100)).To(Equal(y))
		Expect(f.Process(math.NaN(), 100)).To(Equal(y))
		Expect(f.Output()).To(Equal(y))
		Expect(f.Diverged()).To(BeTrue())

		Expect(math.IsInf(f.Process(2, 100), 0)).To(BeFalse())

		f.Reset()
		Expect(f.Diverged()).To(BeFalse())
	})

	It("is bit-for-bit deterministic across fresh instances", func() {
		inputs := []float64{0, 1, 0.3, -2, 7.25, 7.25, 0.001, -0.5}
		a, _ := filter.NewFirstOrderLPF(3)
		b, _ := filter.NewFirstOrderLPF(3)
		Expect(run(a, inputs, 40)).To(Equal(run(b, inputs, 40)))
	})

	It("returns to zero state on Reset", func() {
		f, _ := filter.NewFirstOrderLPF(3)
		first := run(f, []float64{1, 2, 3}, 10)
		f.Reset()
		Expect(f.Output()).To(BeZero())
		Expect(run(f, []float64{1, 2, 3}, 10)).To(Equal(first))
	})
})
