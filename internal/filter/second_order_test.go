package filter_test

import (
	"math"
	"math/cmplx"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidf/internal/filter"
)

var _ = Describe("ButterworthCoefficients", func() {
	It("matches hand-derived values at a quarter turn", func() {
		// sin=1, cos=0: alpha=1/√2, scale=1/(1+1/√2)
		c := filter.ButterworthCoefficients(math.Pi / 2)
		Expect(c.B0).To(BeNumerically("~", 0.853553, 1e-6))
		Expect(c.B1).To(BeNumerically("~", 0.585786, 1e-6))
		Expect(c.B2).To(Equal(c.B0))
		Expect(c.A1).To(BeNumerically("~", 0, 1e-12))
		Expect(c.A2).To(BeNumerically("~", 0.171573, 1e-6))
		Expect(c.Stable()).To(BeTrue())
	})

	It("puts both poles inside the unit circle when stable", func() {
		c := filter.ButterworthCoefficients(0.2 * math.Pi)
		Expect(c.Stable()).To(BeTrue())
		for _, p := range c.Poles() {
			Expect(cmplx.Abs(p)).To(BeNumerically("<", 1))
		}
		Expect(c.MagnitudeSquared(0, 100)).To(BeNumerically("~", c.DCGain()*c.DCGain(), 1e-9))
		Expect(c.MagnitudeSquared(45, 100)).To(BeNumerically("<", c.MagnitudeSquared(1, 100)))
	})

	It("reports negative-sine angles as unstable", func() {
		c := filter.ButterworthCoefficients(1.5 * math.Pi)
		Expect(c.Finite()).To(BeTrue())
		Expect(c.Stable()).To(BeFalse())
		Expect(cmplx.Abs(c.Poles()[0])).To(BeNumerically(">", 1))
	})
})

var _ = Describe("SecondOrderLPF", func() {
	It("rejects invalid cutoffs", func() {
		for _, fc := range []float64{0, -1, math.NaN(), math.Inf(1)} {
			_, err := filter.NewSecondOrderLPF(fc)
			Expect(err).To(MatchError(filter.ErrInvalidCutoffFrequency))
		}
	})

	It("uses the literal cutoff·rate angle by default", func() {
		f, err := filter.NewSecondOrderLPF(0.25)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Coefficients(1)).To(Equal(filter.ButterworthCoefficients(filter.LiteralAngularFrequency(0.25, 1))))
		Expect(filter.LiteralAngularFrequency(0.25, 1)).To(BeNumerically("~", math.Pi/2, 1e-15))
	})

	It("evaluates the difference equation over a two-tap history", func() {
		const fs = 1.0
		f, err := filter.NewSecondOrderLPF(0.25)
		Expect(err).NotTo(HaveOccurred())
		c := f.Coefficients(fs)

		var x1, x2, y1, y2 float64
		for i, x := range []float64{1, 0.5, -0.25, 2, 0} {
			want := c.B0*x + c.B1*x1 + c.B2*x2 - c.A1*y1 - c.A2*y2
			Expect(f.Process(x, fs)).To(BeNumerically("~", want, 1e-12), "tick %d", i)
			x2, x1 = x1, x
			y2, y1 = y1, want
		}
	})

	It("stays bounded on a step in a stable regime and settles at the DC gain", func() {
		const fs = 100.0
		f, err := filter.NewSecondOrderLPF(0.001)
		Expect(err).NotTo(HaveOccurred())
		c := f.Coefficients(fs)
		Expect(c.Stable()).To(BeTrue())

		out := run(f, step(1000, 1), fs)
		for _, y := range out {
			Expect(math.IsNaN(y) || math.IsInf(y, 0)).To(BeFalse())
			Expect(math.Abs(y)).To(BeNumerically("<", 5))
		}
		Expect(out[len(out)-1]).To(BeNumerically("~", c.DCGain(), 1e-6))
		Expect(f.Diverged()).To(BeFalse())
	})

	It("detects an unstable literal regime", func() {
		// fc·fs = 0.75 puts the angle at 1.5π, where sin < 0 drives A2 above one.
		const fs = 100.0
		f, err := filter.NewSecondOrderLPF(0.0075)
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Coefficients(fs).Stable()).To(BeFalse())

		peak := 0.0
		for i := 0; i < 2000; i++ {
			y := f.Process(1, fs)
			Expect(math.IsNaN(y) || math.IsInf(y, 0)).To(BeFalse())
			peak = math.Max(peak, math.Abs(y))
		}
		Expect(f.Diverged()).To(BeTrue())
		Expect(peak).To(BeNumerically(">", 1e100))

		f.Reset()
		Expect(f.Diverged()).To(BeFalse())
		Expect(f.Output()).To(BeZero())
	})

	It("flags where the literal and normalized constructions disagree", func() {
		const fc, fs = 10.0, 100.0
		literal, err := filter.NewSecondOrderLPF(fc)
		Expect(err).NotTo(HaveOccurred())
		normalized, err := filter.NewSecondOrderLPF(fc, filter.WithAngularFrequency(filter.NormalizedAngularFrequency))
		Expect(err).NotTo(HaveOccurred())

		Expect(literal.Coefficients(fs)).NotTo(Equal(normalized.Coefficients(fs)))
		Expect(normalized.Coefficients(fs).Stable()).To(BeTrue())

		in := step(300, 1)
		Expect(run(literal, in, fs)).NotTo(Equal(run(normalized, in, fs)))
	})

	It("agrees with the normalized construction when fc·fs equals fc'/fs", func() {
		a := filter.ButterworthCoefficients(filter.LiteralAngularFrequency(0.001, 100))
		b := filter.ButterworthCoefficients(filter.NormalizedAngularFrequency(10, 100))
		Expect(a.B0).To(BeNumerically("~", b.B0, 1e-12))
		Expect(a.A1).To(BeNumerically("~", b.A1, 1e-12))
		Expect(a.A2).To(BeNumerically("~", b.A2, 1e-12))
	})

	It("accepts a custom angular-frequency step", func() {
		calls := 0
		f, err := filter.NewSecondOrderLPF(5, filter.WithAngularFrequency(func(fc, fs float64) float64 {
			calls++
			return math.Pi / 2
		}))
		Expect(err).NotTo(HaveOccurred())

		f.Process(1, 100)
		f.Process(1, 100)
		Expect(calls).To(Equal(1), "coefficients are cached while the rate is unchanged")
		f.Process(1, 200)
		Expect(calls).To(Equal(2))
	})

	It("produces the same sequence with a varying rate as a fresh instance", func() {
		rates := []float64{100, 100, 120, 80, 100, 100, 250}
		inputs := []float64{1, 1, 0.5, 0.25, -1, 3, 0}
		opt := filter.WithAngularFrequency(filter.NormalizedAngularFrequency)

		a, _ := filter.NewSecondOrderLPF(4, opt)
		b, _ := filter.NewSecondOrderLPF(4, opt)
		for i := range inputs {
			Expect(a.Process(inputs[i], rates[i])).To(Equal(b.Process(inputs[i], rates[i])))
		}
	})

	It("holds its output for an invalid sampling frequency", func() {
		f, _ := filter.NewSecondOrderLPF(0.001)
		y := f.Process(1, 100)
		Expect(f.Process(5, 0)).To(Equal(y))
		Expect(f.Process(5, math.NaN())).To(Equal(y))
		Expect(filter.CheckSamplingFrequency(0)).To(MatchError(filter.ErrInvalidSamplingFrequency))
		Expect(filter.CheckSamplingFrequency(100)).To(Succeed())
	})

	It("resolves angular frequency constructions by name", func() {
		for _, name := range []string{"", "literal", " Literal "} {
			fn, err := filter.AngularFrequencyByName(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(fn(2, 50)).To(Equal(filter.LiteralAngularFrequency(2, 50)))
		}
		fn, err := filter.AngularFrequencyByName("normalized")
		Expect(err).NotTo(HaveOccurred())
		Expect(fn(2, 50)).To(Equal(filter.NormalizedAngularFrequency(2, 50)))

		_, err = filter.AngularFrequencyByName("bilinear")
		Expect(err).To(HaveOccurred())
	})
})
