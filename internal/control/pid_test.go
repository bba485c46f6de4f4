package control_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/filter"
)

func mustPIDF(kp, ki, kd, kf, iMax, cutoff float64) *control.PID {
	p, err := control.NewPIDF(kp, ki, kd, kf, iMax, cutoff)
	Expect(err).NotTo(HaveOccurred())
	return p
}

var _ = Describe("PID", func() {
	Describe("construction", func() {
		It("rejects a negative or non-finite integral limit", func() {
			for _, iMax := range []float64{-1, math.NaN(), math.Inf(1)} {
				_, err := control.NewPIDF(1, 1, 1, 0, iMax, 10)
				Expect(err).To(MatchError(control.ErrInvalidIntegralLimit))
			}
		})

		It("rejects non-finite gains", func() {
			_, err := control.NewPIDF(math.NaN(), 0, 0, 0, 1, 10)
			Expect(err).To(MatchError(control.ErrInvalidGain))
			_, err = control.NewPIDF(0, 0, 0, math.Inf(-1), 1, 10)
			Expect(err).To(MatchError(control.ErrInvalidGain))
		})

		It("surfaces derivative filter errors", func() {
			_, err := control.NewPIDF(1, 0, 0, 0, 1, 0)
			Expect(err).To(MatchError(filter.ErrInvalidCutoffFrequency))

			_, err = control.NewPID(control.PIDConfig{CutoffFrequency: 10, FilterType: filter.Type(9)})
			Expect(err).To(MatchError(filter.ErrUnsupportedFilterType))
		})

		It("rejects an invalid default sample rate", func() {
			_, err := control.NewPID(control.PIDConfig{CutoffFrequency: 10, SampleRate: -100})
			Expect(err).To(MatchError(control.ErrInvalidSampleRate))
		})

		It("defaults to one tick per unit time and a first-order filter", func() {
			p := mustPIDF(1, 2, 3, 4, 5, 6)
			Expect(p.SampleRate()).To(Equal(control.DefaultSampleRate))
			Expect(p.FilterType()).To(Equal(filter.FirstOrder))
			Expect(p.Gains()).To(Equal(control.Gains{Kp: 1, Ki: 2, Kd: 3, Kf: 4}))
			Expect(p.Params()).To(HaveKeyWithValue("cutoff", 6.0))
		})
	})

	It("returns Kp·error for a pure proportional controller", func() {
		p := mustPIDF(1, 0, 0, 0, 3, 20)
		Expect(p.Compute(10, 0)).To(Equal(10.0))
	})

	It("adds Kf·setpoint as feed-forward", func() {
		p := mustPIDF(0, 0, 0, 0.5, 0, 20)
		Expect(p.Compute(8, 8)).To(Equal(4.0))
		Expect(p.Terms().F).To(Equal(4.0))
	})

	It("saturates the integral term at IMax under a sustained error", func() {
		p := mustPIDF(0, 1, 0, 0, 5, 20)
		for i := 0; i < 100; i++ {
			u := p.Compute(10, 0)
			Expect(u).To(BeNumerically("<=", 5))
			Expect(math.Abs(p.Integral())).To(BeNumerically("<=", 5))
		}
		Expect(p.Compute(10, 0)).To(Equal(5.0))
		Expect(p.Saturated()).To(BeTrue())
	})

	It("clamps the integral symmetrically for negative errors", func() {
		p := mustPIDF(0, 2, 0, 0, 1.5, 20)
		for i := 0; i < 10; i++ {
			p.Compute(-4, 0)
		}
		Expect(p.Integral()).To(Equal(-1.5))
		Expect(p.Terms().I).To(Equal(-3.0))
	})

	It("keeps |integral| ≤ IMax for any error sequence", func() {
		p, err := control.NewPID(control.PIDConfig{
			Gains:           control.Gains{Ki: 0.7},
			IMax:            2,
			CutoffFrequency: 5,
			SampleRate:      50,
		})
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 2000; i++ {
			p.Compute(100*math.Sin(float64(i)*0.01), 0)
			Expect(math.Abs(p.Integral())).To(BeNumerically("<=", 2))
		}
	})

	It("scales the integral by the tick interval", func() {
		p := mustPIDF(0, 1, 0, 0, 100, 20)
		p.ComputeAt(3, 1, 4)
		Expect(p.Integral()).To(Equal(0.5))
	})

	It("has no derivative kick on the first tick", func() {
		p := mustPIDF(0, 0, 1, 0, 0, 20)
		Expect(p.Compute(10, 0)).To(Equal(0.0))
	})

	It("filters the error derivative through the low-pass", func() {
		const fs = 100.0
		p, err := control.NewPID(control.PIDConfig{
			Gains:           control.Gains{Kd: 1},
			CutoffFrequency: 10,
			SampleRate:      fs,
		})
		Expect(err).NotTo(HaveOccurred())
		ref, _ := filter.NewFirstOrderLPF(10)

		ref.Process(0, fs)
		p.Compute(0, 0)
		u := p.Compute(0, -0.5) // error rises by 0.5 in one tick
		Expect(u).To(BeNumerically("~", ref.Process(0.5*fs, fs), 1e-12))
	})

	It("differentiates the measurement when configured", func() {
		p, err := control.NewPID(control.PIDConfig{
			Gains:                   control.Gains{Kd: 1},
			CutoffFrequency:         1e6,
			DerivativeOnMeasurement: true,
		})
		Expect(err).NotTo(HaveOccurred())

		p.Compute(0, 1)
		Expect(p.Compute(50, 1)).To(BeNumerically("~", 0, 1e-9), "setpoint step does not kick")
		Expect(p.Compute(50, 3)).To(BeNumerically("<", 0))
	})

	It("holds its output on invalid input", func() {
		p := mustPIDF(2, 1, 0, 0, 10, 20)
		u := p.Compute(3, 1)
		integral := p.Integral()

		Expect(p.ComputeAt(3, 1, 0)).To(Equal(u))
		Expect(p.ComputeAt(3, 1, math.NaN())).To(Equal(u))
		Expect(p.Compute(math.NaN(), 1)).To(Equal(u))
		Expect(p.Compute(3, math.Inf(1))).To(Equal(u))
		Expect(p.Integral()).To(Equal(integral))
	})

	It("keeps the derivative finite when the raw rate overflows", func() {
		p := mustPIDF(0, 0, 1, 0, 0, 20)
		p.Compute(0, 1e308)

		Expect(p.Compute(0, -1e308)).To(Equal(0.0))
		Expect(p.FilterDiverged()).To(BeTrue())

		u := p.Compute(0, 0)
		Expect(math.IsNaN(u) || math.IsInf(u, 0)).To(BeFalse())

		p.Reset()
		Expect(p.FilterDiverged()).To(BeFalse())
	})

	It("is bit-for-bit deterministic from a fresh instance", func() {
		cfg := control.PIDConfig{
			Gains:           control.Gains{Kp: 5, Ki: 0.2, Kd: 0.01, Kf: 0.3},
			IMax:            100,
			CutoffFrequency: 20,
			FilterType:      filter.SecondOrder,
			SampleRate:      1000,
		}
		trace := func() []float64 {
			p, err := control.NewPID(cfg)
			Expect(err).NotTo(HaveOccurred())
			out := make([]float64, 0, 500)
			for i := 0; i < 500; i++ {
				out = append(out, p.Compute(72, 60+10*math.Sin(float64(i)/7)))
			}
			return out
		}
		Expect(trace()).To(Equal(trace()))
	})

	It("repeats its trace after Reset", func() {
		p := mustPIDF(1, 0.5, 0.2, 0.1, 3, 2)
		var first []float64
		for i := 0; i < 20; i++ {
			first = append(first, p.Compute(1, float64(i)/20))
		}
		p.Reset()
		Expect(p.Terms()).To(Equal(control.Terms{}))
		for i := 0; i < 20; i++ {
			Expect(p.Compute(1, float64(i)/20)).To(Equal(first[i]))
		}
	})
})

var _ = Describe("None", func() {
	It("ignores the measurement", func() {
		n := control.NewNone(1.25)
		Expect(n.Compute(10, 0)).To(Equal(1.25))
		Expect(n.ComputeAt(10, 99, 100)).To(Equal(1.25))
	})
})
