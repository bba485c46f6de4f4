package filter

import "math"

// AngularFrequencyFunc builds the biquad's angular term from the fixed cutoff
// and the instantaneous sampling frequency, both in Hz.
type AngularFrequencyFunc func(cutoff, samplingFrequency float64) float64

// LiteralAngularFrequency returns 2π·(fc·fs). It is the default so the
// filter stays output-compatible with existing firmware tunings. For
// typical loop rates the product wraps the angle many times and the
// resulting poles may sit on or outside the unit circle; check
// Coefficients.Stable before relying on it.
func LiteralAngularFrequency(cutoff, samplingFrequency float64) float64 {
	return 2 * math.Pi * (cutoff * samplingFrequency)
}

// NormalizedAngularFrequency returns the conventional digital frequency
// 2π·fc/fs, which gives stable poles for any cutoff below Nyquist.
func NormalizedAngularFrequency(cutoff, samplingFrequency float64) float64 {
	return 2 * math.Pi * cutoff / samplingFrequency
}

// SecondOrderLPF is a direct-form biquad low-pass. Coefficients are derived
// from the cutoff and the sampling frequency passed to Process; they are
// cached while the rate stays the same.
type SecondOrderLPF struct {
	cutoff  float64
	angular AngularFrequencyFunc

	coeffs Coefficients
	rate   float64 // rate coeffs was derived for, 0 until first use

	x1, x2 float64
	y1, y2 float64

	diverged bool
}

// NewSecondOrderLPF returns a biquad low-pass with the given cutoff in Hz.
func NewSecondOrderLPF(cutoff float64, opts ...Option) (*SecondOrderLPF, error) {
	f, err := makeSecondOrderLPF(cutoff, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func makeSecondOrderLPF(cutoff float64, o options) (SecondOrderLPF, error) {
	if err := checkCutoffFrequency(cutoff); err != nil {
		return SecondOrderLPF{}, err
	}
	return SecondOrderLPF{cutoff: cutoff, angular: o.angular}, nil
}

// Coefficients returns the section the filter uses at samplingFrequency.
// It does not touch the filter state or cache.
func (f *SecondOrderLPF) Coefficients(samplingFrequency float64) Coefficients {
	return ButterworthCoefficients(f.angularFunc()(f.cutoff, samplingFrequency))
}

func (f *SecondOrderLPF) angularFunc() AngularFrequencyFunc {
	if f.angular == nil {
		return LiteralAngularFrequency
	}
	return f.angular
}

func (f *SecondOrderLPF) coefficientsAt(fs float64) Coefficients {
	if fs != f.rate {
		f.coeffs = f.Coefficients(fs)
		f.rate = fs
	}
	return f.coeffs
}

// Process filters one sample.
//
// A sampling frequency rejected by CheckSamplingFrequency leaves the state
// untouched and returns the previous output. A non-finite result is never
// written into the history: the previous output is returned and Diverged
// reports true until Reset.
func (f *SecondOrderLPF) Process(input, samplingFrequency float64) float64 {
	if !positiveFinite(samplingFrequency) {
		return f.y1
	}
	c := f.coefficientsAt(samplingFrequency)

	y := c.B0*input + c.B1*f.x1 + c.B2*f.x2 - c.A1*f.y1 - c.A2*f.y2
	if !finite(y) {
		f.diverged = true
		return f.y1
	}

	f.x2, f.x1 = f.x1, input
	f.y2, f.y1 = f.y1, y
	return y
}

// Diverged reports whether Process has produced a non-finite result.
func (f *SecondOrderLPF) Diverged() bool { return f.diverged }

func (f *SecondOrderLPF) CutoffFrequency() float64 { return f.cutoff }

// Output returns the most recent output without advancing the filter.
func (f *SecondOrderLPF) Output() float64 { return f.y1 }

// Reset clears the history and the divergence flag. The coefficient cache
// is kept; it only depends on the rate.
func (f *SecondOrderLPF) Reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
	f.diverged = false
}
