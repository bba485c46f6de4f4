package filter

import "math"

// FirstOrderLPF is an exponential smoother. Its time constant is fixed at
// construction; the smoothing factor follows the sampling frequency given to
// each Process call.
type FirstOrderLPF struct {
	cutoff   float64
	rc       float64
	prev     float64
	diverged bool
}

// NewFirstOrderLPF returns a first-order filter with the given cutoff in Hz.
func NewFirstOrderLPF(cutoff float64) (*FirstOrderLPF, error) {
	f, err := makeFirstOrderLPF(cutoff)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func makeFirstOrderLPF(cutoff float64) (FirstOrderLPF, error) {
	if err := checkCutoffFrequency(cutoff); err != nil {
		return FirstOrderLPF{}, err
	}
	return FirstOrderLPF{cutoff: cutoff, rc: 1 / (2 * math.Pi * cutoff)}, nil
}

// Process smooths one sample. The smoothing factor is fs/(rc+fs).
// A sampling frequency rejected by CheckSamplingFrequency leaves the state
// untouched and returns the previous output, as does a filter that was never
// constructed. A non-finite result is not committed: the previous output is
// returned and Diverged reports true until Reset.
func (f *FirstOrderLPF) Process(input, samplingFrequency float64) float64 {
	if f.cutoff == 0 || !positiveFinite(samplingFrequency) {
		return f.prev
	}
	alpha := samplingFrequency / (f.rc + samplingFrequency)
	y := f.prev + alpha*(input-f.prev)
	if !finite(y) {
		f.diverged = true
		return f.prev
	}
	f.prev = y
	return y
}

// Diverged reports whether Process has produced a non-finite result.
func (f *FirstOrderLPF) Diverged() bool { return f.diverged }

// TimeConstant returns rc = 1/(2π·fc).
func (f *FirstOrderLPF) TimeConstant() float64 { return f.rc }

func (f *FirstOrderLPF) CutoffFrequency() float64 { return f.cutoff }

// Output returns the most recent output without advancing the filter.
func (f *FirstOrderLPF) Output() float64 { return f.prev }

// Reset clears the output and the divergence flag.
func (f *FirstOrderLPF) Reset() {
	f.prev = 0
	f.diverged = false
}
