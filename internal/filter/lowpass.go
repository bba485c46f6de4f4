package filter

import "fmt"

// LowPassFilter owns exactly one filter variant, selected at construction.
// The variant is held by value; only the field matching typ is live.
// A LowPassFilter that did not come from NewLowPass or MakeLowPass holds its
// output at zero.
type LowPassFilter struct {
	typ    Type
	first  FirstOrderLPF
	second SecondOrderLPF
}

// NewLowPass returns a filter of the given type with cutoff in Hz.
func NewLowPass(cutoff float64, typ Type, opts ...Option) (*LowPassFilter, error) {
	f, err := MakeLowPass(cutoff, typ, opts...)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// MakeLowPass is NewLowPass returning a value, for owners that embed the
// filter directly.
func MakeLowPass(cutoff float64, typ Type, opts ...Option) (LowPassFilter, error) {
	switch typ {
	case FirstOrder:
		first, err := makeFirstOrderLPF(cutoff)
		if err != nil {
			return LowPassFilter{}, err
		}
		return LowPassFilter{typ: FirstOrder, first: first}, nil
	case SecondOrder:
		second, err := makeSecondOrderLPF(cutoff, applyOptions(opts))
		if err != nil {
			return LowPassFilter{}, err
		}
		return LowPassFilter{typ: SecondOrder, second: second}, nil
	default:
		return LowPassFilter{}, fmt.Errorf("%w: %d", ErrUnsupportedFilterType, uint8(typ))
	}
}

// Process forwards one sample to the owned variant.
func (f *LowPassFilter) Process(input, samplingFrequency float64) float64 {
	if f.typ == SecondOrder {
		return f.second.Process(input, samplingFrequency)
	}
	return f.first.Process(input, samplingFrequency)
}

func (f *LowPassFilter) Type() Type { return f.typ }

func (f *LowPassFilter) CutoffFrequency() float64 {
	if f.typ == SecondOrder {
		return f.second.CutoffFrequency()
	}
	return f.first.CutoffFrequency()
}

// Diverged reports whether the owned variant has rejected a non-finite
// result.
func (f *LowPassFilter) Diverged() bool {
	if f.typ == SecondOrder {
		return f.second.Diverged()
	}
	return f.first.Diverged()
}

// Output returns the most recent output without advancing the filter.
func (f *LowPassFilter) Output() float64 {
	if f.typ == SecondOrder {
		return f.second.Output()
	}
	return f.first.Output()
}

// Reset restores the state the filter had right after construction.
func (f *LowPassFilter) Reset() {
	if f.typ == SecondOrder {
		f.second.Reset()
		return
	}
	f.first.Reset()
}
