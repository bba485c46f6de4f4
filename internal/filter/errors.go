package filter

import (
	"errors"
	"fmt"
	"math"
)

// Domain errors for filter construction and rate validation.
var (
	// ErrInvalidCutoffFrequency indicates a cutoff that is not positive and finite.
	ErrInvalidCutoffFrequency = errors.New("filter: cutoff frequency must be positive and finite")

	// ErrInvalidSamplingFrequency indicates a sampling frequency that is not positive and finite.
	ErrInvalidSamplingFrequency = errors.New("filter: sampling frequency must be positive and finite")

	// ErrUnsupportedFilterType indicates a Type value outside the declared set.
	ErrUnsupportedFilterType = errors.New("filter: unsupported filter type")
)

// CheckSamplingFrequency reports whether fs can be passed to Process.
// Process itself never fails; it holds its previous output for a rate
// rejected here.
func CheckSamplingFrequency(fs float64) error {
	if !positiveFinite(fs) {
		return fmt.Errorf("%w: got %v", ErrInvalidSamplingFrequency, fs)
	}
	return nil
}

func checkCutoffFrequency(fc float64) error {
	if !positiveFinite(fc) {
		return fmt.Errorf("%w: got %v", ErrInvalidCutoffFrequency, fc)
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
