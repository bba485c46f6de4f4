package control

import "errors"

// Construction errors. Filter errors from the derivative low-pass are
// returned unchanged and can be matched with the filter package sentinels.
var (
	// ErrInvalidIntegralLimit indicates an IMax that is negative or not finite.
	ErrInvalidIntegralLimit = errors.New("control: integral limit must be non-negative and finite")

	// ErrInvalidGain indicates a gain that is NaN or infinite.
	ErrInvalidGain = errors.New("control: gains must be finite")

	// ErrInvalidSampleRate indicates a default sample rate that is not positive and finite.
	ErrInvalidSampleRate = errors.New("control: sample rate must be positive and finite")
)
