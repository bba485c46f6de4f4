// Package filter provides the low-pass filters used to smooth a noisy signal
// one sample at a time.
//
// Two variants are available:
//
//   - [FirstOrderLPF]: exponential smoothing with a fixed RC time constant
//   - [SecondOrderLPF]: a Butterworth-damped biquad whose coefficients follow
//     the instantaneous sampling frequency
//
// [LowPassFilter] owns exactly one variant, chosen by [Type] at construction,
// and forwards [LowPassFilter.Process] to it.
//
// # Usage
//
//	lpf, err := filter.NewLowPass(20, filter.SecondOrder)
//	if err != nil {
//		return err
//	}
//	y := lpf.Process(x, 1000) // one call per sample, fs in Hz
//
// The sampling frequency is supplied on every call, so callers with jittery
// loop timing can pass the measured rate. Filters are not safe for concurrent
// use; each control loop owns its own instance.
package filter
