// Package analysis characterizes closed-loop and filter responses.
//
//   - [FFT], [PowerSpectrum], [DominantFrequency]: spectral content of a series,
//     used to find oscillation in the measurement or noise in the derivative
//   - [Step]: rise time, overshoot, settling time and steady-state error
//   - [ErrorPortrait]: the error against its rate of change
//
// # Example
//
//	resp := analysis.Step(res.Times(), res.Measurements(), 20, 72, 0.02)
//	fmt.Printf("overshoot %.1f%%\n", 100*resp.Overshoot)
package analysis
