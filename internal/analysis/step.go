package analysis

import "math"

// StepResponse summarizes how a series approached a new setpoint.
type StepResponse struct {
	// RiseTime is the 10% to 90% transition time. NaN if 90% is never reached.
	RiseTime float64
	// Overshoot is the peak excursion past the target as a fraction of the step.
	Overshoot float64
	// SettlingTime is the first time after which the series stays within the
	// band around the target. NaN if it never settles.
	SettlingTime float64
	// SteadyStateError is target minus the final value.
	SteadyStateError float64
}

// Step analyses values sampled at times, stepping from initial to target.
// band is the settling tolerance as a fraction of the step size.
func Step(times, values []float64, initial, target, band float64) StepResponse {
	resp := StepResponse{RiseTime: math.NaN(), SettlingTime: math.NaN()}
	n := len(values)
	if n == 0 || len(times) != n {
		return resp
	}

	span := target - initial
	resp.SteadyStateError = target - values[n-1]
	if span == 0 {
		resp.RiseTime = 0
		resp.SettlingTime = 0
		return resp
	}

	// progress maps a value onto 0 at initial and 1 at target.
	progress := func(v float64) float64 { return (v - initial) / span }

	t10, t90 := math.NaN(), math.NaN()
	peak := 0.0
	for i, v := range values {
		p := progress(v)
		if math.IsNaN(t10) && p >= 0.1 {
			t10 = times[i]
		}
		if math.IsNaN(t90) && p >= 0.9 {
			t90 = times[i]
		}
		if p-1 > peak {
			peak = p - 1
		}
	}
	if !math.IsNaN(t90) {
		resp.RiseTime = t90 - t10
	}
	resp.Overshoot = peak

	settled := n
	for i := n - 1; i >= 0; i-- {
		if math.Abs(progress(values[i])-1) > band {
			break
		}
		settled = i
	}
	if settled < n {
		resp.SettlingTime = times[settled]
	}

	return resp
}
