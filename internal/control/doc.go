// Package control provides the feedback controllers driven by the simulator
// and the device loop.
//
//   - [PID]: PID law with feed-forward, an anti-windup integral clamp and a
//     low-pass filtered derivative
//   - [None]: open-loop baseline that always outputs a constant
//
// # Usage
//
//	pid, err := control.NewPIDF(5, 0.2, 0.01, 0.3, 100, 20) // Kp, Ki, Kd, Kf, IMax, derivative cutoff
//	if err != nil {
//		return err
//	}
//	for {
//		u := pid.Compute(setpoint, measure())
//		apply(u)
//	}
//
// Compute evaluates one tick at the configured SampleRate; ComputeAt takes
// the tick's sampling frequency explicitly for loops with variable timing.
package control
