package control

// None is an open-loop controller that ignores the measurement and always
// returns Output. It is the baseline the PID is compared against.
type None struct {
	Output float64
}

func NewNone(output float64) *None {
	return &None{Output: output}
}

func (n *None) ComputeAt(setpoint, measurement, samplingFrequency float64) float64 {
	return n.Output
}

func (n *None) Compute(setpoint, measurement float64) float64 {
	return n.Output
}

func (n *None) Reset() {}
