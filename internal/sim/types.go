package sim

import (
	"math"

	"github.com/san-kum/pidf/internal/control"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

type Control []float64

// Dynamics is a plant driven by a control vector. Output maps the state to
// the scalar the controller regulates.
type Dynamics interface {
	Derivative(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
	Output(x State) float64
}

type Integrator interface {
	Step(dyn Dynamics, x State, u Control, t float64, dt float64) State
}

// Controller is satisfied by *control.PID and *control.None.
type Controller interface {
	ComputeAt(setpoint, measurement, samplingFrequency float64) float64
	Reset()
}

// TermReporter is implemented by controllers that expose their per-term
// breakdown, such as *control.PID.
type TermReporter interface {
	Terms() control.Terms
	Saturated() bool
}

// ReportTerms copies the most recent term breakdown and saturation flag of c
// into s when c is a TermReporter.
func ReportTerms(s *Sample, c Controller) {
	if tr, ok := c.(TermReporter); ok {
		s.Terms = tr.Terms()
		s.Saturated = tr.Saturated()
	}
}

// Sample is one tick of a closed-loop run.
type Sample struct {
	Time        float64
	Setpoint    float64
	Measurement float64
	Output      float64
	Terms       control.Terms
	Saturated   bool
}

// Error returns setpoint minus measurement.
func (s Sample) Error() float64 { return s.Setpoint - s.Measurement }

type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnTick(s Sample)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Sample)

func (f ObserverFunc) OnTick(s Sample) { f(s) }

type Config struct {
	Dt       float64
	Duration float64
	Seed     int64

	// Setpoint is used when SetpointFunc is nil.
	Setpoint     float64
	SetpointFunc func(t float64) float64

	// NoiseStdDev adds Gaussian noise to the measured output.
	NoiseStdDev float64

	// OutputMin and OutputMax clamp the actuator when OutputMax > OutputMin.
	OutputMin float64
	OutputMax float64
}

func DefaultConfig() Config {
	return Config{
		Dt:       0.01,
		Duration: 10.0,
		Seed:     1,
	}
}

// SampleRate returns 1/Dt, the frequency the controller runs at.
func (c Config) SampleRate() float64 { return 1 / c.Dt }

func (c Config) setpointAt(t float64) float64 {
	if c.SetpointFunc != nil {
		return c.SetpointFunc(t)
	}
	return c.Setpoint
}

func (c Config) clamp(u float64) float64 {
	if c.OutputMax <= c.OutputMin {
		return u
	}
	return math.Max(c.OutputMin, math.Min(c.OutputMax, u))
}

type Result struct {
	Samples    []Sample
	States     []State
	Metrics    map[string]float64
	StepsTaken int
	Seed       int64
}

// Times returns the sample timestamps.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

// Measurements returns the measured output series.
func (r *Result) Measurements() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Measurement
	}
	return out
}

// Outputs returns the controller output series.
func (r *Result) Outputs() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Output
	}
	return out
}
