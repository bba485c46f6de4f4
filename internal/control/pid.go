package control

import (
	"fmt"
	"math"

	"github.com/san-kum/pidf/internal/filter"
)

// DefaultSampleRate makes one Compute call one unit of time, so the integral
// accumulates the raw error and the derivative is the per-tick difference.
const DefaultSampleRate = 1.0

// Gains are the weights of the four control terms.
type Gains struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ki float64 `yaml:"ki" json:"ki"`
	Kd float64 `yaml:"kd" json:"kd"`
	Kf float64 `yaml:"kf" json:"kf"`
}

// PIDConfig holds everything fixed at construction.
type PIDConfig struct {
	Gains

	// IMax bounds the integral accumulator to [-IMax, IMax].
	IMax float64

	// CutoffFrequency and FilterType select the derivative low-pass.
	CutoffFrequency float64
	FilterType      filter.Type

	// SampleRate is the rate Compute assumes, in Hz. Zero means DefaultSampleRate.
	SampleRate float64

	// DerivativeOnMeasurement differentiates -measurement instead of the
	// error, so setpoint steps do not kick the derivative term.
	DerivativeOnMeasurement bool

	// AngularFrequency overrides the second-order filter's angle construction.
	AngularFrequency filter.AngularFrequencyFunc
}

// Terms is the breakdown of one control output.
type Terms struct {
	P, I, D, F float64
	Output     float64
}

// PID is a PID controller with feed-forward. It is not safe for concurrent
// use; every loop owns its own instance.
type PID struct {
	gains         Gains
	iMax          float64
	sampleRate    float64
	onMeasurement bool

	integral float64
	prevErr  float64
	prevMeas float64
	first    bool
	terms    Terms

	derivative filter.LowPassFilter
}

func NewPID(cfg PIDConfig) (*PID, error) {
	g := cfg.Gains
	if !isFinite(g.Kp) || !isFinite(g.Ki) || !isFinite(g.Kd) || !isFinite(g.Kf) {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidGain, g)
	}
	if cfg.IMax < 0 || !isFinite(cfg.IMax) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidIntegralLimit, cfg.IMax)
	}

	rate := cfg.SampleRate
	if rate == 0 {
		rate = DefaultSampleRate
	}
	if !validRate(rate) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidSampleRate, rate)
	}

	var opts []filter.Option
	if cfg.AngularFrequency != nil {
		opts = append(opts, filter.WithAngularFrequency(cfg.AngularFrequency))
	}
	lpf, err := filter.MakeLowPass(cfg.CutoffFrequency, cfg.FilterType, opts...)
	if err != nil {
		return nil, fmt.Errorf("control: derivative filter: %w", err)
	}

	return &PID{
		gains:         g,
		iMax:          cfg.IMax,
		sampleRate:    rate,
		onMeasurement: cfg.DerivativeOnMeasurement,
		first:         true,
		derivative:    lpf,
	}, nil
}

// NewPIDF builds a controller with a first-order derivative filter at the
// default sample rate.
func NewPIDF(kp, ki, kd, kf, iMax, cutoff float64) (*PID, error) {
	return NewPID(PIDConfig{
		Gains:           Gains{Kp: kp, Ki: ki, Kd: kd, Kf: kf},
		IMax:            iMax,
		CutoffFrequency: cutoff,
	})
}

// Compute evaluates one tick at the configured sample rate.
func (p *PID) Compute(setpoint, measurement float64) float64 {
	return p.ComputeAt(setpoint, measurement, p.sampleRate)
}

// ComputeAt evaluates one tick sampled at samplingFrequency Hz.
//
// A non-finite setpoint or measurement, or a sampling frequency that is not
// positive and finite, leaves the state untouched and returns the previous
// output.
func (p *PID) ComputeAt(setpoint, measurement, samplingFrequency float64) float64 {
	if !isFinite(setpoint) || !isFinite(measurement) || !validRate(samplingFrequency) {
		return p.terms.Output
	}

	err := setpoint - measurement

	p.integral += err / samplingFrequency
	if p.integral > p.iMax {
		p.integral = p.iMax
	} else if p.integral < -p.iMax {
		p.integral = -p.iMax
	}

	raw := 0.0
	if !p.first {
		if p.onMeasurement {
			raw = -(measurement - p.prevMeas) * samplingFrequency
		} else {
			raw = (err - p.prevErr) * samplingFrequency
		}
	}
	derivative := p.derivative.Process(raw, samplingFrequency)

	p.terms = Terms{
		P: p.gains.Kp * err,
		I: p.gains.Ki * p.integral,
		D: p.gains.Kd * derivative,
		F: p.gains.Kf * setpoint,
	}
	p.terms.Output = p.terms.P + p.terms.I + p.terms.D + p.terms.F

	p.prevErr = err
	p.prevMeas = measurement
	p.first = false

	return p.terms.Output
}

// Reset clears integral, derivative history and the filter.
func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.prevMeas = 0
	p.first = true
	p.terms = Terms{}
	p.derivative.Reset()
}

// Terms returns the breakdown of the most recent output.
func (p *PID) Terms() Terms { return p.terms }

// Integral returns the clamped accumulator, before Ki is applied.
func (p *PID) Integral() float64 { return p.integral }

func (p *PID) IntegralLimit() float64 { return p.iMax }

// Saturated reports whether the integral sits at its limit.
func (p *PID) Saturated() bool {
	return p.iMax > 0 && math.Abs(p.integral) >= p.iMax
}

func (p *PID) Gains() Gains { return p.gains }

func (p *PID) SampleRate() float64 { return p.sampleRate }

func (p *PID) FilterType() filter.Type { return p.derivative.Type() }

// FilterDiverged reports whether the derivative filter has rejected a
// non-finite result.
func (p *PID) FilterDiverged() bool { return p.derivative.Diverged() }

// Params returns the construction parameters for display and run metadata.
func (p *PID) Params() map[string]float64 {
	return map[string]float64{
		"kp":     p.gains.Kp,
		"ki":     p.gains.Ki,
		"kd":     p.gains.Kd,
		"kf":     p.gains.Kf,
		"imax":   p.iMax,
		"cutoff": p.derivative.CutoffFrequency(),
		"rate":   p.sampleRate,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validRate(fs float64) bool {
	return fs > 0 && !math.IsInf(fs, 1)
}
