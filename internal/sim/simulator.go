package sim

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

type Simulator struct {
	dyn        Dynamics
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn Dynamics, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Controller() Controller { return s.controller }
func (s *Simulator) Dynamics() Dynamics     { return s.dyn }

// Session is a closed loop advanced one tick at a time.
type Session struct {
	sim  *Simulator
	cfg  Config
	rng  *rand.Rand
	fs   float64
	x    State
	step int
}

// Start resets the controller and metrics and returns a session positioned
// at t = 0.
func (s *Simulator) Start(x0 State, cfg Config) (*Session, error) {
	if err := s.validate(x0, cfg); err != nil {
		return nil, err
	}

	s.controller.Reset()
	for _, m := range s.metrics {
		m.Reset()
	}

	return &Session{
		sim: s,
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
		fs:  cfg.SampleRate(),
		x:   x0.Clone(),
	}, nil
}

// Step evaluates the controller on the current state, notifies metrics and
// observers, then integrates the plant over one Dt. If the new state is not
// finite it is discarded and a *SimError wrapping ErrDiverged is returned
// with the sample that led to it.
func (ss *Session) Step() (Sample, error) {
	s := ss.sim
	t := ss.Time()
	sample := s.tick(ss.x, t, ss.fs, ss.cfg, ss.rng)

	for _, m := range s.metrics {
		m.Observe(sample)
	}
	for _, obs := range s.observers {
		obs.OnTick(sample)
	}

	next := s.integrator.Step(s.dyn, ss.x, Control{sample.Output}, t, ss.cfg.Dt)
	if !next.IsValid() {
		return sample, &SimError{Time: t, Step: ss.step, Wrapped: ErrDiverged}
	}

	ss.x = next
	ss.step++
	return sample, nil
}

// Time is the time of the next tick.
func (ss *Session) Time() float64 { return float64(ss.step) * ss.cfg.Dt }

func (ss *Session) Steps() int { return ss.step }

// State returns a copy of the plant state.
func (ss *Session) State() State { return ss.x.Clone() }

// SetSetpoint replaces the setpoint for the remaining ticks.
func (ss *Session) SetSetpoint(sp float64) {
	ss.cfg.Setpoint = sp
	ss.cfg.SetpointFunc = nil
}

func (ss *Session) Setpoint() float64 { return ss.cfg.setpointAt(ss.Time()) }

// Run advances the loop for cfg.Duration. On divergence the partial result
// is returned together with a *SimError wrapping ErrDiverged.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	ss, err := s.Start(x0, cfg)
	if err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Samples: make([]Sample, 0, steps),
		States:  make([]State, 0, steps+1),
		Metrics: make(map[string]float64),
		Seed:    cfg.Seed,
	}
	result.States = append(result.States, ss.State())

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		sample, err := ss.Step()
		result.Samples = append(result.Samples, sample)
		if err != nil {
			s.collect(result)
			return result, err
		}

		result.StepsTaken++
		result.States = append(result.States, ss.x.Clone())
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback advances the loop until the duration elapses, ctx is done
// or callback returns false. The callback sees each sample before the plant
// moves. No result is accumulated.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(Sample, State) bool) error {
	ss, err := s.Start(x0, cfg)
	if err != nil {
		return err
	}

	for ss.Time() < cfg.Duration {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		x := ss.x
		sample, err := ss.Step()
		if !callback(sample, x) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *Simulator) tick(x State, t, fs float64, cfg Config, rng *rand.Rand) Sample {
	meas := s.dyn.Output(x)
	if cfg.NoiseStdDev > 0 {
		meas += rng.NormFloat64() * cfg.NoiseStdDev
	}
	sp := cfg.setpointAt(t)
	u := cfg.clamp(s.controller.ComputeAt(sp, meas, fs))

	sample := Sample{Time: t, Setpoint: sp, Measurement: meas, Output: u}
	ReportTerms(&sample, s.controller)
	return sample
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validate(x0 State, cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 1) {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 1) {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if cfg.NoiseStdDev < 0 {
		return fmt.Errorf("%w: noise stddev must be non-negative, got %f", ErrInvalidConfig, cfg.NoiseStdDev)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: state has %d values, plant expects %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if !x0.IsValid() {
		return fmt.Errorf("%w: initial state is not finite", ErrInvalidConfig)
	}
	return nil
}
