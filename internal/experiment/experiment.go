// Package experiment assembles a closed-loop run from a config file:
// plant, integrator, controller and metrics, resolved by name.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/pidf/internal/config"
	"github.com/san-kum/pidf/internal/metrics"
	"github.com/san-kum/pidf/internal/sim"
	"github.com/san-kum/pidf/internal/storage"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	setpoint  func(t float64) float64
	dyn       sim.Dynamics
	simulator *sim.Simulator
}

// New validates cfg and resolves the plant, integrator and controller.
func New(cfg *config.Config, registry *Registry, logger *slog.Logger) (*Experiment, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dyn, err := registry.GetModel(cfg.Plant)
	if err != nil {
		return nil, err
	}
	integ, err := registry.GetIntegrator(cfg.Plant.Integrator)
	if err != nil {
		return nil, err
	}
	ctrl, err := registry.GetController(cfg, 1/cfg.Sim.Dt)
	if err != nil {
		return nil, fmt.Errorf("controller: %w", err)
	}

	s := sim.New(dyn, integ, ctrl)
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}

	return &Experiment{
		cfg:       cfg,
		registry:  registry,
		logger:    logger.With("plant", cfg.Plant.Model, "controller", cfg.Controller.Type),
		dyn:       dyn,
		simulator: s,
	}, nil
}

// SetSetpointFunc replaces the constant setpoint with a schedule.
func (e *Experiment) SetSetpointFunc(fn func(t float64) float64) {
	e.setpoint = fn
}

// SetDuration overrides the configured run length.
func (e *Experiment) SetDuration(d float64) {
	e.cfg.Sim.Duration = d
}

func (e *Experiment) simConfig() sim.Config {
	sc := e.cfg.SimConfig()
	sc.SetpointFunc = e.setpoint
	return sc
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	start := time.Now()
	e.logger.Debug("run starting", "dt", e.cfg.Sim.Dt, "duration", e.cfg.Sim.Duration, "seed", e.cfg.Sim.Seed)

	res, err := e.simulator.Run(ctx, sim.State(e.cfg.GetInitState()), e.simConfig())
	if err != nil {
		var simErr *sim.SimError
		if errors.As(err, &simErr) {
			e.logger.Warn("run diverged", "step", simErr.Step, "t", simErr.Time)
		}
		return res, err
	}

	e.logger.Info("run finished", "ticks", res.StepsTaken, "elapsed", time.Since(start), "iae", res.Metrics["iae"])
	return res, nil
}

// RunEnsemble repeats the run over Sim.Runs consecutive seeds, each with a
// fresh controller.
func (e *Experiment) RunEnsemble(ctx context.Context) ([]*sim.Result, error) {
	runs := e.cfg.Sim.Runs
	if runs < 1 {
		runs = 1
	}
	fs := 1 / e.cfg.Sim.Dt

	newIntegrator := func() sim.Integrator {
		integ, _ := e.registry.GetIntegrator(e.cfg.Plant.Integrator)
		return integ
	}
	newController := func() (sim.Controller, error) {
		return e.registry.GetController(e.cfg, fs)
	}

	ens := sim.NewEnsemble(e.dyn, newIntegrator, newController, runs, e.cfg.Sim.Seed).
		WithMetrics(metrics.Standard)

	e.logger.Info("ensemble starting", "runs", runs)
	return ens.Run(ctx, sim.State(e.cfg.GetInitState()), e.simConfig())
}

func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }

func (e *Experiment) Config() *config.Config { return e.cfg }

// Info describes the run for storage.
func (e *Experiment) Info() storage.RunInfo {
	info := storage.RunInfo{
		Plant:      e.cfg.Plant.Model,
		Integrator: e.cfg.Plant.Integrator,
		Controller: e.cfg.Controller.Type,
		Seed:       e.cfg.Sim.Seed,
		Dt:         e.cfg.Sim.Dt,
		Duration:   e.cfg.Sim.Duration,
	}
	if p, ok := e.simulator.Controller().(interface{ Params() map[string]float64 }); ok {
		info.Params = p.Params()
	}
	return info
}
