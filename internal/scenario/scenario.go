// Package scenario scripts setpoint schedules for closed-loop runs.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidf/internal/experiment"
	"github.com/san-kum/pidf/internal/sim"
)

var ErrInvalidScenario = errors.New("scenario: invalid")

// Scenario is a piecewise-constant setpoint schedule.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step holds Setpoint for Duration seconds.
type Step struct {
	Setpoint float64 `yaml:"setpoint"`
	Duration float64 `yaml:"duration"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (sc *Scenario) Validate() error {
	if len(sc.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidScenario)
	}
	for i, st := range sc.Steps {
		if math.IsNaN(st.Setpoint) || math.IsInf(st.Setpoint, 0) {
			return fmt.Errorf("%w: step %d: setpoint %v", ErrInvalidScenario, i+1, st.Setpoint)
		}
		if !(st.Duration > 0) || math.IsInf(st.Duration, 1) {
			return fmt.Errorf("%w: step %d: duration %v", ErrInvalidScenario, i+1, st.Duration)
		}
	}
	return nil
}

// Duration is the length of the whole schedule.
func (sc *Scenario) Duration() float64 {
	total := 0.0
	for _, st := range sc.Steps {
		total += st.Duration
	}
	return total
}

// SetpointAt returns the setpoint in force at time t. Before the first step
// the first setpoint applies; after the last, the last one holds.
func (sc *Scenario) SetpointAt(t float64) float64 {
	end := 0.0
	for _, st := range sc.Steps {
		end += st.Duration
		if t < end {
			return st.Setpoint
		}
	}
	return sc.Steps[len(sc.Steps)-1].Setpoint
}

// Run plays the whole schedule through exp as one simulation.
func Run(ctx context.Context, sc *Scenario, exp *experiment.Experiment, logger *slog.Logger) (*sim.Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	exp.SetSetpointFunc(sc.SetpointAt)
	exp.SetDuration(sc.Duration())

	logger.Info("scenario starting", "name", sc.Name, "steps", len(sc.Steps), "duration", sc.Duration())
	res, err := exp.Run(ctx)
	if err != nil {
		return res, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	return res, nil
}
