package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/pidf/internal/control"
)

func TestEnsembleRun(t *testing.T) {
	built := 0
	newCtrl := func() (Controller, error) {
		built++
		return control.NewPIDF(4, 2, 0, 0, 10, 5)
	}

	e := NewEnsemble(&lag{}, func() Integrator { return &euler{} }, newCtrl, 6, 100).
		WithWorkers(1).
		WithMetrics(func() []Metric { return []Metric{&countMetric{}} })

	cfg := Config{Dt: 0.01, Duration: 1, Setpoint: 1, NoiseStdDev: 0.05}
	results, err := e.Run(context.Background(), State{0}, cfg)
	if err != nil {
		t.Fatalf("ensemble failed: %v", err)
	}

	if built != 6 {
		t.Errorf("expected a controller per run, built %d", built)
	}
	for i, r := range results {
		if r.Seed != 100+int64(i) {
			t.Errorf("result %d has seed %d", i, r.Seed)
		}
		if _, ok := r.Metrics["mean_error"]; !ok {
			t.Errorf("result %d is missing its metric", i)
		}
	}

	// A single run with the same seed reproduces the ensemble member.
	pid, _ := control.NewPIDF(4, 2, 0, 0, 10, 5)
	cfg.Seed = 103
	single, err := New(&lag{}, &euler{}, pid).Run(context.Background(), State{0}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	got := results[3].Outputs()
	for i, u := range single.Outputs() {
		if got[i] != u {
			t.Fatalf("tick %d: ensemble %v, single %v", i, got[i], u)
		}
	}
}

func TestEnsembleFactoryError(t *testing.T) {
	boom := errors.New("boom")
	e := NewEnsemble(&lag{}, func() Integrator { return &euler{} }, func() (Controller, error) {
		return nil, boom
	}, 3, 0)

	if _, err := e.Run(context.Background(), State{0}, Config{Dt: 0.1, Duration: 1}); !errors.Is(err, boom) {
		t.Errorf("expected factory error, got %v", err)
	}
}
