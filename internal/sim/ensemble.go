package sim

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ControllerFactory builds an independent controller for one run.
type ControllerFactory func() (Controller, error)

// MetricsFactory builds the metrics observed by one run.
type MetricsFactory func() []Metric

// Ensemble runs the same loop over consecutive noise seeds. Controllers and
// metrics are stateful, so every run gets its own from the factories.
type Ensemble struct {
	dyn           Dynamics
	integrator    func() Integrator
	newController ControllerFactory
	newMetrics    MetricsFactory
	numRuns       int
	seedStart     int64
	workers       int
}

func NewEnsemble(dyn Dynamics, integrator func() Integrator, newController ControllerFactory, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{
		dyn:           dyn,
		integrator:    integrator,
		newController: newController,
		numRuns:       numRuns,
		seedStart:     seedStart,
		workers:       runtime.GOMAXPROCS(0),
	}
}

func (e *Ensemble) WithMetrics(f MetricsFactory) *Ensemble {
	e.newMetrics = f
	return e
}

// WithWorkers bounds how many runs execute at once.
func (e *Ensemble) WithWorkers(n int) *Ensemble {
	if n > 0 {
		e.workers = n
	}
	return e
}

// Run returns results ordered by seed. The first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := 0; i < e.numRuns; i++ {
		idx := i
		g.Go(func() error {
			ctrl, err := e.newController()
			if err != nil {
				return err
			}

			s := New(e.dyn, e.integrator(), ctrl)
			if e.newMetrics != nil {
				for _, m := range e.newMetrics() {
					s.AddMetric(m)
				}
			}

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)
			res, err := s.Run(ctx, x0, cfgCopy)
			if err != nil {
				return err
			}
			results[idx] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
