// Package metrics scores closed-loop runs from their per-tick samples.
package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidf/internal/sim"
)

// DefaultBand is the tolerance used by the in_band metric when built by name.
const DefaultBand = 0.05

var builders = map[string]func() sim.Metric{
	"iae":                 func() sim.Metric { return NewIAE() },
	"control_effort":      func() sim.Metric { return NewControlEffort() },
	"overshoot":           func() sim.Metric { return NewOvershoot() },
	"integral_saturation": func() sim.Metric { return NewIntegralSaturation() },
	"in_band":             func() sim.Metric { return NewInBand(DefaultBand) },
}

// New builds a metric by name.
func New(name string) (sim.Metric, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("metrics: unknown metric %q", name)
	}
	return b(), nil
}

// Names lists the metrics New accepts.
func Names() []string {
	names := make([]string, 0, len(builders))
	for n := range builders {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Standard returns a fresh instance of every metric.
func Standard() []sim.Metric {
	out := make([]sim.Metric, 0, len(builders))
	for _, n := range Names() {
		out = append(out, builders[n]())
	}
	return out
}
