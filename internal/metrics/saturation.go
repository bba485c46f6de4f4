package metrics

import "github.com/san-kum/pidf/internal/sim"

// IntegralSaturation is the fraction of ticks the controller spent with its
// integral pinned at the limit. Controllers without an integral report 0.
type IntegralSaturation struct {
	name      string
	saturated int
	samples   int
}

func NewIntegralSaturation() *IntegralSaturation {
	return &IntegralSaturation{name: "integral_saturation"}
}

func (m *IntegralSaturation) Name() string { return m.name }

func (m *IntegralSaturation) Observe(s sim.Sample) {
	m.samples++
	if s.Saturated {
		m.saturated++
	}
}

func (m *IntegralSaturation) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return float64(m.saturated) / float64(m.samples)
}

func (m *IntegralSaturation) Reset() {
	m.saturated = 0
	m.samples = 0
}
