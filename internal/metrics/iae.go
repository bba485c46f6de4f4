package metrics

import (
	"math"

	"github.com/san-kum/pidf/internal/sim"
)

// IAE is the integral of absolute error, accumulated with the rectangle rule
// over the sample spacing.
type IAE struct {
	name  string
	sum   float64
	prevT float64
	prevE float64
	seen  bool
}

func NewIAE() *IAE {
	return &IAE{name: "iae"}
}

func (m *IAE) Name() string { return m.name }

func (m *IAE) Observe(s sim.Sample) {
	if m.seen {
		m.sum += m.prevE * (s.Time - m.prevT)
	}
	m.prevT = s.Time
	m.prevE = math.Abs(s.Error())
	m.seen = true
}

func (m *IAE) Value() float64 { return m.sum }

func (m *IAE) Reset() {
	m.sum = 0
	m.prevT = 0
	m.prevE = 0
	m.seen = false
}
