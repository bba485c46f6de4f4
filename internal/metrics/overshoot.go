package metrics

import (
	"math"

	"github.com/san-kum/pidf/internal/sim"
)

// Overshoot is the largest excursion of the measurement past the setpoint in
// the direction of the initial error, as a fraction of the initial error.
// A run that starts on its setpoint reports 0.
type Overshoot struct {
	name    string
	initial float64
	peak    float64
	seen    bool
}

func NewOvershoot() *Overshoot {
	return &Overshoot{name: "overshoot"}
}

func (o *Overshoot) Name() string { return o.name }

func (o *Overshoot) Observe(s sim.Sample) {
	e := s.Error()
	if !o.seen {
		o.initial = e
		o.seen = true
		return
	}
	if o.initial == 0 {
		return
	}
	// Past the setpoint the error has the opposite sign of the initial error.
	if past := -e * math.Copysign(1, o.initial); past > o.peak {
		o.peak = past
	}
}

func (o *Overshoot) Value() float64 {
	if o.initial == 0 {
		return 0
	}
	return o.peak / math.Abs(o.initial)
}

func (o *Overshoot) Reset() {
	o.initial = 0
	o.peak = 0
	o.seen = false
}
