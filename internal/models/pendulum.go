package models

import (
	"math"

	"github.com/san-kum/pidf/internal/sim"
)

// Pendulum is a damped rigid pendulum driven by a torque at the pivot. The
// measured output is the angle from the downward vertical, in radians.
type Pendulum struct {
	Mass    float64
	Length  float64
	Damping float64
	Gravity float64
}

func NewPendulum() *Pendulum {
	return &Pendulum{
		Mass:    1.0,
		Length:  1.0,
		Damping: 0.1,
		Gravity: 9.81,
	}
}

func (p *Pendulum) StateDim() int {
	return 2
}

func (p *Pendulum) ControlDim() int {
	return 1
}

func (p *Pendulum) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	theta := x[0]
	omega := x[1]

	torque := 0.0
	if len(u) > 0 {
		torque = u[0]
	}
	alpha := (-p.Damping*omega - p.Mass*p.Gravity*p.Length*math.Sin(theta) + torque) / (p.Mass * p.Length * p.Length)

	return sim.State{omega, alpha}
}

func (p *Pendulum) Output(x sim.State) float64 { return x[0] }

// HoldingTorque is the torque that keeps the pendulum still at theta.
func (p *Pendulum) HoldingTorque(theta float64) float64 {
	return p.Mass * p.Gravity * p.Length * math.Sin(theta)
}

func (p *Pendulum) Energy(x sim.State) float64 {
	theta, omega := x[0], x[1]
	kinetic := 0.5 * p.Mass * p.Length * p.Length * omega * omega
	potential := p.Mass * p.Gravity * p.Length * (1 - math.Cos(theta))
	return kinetic + potential
}

func (p *Pendulum) GetParams() map[string]float64 {
	return map[string]float64{"mass": p.Mass, "length": p.Length, "damping": p.Damping, "gravity": p.Gravity}
}
