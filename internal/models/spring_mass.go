package models

import "github.com/san-kum/pidf/internal/sim"

const (
	DefaultMass      = 1.0
	DefaultStiffness = 10.0
	DefaultDamping   = 0.5
)

// SpringMass is a chain of masses joined by springs, anchored at the left
// wall. The control force acts on the first mass; the measured output is the
// position of the last one. A chain of one is the classic mass-spring-damper.
//
// State layout is [positions..., velocities...].
type SpringMass struct {
	NumMasses int
	Masses    []float64
	Stiffness []float64
	Damping   []float64
}

func NewSpringMass() *SpringMass {
	return &SpringMass{
		NumMasses: 1,
		Masses:    []float64{DefaultMass},
		Stiffness: []float64{DefaultStiffness},
		Damping:   []float64{DefaultDamping},
	}
}

func NewSpringMassChain(n int) *SpringMass {
	masses := make([]float64, n)
	stiffness := make([]float64, n)
	damping := make([]float64, n)

	for i := 0; i < n; i++ {
		masses[i] = DefaultMass
		stiffness[i] = DefaultStiffness
		damping[i] = DefaultDamping
	}

	return &SpringMass{
		NumMasses: n,
		Masses:    masses,
		Stiffness: stiffness,
		Damping:   damping,
	}
}

func (s *SpringMass) StateDim() int   { return s.NumMasses * 2 }
func (s *SpringMass) ControlDim() int { return 1 }

func (s *SpringMass) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	n := s.NumMasses
	dx := make(sim.State, n*2)

	for i := 0; i < n; i++ {
		dx[i] = x[n+i]
	}

	extForce := 0.0
	if len(u) > 0 {
		extForce = u[0]
	}

	for i := 0; i < n; i++ {
		pos, vel := x[i], x[n+i]

		var force float64
		if i == 0 {
			force = -s.Stiffness[0] * pos
		} else {
			force = -s.Stiffness[i] * (pos - x[i-1])
		}
		if i < n-1 {
			force -= s.Stiffness[i+1] * (pos - x[i+1])
		}

		force -= s.Damping[i] * vel
		if i == 0 {
			force += extForce
		}
		dx[n+i] = force / s.Masses[i]
	}

	return dx
}

// Output is the position of the last mass.
func (s *SpringMass) Output(x sim.State) float64 { return x[s.NumMasses-1] }

// StaticGain is the steady-state output per unit of constant force. Only the
// wall spring is loaded, so the rest of the chain follows the first mass.
func (s *SpringMass) StaticGain() float64 {
	return 1 / s.Stiffness[0]
}

func (s *SpringMass) Energy(x sim.State) float64 {
	n := s.NumMasses
	energy := 0.0

	for i := 0; i < n; i++ {
		v := x[n+i]
		energy += 0.5 * s.Masses[i] * v * v

		stretch := x[i]
		if i > 0 {
			stretch -= x[i-1]
		}
		energy += 0.5 * s.Stiffness[i] * stretch * stretch
	}

	return energy
}

func (s *SpringMass) GetParams() map[string]float64 {
	return map[string]float64{
		"masses":    float64(s.NumMasses),
		"mass":      s.Masses[0],
		"stiffness": s.Stiffness[0],
		"damping":   s.Damping[0],
	}
}
