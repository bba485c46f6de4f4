package models

import "github.com/san-kum/pidf/internal/sim"

const (
	DefaultThermalTau     = 30.0
	DefaultThermalGain    = 1.5
	DefaultThermalAmbient = 20.0
)

// ThermalLag is a heated body losing heat to its surroundings:
//
//	dT/dt = (Gain·u - (T - Ambient)) / Tau
//
// With constant drive u it settles at Ambient + Gain·u.
type ThermalLag struct {
	Tau     float64
	Gain    float64
	Ambient float64
}

func NewThermalLag() *ThermalLag {
	return &ThermalLag{
		Tau:     DefaultThermalTau,
		Gain:    DefaultThermalGain,
		Ambient: DefaultThermalAmbient,
	}
}

func (m *ThermalLag) StateDim() int   { return 1 }
func (m *ThermalLag) ControlDim() int { return 1 }

func (m *ThermalLag) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	drive := 0.0
	if len(u) > 0 {
		drive = u[0]
	}
	return sim.State{(m.Gain*drive - (x[0] - m.Ambient)) / m.Tau}
}

// Output is the body temperature.
func (m *ThermalLag) Output(x sim.State) float64 { return x[0] }

// SteadyState returns the temperature reached under constant drive u.
func (m *ThermalLag) SteadyState(u float64) float64 {
	return m.Ambient + m.Gain*u
}

func (m *ThermalLag) GetParams() map[string]float64 {
	return map[string]float64{"tau": m.Tau, "gain": m.Gain, "ambient": m.Ambient}
}
