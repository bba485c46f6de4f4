package config

import (
	"sort"

	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/filter"
	"github.com/san-kum/pidf/internal/models"
)

// Presets are complete configurations for common loops. GetPreset returns a
// copy so callers can apply flag overrides.
var Presets = map[string]*Config{
	"thermal":        thermal(filter.FirstOrder),
	"thermal-biquad": thermal(filter.SecondOrder),
	"thermal-open": func() *Config {
		c := thermal(filter.FirstOrder)
		c.Controller.Type = "none"
		c.Controller.OpenLoop = (DefaultSetpoint - models.DefaultThermalAmbient) / models.DefaultThermalGain
		return c
	}(),
	"spring-mass": {
		Controller: ControllerConfig{
			Type:   "pidf",
			Gains:  control.Gains{Kp: 40, Ki: 20, Kd: 8, Kf: 10},
			IMax:   5,
			Cutoff: 15,
			Filter: filter.SecondOrder, Angular: filter.AngularNormalized,
			OutputMin: -50, OutputMax: 50,
		},
		Plant: PlantConfig{Model: "spring_mass", Integrator: "rk4"},
		Sim:   SimConfig{Dt: 0.001, Duration: 10, Seed: 1, Setpoint: 1, Runs: 1},
	},
	"pendulum-hold": {
		Controller: ControllerConfig{
			Type:   "pidf",
			Gains:  control.Gains{Kp: 30, Ki: 10, Kd: 6},
			IMax:   2,
			Cutoff: 10,
			Filter: filter.FirstOrder, DerivativeOnMeasurement: true,
			OutputMin: -20, OutputMax: 20,
		},
		Plant: PlantConfig{Model: "pendulum", Integrator: "rk4"},
		Sim:   SimConfig{Dt: 0.005, Duration: 15, Seed: 1, Setpoint: 0.5, Runs: 1},
	},
}

func thermal(ft filter.Type) *Config {
	c := DefaultConfig()
	c.Controller.Filter = ft
	c.Sim.Noise = 0.2
	return c
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	if cp.Serial.Baud == 0 {
		cp.Serial = DefaultConfig().Serial
	}
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
