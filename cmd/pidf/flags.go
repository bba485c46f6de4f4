package main

import (
	"fmt"

	"github.com/san-kum/pidf/internal/config"
	"github.com/san-kum/pidf/internal/filter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// resolveConfig starts from the defaults, a preset or a config file (the file
// wins over the preset), then applies the flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := applyFlags(cmd.Flags(), cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(flags *pflag.FlagSet, cfg *config.Config) error {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}

	set("model", func() { cfg.Plant.Model = model })
	set("integrator", func() { cfg.Plant.Integrator = integrator })
	set("initial", func() { cfg.Plant.Initial = initial })
	set("dt", func() { cfg.Sim.Dt = dt })
	set("time", func() { cfg.Sim.Duration = duration })
	set("setpoint", func() { cfg.Sim.Setpoint = setpoint })
	set("seed", func() { cfg.Sim.Seed = seed })
	set("noise", func() { cfg.Sim.Noise = noise })
	set("runs", func() { cfg.Sim.Runs = runs })

	set("controller", func() { cfg.Controller.Type = controller })
	set("kp", func() { cfg.Controller.Kp = kp })
	set("ki", func() { cfg.Controller.Ki = ki })
	set("kd", func() { cfg.Controller.Kd = kd })
	set("kf", func() { cfg.Controller.Kf = kf })
	set("imax", func() { cfg.Controller.IMax = iMax })
	set("cutoff", func() { cfg.Controller.Cutoff = cutoff })
	set("angular", func() { cfg.Controller.Angular = angular })
	set("d-on-measurement", func() { cfg.Controller.DerivativeOnMeasurement = onMeas })

	if flags.Changed("filter") {
		ft, err := filter.ParseType(filterName)
		if err != nil {
			return err
		}
		cfg.Controller.Filter = ft
	}

	set("port", func() { cfg.Serial.Port = port })
	set("baud", func() { cfg.Serial.Baud = baud })
	set("rate", func() { cfg.Serial.Rate = rate })
	set("raw-max", func() { cfg.Serial.RawMax = rawMax })
	set("map-min", func() { cfg.Serial.MapMin = mapMin })
	set("map-max", func() { cfg.Serial.MapMax = mapMax })

	return nil
}
