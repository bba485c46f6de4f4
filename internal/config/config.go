package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/filter"
	"github.com/san-kum/pidf/internal/sim"
)

// Defaults follow the temperature example: a heater driven 0..255 towards 72.
const (
	DefaultDt         = 0.01
	DefaultDuration   = 60.0
	DefaultSetpoint   = 72.0
	DefaultKp         = 5.0
	DefaultKi         = 0.2
	DefaultKd         = 0.01
	DefaultKf         = 0.3
	DefaultIMax       = 100.0
	DefaultCutoff     = 20.0
	DefaultOutputMax  = 255.0
	DefaultBaud       = 115200
	DefaultRawMax     = 1024.0
	DefaultMapMax     = 255.0
	DefaultSerialRate = 100.0
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Controller ControllerConfig `yaml:"controller"`
	Plant      PlantConfig      `yaml:"plant"`
	Sim        SimConfig        `yaml:"sim"`
	Serial     SerialConfig     `yaml:"serial"`
}

type ControllerConfig struct {
	// Type is "pidf" or "none".
	Type string `yaml:"type"`

	control.Gains `yaml:",inline"`

	IMax                    float64     `yaml:"imax"`
	Cutoff                  float64     `yaml:"cutoff"`
	Filter                  filter.Type `yaml:"filter"`
	Angular                 string      `yaml:"angular,omitempty"`
	DerivativeOnMeasurement bool        `yaml:"derivative_on_measurement,omitempty"`

	// OpenLoop is the constant output of the "none" controller.
	OpenLoop float64 `yaml:"open_loop,omitempty"`

	OutputMin float64 `yaml:"output_min"`
	OutputMax float64 `yaml:"output_max"`
}

type PlantConfig struct {
	Model      string  `yaml:"model"`
	Integrator string  `yaml:"integrator"`
	Initial    float64 `yaml:"initial"`
	Velocity   float64 `yaml:"velocity,omitempty"`
	Masses     int     `yaml:"masses,omitempty"`
}

type SimConfig struct {
	Dt       float64 `yaml:"dt"`
	Duration float64 `yaml:"duration"`
	Seed     int64   `yaml:"seed"`
	Setpoint float64 `yaml:"setpoint"`
	Noise    float64 `yaml:"noise"`
	Runs     int     `yaml:"runs"`
}

type SerialConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
	// Rate is the sample rate the device loop assumes, in Hz.
	Rate float64 `yaml:"rate"`
	// RawMax maps raw readings 0..RawMax onto MapMin..MapMax like the
	// firmware's map(); zero passes readings through.
	RawMax float64 `yaml:"raw_max"`
	MapMin float64 `yaml:"map_min"`
	MapMax float64 `yaml:"map_max"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller: ControllerConfig{
			Type:      "pidf",
			Gains:     control.Gains{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd, Kf: DefaultKf},
			IMax:      DefaultIMax,
			Cutoff:    DefaultCutoff,
			Filter:    filter.FirstOrder,
			OutputMin: 0,
			OutputMax: DefaultOutputMax,
		},
		Plant: PlantConfig{
			Model:      "thermal",
			Integrator: "rk4",
			Initial:    20,
		},
		Sim: SimConfig{
			Dt:       DefaultDt,
			Duration: DefaultDuration,
			Seed:     1,
			Setpoint: DefaultSetpoint,
			Runs:     1,
		},
		Serial: SerialConfig{
			Baud:   DefaultBaud,
			Rate:   DefaultSerialRate,
			RawMax: DefaultRawMax,
			MapMax: DefaultMapMax,
		},
	}
}

// Load reads a YAML file over DefaultConfig, so missing keys keep defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields the constructors do not. Controller gains and
// filter settings are checked by PIDConfig through control.NewPID.
func (c *Config) Validate() error {
	switch {
	case c.Controller.Type != "pidf" && c.Controller.Type != "none":
		return fmt.Errorf("%w: controller type %q", ErrInvalidConfig, c.Controller.Type)
	case !(c.Sim.Dt > 0):
		return fmt.Errorf("%w: sim.dt must be positive, got %v", ErrInvalidConfig, c.Sim.Dt)
	case !(c.Sim.Duration > 0):
		return fmt.Errorf("%w: sim.duration must be positive, got %v", ErrInvalidConfig, c.Sim.Duration)
	case c.Sim.Noise < 0:
		return fmt.Errorf("%w: sim.noise must be non-negative, got %v", ErrInvalidConfig, c.Sim.Noise)
	case c.Sim.Runs < 0:
		return fmt.Errorf("%w: sim.runs must be non-negative, got %d", ErrInvalidConfig, c.Sim.Runs)
	case c.Controller.OutputMax < c.Controller.OutputMin:
		return fmt.Errorf("%w: output_max %v below output_min %v", ErrInvalidConfig, c.Controller.OutputMax, c.Controller.OutputMin)
	case c.Serial.Baud < 0:
		return fmt.Errorf("%w: serial.baud must be positive, got %d", ErrInvalidConfig, c.Serial.Baud)
	case c.Serial.RawMax < 0:
		return fmt.Errorf("%w: serial.raw_max must be non-negative, got %v", ErrInvalidConfig, c.Serial.RawMax)
	case c.Serial.RawMax > 0 && c.Serial.MapMax == c.Serial.MapMin:
		return fmt.Errorf("%w: serial.map_min and serial.map_max are both %v", ErrInvalidConfig, c.Serial.MapMin)
	}
	if _, err := filter.AngularFrequencyByName(c.Controller.Angular); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// PIDConfig converts the controller section for control.NewPID at the given
// sample rate.
func (c *Config) PIDConfig(sampleRate float64) (control.PIDConfig, error) {
	angular, err := filter.AngularFrequencyByName(c.Controller.Angular)
	if err != nil {
		return control.PIDConfig{}, err
	}
	return control.PIDConfig{
		Gains:                   c.Controller.Gains,
		IMax:                    c.Controller.IMax,
		CutoffFrequency:         c.Controller.Cutoff,
		FilterType:              c.Controller.Filter,
		SampleRate:              sampleRate,
		DerivativeOnMeasurement: c.Controller.DerivativeOnMeasurement,
		AngularFrequency:        angular,
	}, nil
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:          c.Sim.Dt,
		Duration:    c.Sim.Duration,
		Seed:        c.Sim.Seed,
		Setpoint:    c.Sim.Setpoint,
		NoiseStdDev: c.Sim.Noise,
		OutputMin:   c.Controller.OutputMin,
		OutputMax:   c.Controller.OutputMax,
	}
}

// GetInitState lays Plant.Initial and Plant.Velocity out in the state order
// of the configured model.
func (c *Config) GetInitState() []float64 {
	switch c.Plant.Model {
	case "spring_mass", "pendulum":
		return []float64{c.Plant.Initial, c.Plant.Velocity}
	case "spring_chain":
		n := c.Plant.Masses
		if n < 1 {
			n = 1
		}
		x := make([]float64, 2*n)
		for i := 0; i < n; i++ {
			x[i] = c.Plant.Initial
		}
		x[n] = c.Plant.Velocity
		return x
	default:
		return []float64{c.Plant.Initial}
	}
}
