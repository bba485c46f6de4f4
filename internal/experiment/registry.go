package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/pidf/internal/config"
	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/integrators"
	"github.com/san-kum/pidf/internal/models"
	"github.com/san-kum/pidf/internal/sim"
)

// ControllerBuilder builds a controller from the controller section of cfg,
// running at sampleRate Hz.
type ControllerBuilder func(cfg *config.Config, sampleRate float64) (sim.Controller, error)

type Registry struct {
	models      map[string]func(config.PlantConfig) sim.Dynamics
	integrators map[string]func() sim.Integrator
	controllers map[string]ControllerBuilder
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func(config.PlantConfig) sim.Dynamics),
		integrators: make(map[string]func() sim.Integrator),
		controllers: make(map[string]ControllerBuilder),
	}

	r.models["thermal"] = func(config.PlantConfig) sim.Dynamics { return models.NewThermalLag() }
	r.models["spring_mass"] = func(config.PlantConfig) sim.Dynamics { return models.NewSpringMass() }
	r.models["spring_chain"] = func(p config.PlantConfig) sim.Dynamics {
		n := p.Masses
		if n < 1 {
			n = 1
		}
		return models.NewSpringMassChain(n)
	}
	r.models["pendulum"] = func(config.PlantConfig) sim.Dynamics { return models.NewPendulum() }

	r.integrators["euler"] = func() sim.Integrator { return integrators.NewEuler() }
	r.integrators["rk4"] = func() sim.Integrator { return integrators.NewRK4() }

	r.controllers["none"] = func(cfg *config.Config, _ float64) (sim.Controller, error) {
		return control.NewNone(cfg.Controller.OpenLoop), nil
	}
	r.controllers["pidf"] = func(cfg *config.Config, sampleRate float64) (sim.Controller, error) {
		pc, err := cfg.PIDConfig(sampleRate)
		if err != nil {
			return nil, err
		}
		return control.NewPID(pc)
	}

	return r
}

func (r *Registry) GetModel(p config.PlantConfig) (sim.Dynamics, error) {
	fn, ok := r.models[p.Model]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", p.Model)
	}
	return fn(p), nil
}

func (r *Registry) GetIntegrator(name string) (sim.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) GetController(cfg *config.Config, sampleRate float64) (sim.Controller, error) {
	fn, ok := r.controllers[cfg.Controller.Type]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller.Type)
	}
	return fn(cfg, sampleRate)
}

func (r *Registry) ListModels() []string      { return sortedKeys(r.models) }
func (r *Registry) ListIntegrators() []string { return sortedKeys(r.integrators) }
func (r *Registry) ListControllers() []string { return sortedKeys(r.controllers) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
