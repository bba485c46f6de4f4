// Package sim closes a control loop around a simulated plant.
//
// The package defines the interfaces a closed-loop run is assembled from:
//
//   - [Dynamics]: a plant, dX/dt = f(X, u, t), with a scalar measured output
//   - [Integrator]: a fixed-step ODE stepper
//   - [Controller]: a scalar feedback law evaluated once per tick
//   - [Metric] and [Observer]: consumers of the per-tick [Sample] stream
//
// A [Simulator] runs one loop. An [Ensemble] runs the same loop over many
// noise seeds concurrently, building a fresh controller for every run.
//
// # Example
//
//	pid, _ := control.NewPIDF(2, 0.5, 0.1, 0, 10, 5)
//	s := sim.New(models.NewThermalLag(), integrators.NewRK4(), pid)
//	res, _ := s.Run(ctx, sim.State{20}, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and neither are the controllers
// they drive.
package sim
