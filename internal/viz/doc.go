// Package viz renders closed-loop runs in the terminal.
//
// [Model] is a Bubble Tea program that steps a simulation live and charts
// measurement against setpoint with asciigraph. [Plot] draws the same kind of
// chart for stored runs.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the loop
//	+/-   - Raise/Lower the setpoint
//	T     - Cycle color themes
//	Q     - Quit
package viz
