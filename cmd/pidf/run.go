package main

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/experiment"
	"github.com/san-kum/pidf/internal/filter"
	"github.com/san-kum/pidf/internal/scenario"
	"github.com/san-kum/pidf/internal/sim"
	"github.com/san-kum/pidf/internal/storage"
	"github.com/san-kum/pidf/internal/viz"
	"github.com/spf13/cobra"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if cfg.Sim.Runs > 1 {
		return runEnsemble(cmd, exp, st)
	}

	fmt.Printf("running %s with %s controller...\n", cfg.Plant.Model, cfg.Controller.Type)
	start := time.Now()
	result, runErr := exp.Run(cmd.Context())
	if result == nil {
		return runErr
	}
	elapsed := time.Since(start)

	runID, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", len(result.Samples))
	printMetrics(result.Metrics)
	return runErr
}

func runEnsemble(cmd *cobra.Command, exp *experiment.Experiment, st *storage.Store) error {
	cfg := exp.Config()
	fmt.Printf("running %d seeds of %s...\n", cfg.Sim.Runs, cfg.Plant.Model)

	results, err := exp.RunEnsemble(cmd.Context())
	if err != nil {
		return err
	}

	info := exp.Info()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tRUN ID\tIAE\tOVERSHOOT\tEFFORT\tSAT")
	for _, res := range results {
		info.Seed = res.Seed
		runID, err := st.Save(info, res)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%d\t%s\t%.4f\t%.4f\t%.4f\t%.3f\n", res.Seed, runID,
			res.Metrics["iae"], res.Metrics["overshoot"], res.Metrics["control_effort"], res.Metrics["integral_saturation"])
	}
	return w.Flush()
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	for _, name := range slices.Sorted(maps.Keys(m)) {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

type variant struct {
	name    string
	filter  filter.Type
	angular string
}

var filterVariants = []variant{
	{"first_order", filter.FirstOrder, ""},
	{"second_order/literal", filter.SecondOrder, filter.AngularLiteral},
	{"second_order/normalized", filter.SecondOrder, filter.AngularNormalized},
}

// compareFilters runs the same loop once per derivative filter variant.
func compareFilters(cmd *cobra.Command, args []string) error {
	base, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if base.Controller.Type != "pidf" {
		return fmt.Errorf("compare needs the pidf controller, got %q", base.Controller.Type)
	}

	registry := experiment.NewRegistry()
	fmt.Printf("comparing derivative filters on %s (kd=%g, cutoff=%gHz, fs=%gHz)\n\n",
		base.Plant.Model, base.Controller.Kd, base.Controller.Cutoff, 1/base.Sim.Dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILTER\tIAE\tOVERSHOOT\tEFFORT\tSAT\tSTATUS")

	var series [][]float64
	for _, v := range filterVariants {
		cfg := *base
		cfg.Controller.Filter = v.filter
		cfg.Controller.Angular = v.angular

		exp, err := experiment.New(&cfg, registry, logger)
		if err != nil {
			return err
		}

		result, err := exp.Run(cmd.Context())
		status := "ok"
		switch {
		case errors.Is(err, sim.ErrDiverged):
			status = "plant diverged"
		case err != nil:
			return err
		}
		if pid, ok := exp.Simulator().Controller().(*control.PID); ok && pid.FilterDiverged() {
			status = "filter unstable"
		}

		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.3f\t%s\n", v.name,
			result.Metrics["iae"], result.Metrics["overshoot"], result.Metrics["control_effort"],
			result.Metrics["integral_saturation"], status)

		if len(series) == 0 {
			series = append(series, setpoints(result))
		}
		series = append(series, result.Measurements())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Plot("setpoint, first_order, biquad literal, biquad normalized", 80, 15, series...))
	return nil
}

func setpoints(r *sim.Result) []float64 {
	sp := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		sp[i] = s.Setpoint
	}
	return sp
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %d steps over %.1fs\n", sc.Name, len(sc.Steps), sc.Duration())
	result, runErr := scenario.Run(cmd.Context(), sc, exp, logger)
	if result == nil {
		return runErr
	}

	runID, err := st.Save(exp.Info(), result)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n", runID)
	printMetrics(result.Metrics)
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, experiment.NewRegistry(), logger)
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s / %s", cfg.Plant.Model, cfg.Controller.Type)
	m, err := viz.NewModel(title, exp.Simulator(), sim.State(cfg.GetInitState()), cfg.SimConfig())
	if err != nil {
		return err
	}
	m = m.WithTheme(theme).WithSetpointStep(setpointStep)

	final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(viz.Model); ok && fm.Err() != nil {
		return fm.Err()
	}
	return nil
}
