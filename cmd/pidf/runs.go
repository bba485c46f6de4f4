package main

import (
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/san-kum/pidf/internal/analysis"
	"github.com/san-kum/pidf/internal/metrics"
	"github.com/san-kum/pidf/internal/sim"
	"github.com/san-kum/pidf/internal/storage"
	"github.com/san-kum/pidf/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPLANT\tCTRL\tTIME\tDURATION\tDT\tTICKS\tIAE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%.4f\n",
			run.ID,
			run.Plant,
			run.Controller,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Ticks,
			run.Metrics["iae"],
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	ticks, err := st.LoadTicks(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(ticks) == 0 {
		return nil, nil, fmt.Errorf("run %s has no ticks", runID)
	}
	return meta, ticks, nil
}

func column(samples []sim.Sample, get func(sim.Sample) float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = get(s)
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("plant: %s, controller: %s\n", meta.Plant, meta.Controller)
	fmt.Printf("ticks: %d\n\n", len(ticks))

	charts := []struct {
		caption string
		series  [][]float64
	}{
		{"measurement vs setpoint", [][]float64{
			column(ticks, func(s sim.Sample) float64 { return s.Measurement }),
			column(ticks, func(s sim.Sample) float64 { return s.Setpoint }),
		}},
		{"controller output", [][]float64{
			column(ticks, func(s sim.Sample) float64 { return s.Output }),
		}},
		{"terms p, i, d", [][]float64{
			column(ticks, func(s sim.Sample) float64 { return s.Terms.P }),
			column(ticks, func(s sim.Sample) float64 { return s.Terms.I }),
			column(ticks, func(s sim.Sample) float64 { return s.Terms.D }),
		}},
	}

	for _, c := range charts {
		fmt.Println(viz.Plot(c.caption, 80, 10, c.series...))
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, ticks)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	_, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.WriteTicksCSV(os.Stdout, ticks)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	_, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportSVG(os.Stdout, ticks, 800, 400)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, ticks, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("plant: %s\n\n", meta.Plant)

	times := column(ticks, func(s sim.Sample) float64 { return s.Time })
	meas := column(ticks, func(s sim.Sample) float64 { return s.Measurement })
	target := ticks[0].Setpoint

	resp := analysis.Step(times, meas, meas[0], target, metrics.DefaultBand)
	fmt.Printf("step %.3f -> %.3f\n", meas[0], target)
	fmt.Printf("  rise time:          %s\n", seconds(resp.RiseTime))
	fmt.Printf("  overshoot:          %.2f%%\n", 100*resp.Overshoot)
	fmt.Printf("  settling time:      %s\n", seconds(resp.SettlingTime))
	fmt.Printf("  steady-state error: %.4f\n\n", resp.SteadyStateError)

	errs := column(ticks, func(s sim.Sample) float64 { return s.Error() })
	ps := analysis.PowerSpectrum(errs)
	if len(ps) > 8 {
		fmt.Println(viz.Plot("error power spectrum", 80, 12, ps[1:len(ps)/4]))
		fmt.Println()
	}

	if meta.Dt > 0 {
		freq := analysis.DominantFrequency(errs, 1/meta.Dt)
		fmt.Printf("dominant error frequency: %.3f hz\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.3f s\n", 1.0/freq)
		}
	}

	portrait := analysis.ErrorPortrait(ticks)
	if chart := analysis.PhasePortraitToASCII(portrait, 60, 20); chart != "" {
		fmt.Printf("\nerror phase portrait (%s vs %s):\n%s\n", portrait.YLabel, portrait.XLabel, chart)
	}
	return nil
}

func seconds(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.3fs", v)
}
