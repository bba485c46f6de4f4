package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/san-kum/pidf/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	// plant and run
	model      string
	integrator string
	initial    float64
	dt         float64
	duration   float64
	setpoint   float64
	seed       int64
	noise      float64
	runs       int

	// controller
	controller string
	kp         float64
	ki         float64
	kd         float64
	kf         float64
	iMax       float64
	cutoff     float64
	filterName string
	angular    string
	onMeas     bool

	// live view
	theme        string
	setpointStep float64

	// serial loop
	port   string
	baud   int
	rate   float64
	rawMax float64
	mapMin float64
	mapMax float64

	// filter command
	samples        int
	freq           float64
	compareAngular bool

	logger *slog.Logger
)

// main registers the pidf commands and executes the root command, exiting
// with status 1 if it fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "pidf",
		Short:         "pid controller with feed-forward and filtered derivative",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".pidf", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a closed-loop simulation and store it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addPlantFlags(runCmd)
	addControllerFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of seeds to run concurrently")

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "compare derivative filter types on the same loop",
		Args:  cobra.NoArgs,
		RunE:  compareFilters,
	}
	addPlantFlags(compareCmd)
	addControllerFlags(compareCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a setpoint schedule and store it",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addPlantFlags(scenarioCmd)
	addControllerFlags(scenarioCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "step a closed loop with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addPlantFlags(liveCmd)
	addControllerFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")
	liveCmd.Flags().Float64Var(&setpointStep, "step", 1, "setpoint change per +/- key")

	filterCmd := &cobra.Command{
		Use:   "filter [step|sine|noise]",
		Short: "feed a test signal through a low-pass filter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFilter,
	}
	addFilterFlags(filterCmd)
	filterCmd.Flags().Float64Var(&rate, "rate", 100, "sample rate (Hz)")
	filterCmd.Flags().IntVar(&samples, "samples", 200, "number of samples")
	filterCmd.Flags().Float64Var(&freq, "freq", 1, "sine frequency (Hz)")
	filterCmd.Flags().Int64Var(&seed, "seed", 1, "noise seed")
	filterCmd.Flags().BoolVar(&compareAngular, "compare-angular", false, "run the biquad with both angular frequency modes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run ticks to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export measurement and setpoint to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "step response and frequency analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	serialCmd := &cobra.Command{
		Use:   "serial",
		Short: "run the controller against a device on a serial port",
		Args:  cobra.NoArgs,
		RunE:  runSerial,
	}
	addControllerFlags(serialCmd)
	serialCmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint")
	serialCmd.Flags().StringVar(&port, "port", "", "serial port")
	serialCmd.Flags().IntVar(&baud, "baud", config.DefaultBaud, "baud rate")
	serialCmd.Flags().Float64Var(&rate, "rate", config.DefaultSerialRate, "device sample rate (Hz)")
	serialCmd.Flags().Float64Var(&rawMax, "raw-max", config.DefaultRawMax, "full-scale raw reading, 0 disables mapping")
	serialCmd.Flags().Float64Var(&mapMin, "map-min", 0, "measurement a raw reading of 0 maps to")
	serialCmd.Flags().Float64Var(&mapMax, "map-max", config.DefaultMapMax, "measurement a raw reading of raw-max maps to")

	portsCmd := &cobra.Command{
		Use:   "ports",
		Short: "list serial ports",
		Args:  cobra.NoArgs,
		RunE:  listPorts,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-16s %s/%s, %s derivative, setpoint %g\n",
					name, p.Plant.Model, p.Controller.Type, p.Controller.Filter, p.Sim.Setpoint)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, scenarioCmd, liveCmd, filterCmd, listCmd, plotCmd,
		exportJSONCmd, exportCSVCmd, exportSVGCmd, analyzeCmd, serialCmd, portsCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPlantFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&model, "model", "thermal", "plant model")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().Float64Var(&initial, "initial", 20, "initial plant output")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Float64Var(&setpoint, "setpoint", config.DefaultSetpoint, "setpoint")
	cmd.Flags().Int64Var(&seed, "seed", 1, "noise seed")
	cmd.Flags().Float64Var(&noise, "noise", 0, "measurement noise std dev")
}

func addControllerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&controller, "controller", "pidf", "controller (pidf, none)")
	addGainFlags(cmd)
	cmd.Flags().BoolVar(&onMeas, "d-on-measurement", false, "differentiate the measurement instead of the error")
}

func addGainFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "proportional gain")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "integral gain")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "derivative gain")
	cmd.Flags().Float64Var(&kf, "kf", config.DefaultKf, "feed-forward gain")
	cmd.Flags().Float64Var(&iMax, "imax", config.DefaultIMax, "integral clamp")
	addFilterFlags(cmd)
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&cutoff, "cutoff", config.DefaultCutoff, "derivative filter cutoff (Hz)")
	cmd.Flags().StringVar(&filterName, "filter", "first_order", "filter type (first_order, second_order)")
	cmd.Flags().StringVar(&angular, "angular", "literal", "biquad angular frequency (literal, normalized)")
}
