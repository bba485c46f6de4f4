package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/pidf/internal/config"
	"github.com/san-kum/pidf/internal/device"
	"github.com/san-kum/pidf/internal/experiment"
	"github.com/san-kum/pidf/internal/metrics"
	"github.com/san-kum/pidf/internal/sim"
	"github.com/spf13/cobra"
)

// runSerial closes the loop through a device that sends one measurement per
// line and applies each output line it receives.
func runSerial(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Serial.Port == "" {
		return fmt.Errorf("no serial port given, see `pidf ports`")
	}

	ctrl, err := experiment.NewRegistry().GetController(cfg, cfg.Serial.Rate)
	if err != nil {
		return err
	}

	link, err := device.Open(cfg.Serial.Port, cfg.Serial.Baud)
	if err != nil {
		return err
	}
	defer link.Close()

	scores := metrics.Standard()
	loop := &device.Loop{
		Controller: ctrl,
		Setpoint:   cfg.Sim.Setpoint,
		SampleRate: cfg.Serial.Rate,
		OutputMin:  cfg.Controller.OutputMin,
		OutputMax:  cfg.Controller.OutputMax,
		Observer: sim.ObserverFunc(func(s sim.Sample) {
			for _, m := range scores {
				m.Observe(s)
			}
		}),
		Logger: logger,
	}
	loop.Input = inputMap(cfg.Serial)

	ticks, err := loop.Run(cmd.Context(), link)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("ticks: %d\n", ticks)
	result := make(map[string]float64, len(scores))
	for _, m := range scores {
		result[m.Name()] = m.Value()
	}
	printMetrics(result)
	return nil
}

// inputMap rescales raw readings 0..RawMax onto MapMin..MapMax, independent
// of the actuator range. It returns nil when RawMax is zero.
func inputMap(sc config.SerialConfig) *device.Map {
	if sc.RawMax <= 0 {
		return nil
	}
	return &device.Map{InMin: 0, InMax: sc.RawMax, OutMin: sc.MapMin, OutMax: sc.MapMax}
}

func listPorts(cmd *cobra.Command, args []string) error {
	ports, err := device.Ports()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		fmt.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		fmt.Println(p)
	}
	return nil
}
