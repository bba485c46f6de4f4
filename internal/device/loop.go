package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/san-kum/pidf/internal/sim"
)

// Map rescales a raw reading linearly, like the Arduino map() the firmware
// applies before the controller sees it.
type Map struct {
	InMin, InMax   float64
	OutMin, OutMax float64
}

func (m Map) Apply(x float64) float64 {
	if m.InMax == m.InMin {
		return m.OutMin
	}
	return (x-m.InMin)*(m.OutMax-m.OutMin)/(m.InMax-m.InMin) + m.OutMin
}

// Loop drives a controller from a Link. The device paces the loop: every
// measurement is one tick at SampleRate.
type Loop struct {
	Controller sim.Controller
	Setpoint   float64
	SampleRate float64

	// Input rescales readings when set.
	Input *Map

	// OutputMin and OutputMax clamp the reply when OutputMax > OutputMin.
	OutputMin float64
	OutputMax float64

	// Observer receives every completed tick.
	Observer sim.Observer

	Logger *slog.Logger
}

type reading struct {
	value float64
	err   error
}

// Run exchanges measurements for outputs until the link reaches EOF or ctx is
// done, and returns the number of completed ticks. Malformed lines are
// logged and skipped.
func (l *Loop) Run(ctx context.Context, link *Link) (int, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if !(l.SampleRate > 0) || math.IsInf(l.SampleRate, 1) {
		return 0, fmt.Errorf("device: sample rate must be positive, got %v", l.SampleRate)
	}

	readings := make(chan reading)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			v, err := link.ReadMeasurement()
			select {
			case readings <- reading{v, err}:
			case <-done:
				return
			}
			if err != nil && !errors.Is(err, ErrMalformed) {
				return
			}
		}
	}()

	l.Controller.Reset()
	logger.Info("device loop started", "setpoint", l.Setpoint, "rate", l.SampleRate)

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			logger.Info("device loop stopped", "ticks", ticks)
			return ticks, ctx.Err()
		case r := <-readings:
			if errors.Is(r.err, ErrMalformed) {
				logger.Warn("skipping line", "err", r.err)
				continue
			}
			if errors.Is(r.err, io.EOF) {
				logger.Info("device closed the stream", "ticks", ticks)
				return ticks, nil
			}
			if r.err != nil {
				return ticks, fmt.Errorf("device: read: %w", r.err)
			}

			meas := r.value
			if l.Input != nil {
				meas = l.Input.Apply(meas)
			}
			u := l.clamp(l.Controller.ComputeAt(l.Setpoint, meas, l.SampleRate))
			if err := link.WriteOutput(u); err != nil {
				return ticks, fmt.Errorf("device: write: %w", err)
			}

			if l.Observer != nil {
				sample := sim.Sample{
					Time:        float64(ticks) / l.SampleRate,
					Setpoint:    l.Setpoint,
					Measurement: meas,
					Output:      u,
				}
				sim.ReportTerms(&sample, l.Controller)
				l.Observer.OnTick(sample)
			}
			logger.Debug("tick", "n", ticks, "measurement", meas, "output", u)
			ticks++
		}
	}
}

func (l *Loop) clamp(u float64) float64 {
	if l.OutputMax <= l.OutputMin {
		return u
	}
	return math.Max(l.OutputMin, math.Min(l.OutputMax, u))
}
