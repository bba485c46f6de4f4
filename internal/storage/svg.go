package storage

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/pidf/internal/sim"
)

// SVG stroke colors per series.
const (
	measurementStroke = "#00ff00"
	setpointStroke    = "#888888"
)

type bounds struct {
	minX, maxX, minY, maxY float64
}

// samplesBounds spans time on x and both measurement and setpoint on y, padded
// by a tenth of each range.
func samplesBounds(samples []sim.Sample) bounds {
	b := bounds{
		minX: samples[0].Time, maxX: samples[0].Time,
		minY: samples[0].Measurement, maxY: samples[0].Measurement,
	}
	for _, s := range samples {
		b.minX, b.maxX = min(b.minX, s.Time), max(b.maxX, s.Time)
		b.minY = min(b.minY, s.Measurement, s.Setpoint)
		b.maxY = max(b.maxY, s.Measurement, s.Setpoint)
	}

	rangeX, rangeY := b.maxX-b.minX, b.maxY-b.minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
	return b
}

// ExportSVG draws the measurement and the setpoint of a run against time.
func ExportSVG(w io.Writer, samples []sim.Sample, width, height int) error {
	if len(samples) < 2 {
		return fmt.Errorf("storage: need at least 2 samples for svg, got %d", len(samples))
	}

	b := samplesBounds(samples)
	project := func(t, v float64) (float64, float64) {
		x := (t - b.minX) / (b.maxX - b.minX) * float64(width)
		y := float64(height) - (v-b.minY)/(b.maxY-b.minY)*float64(height)
		return x, y
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	path := func(stroke, extra string, value func(sim.Sample) float64) {
		fmt.Fprintf(bw, `<path fill="none" stroke="%s" stroke-width="1.5"%s d="M`, stroke, extra)
		for i, s := range samples {
			x, y := project(s.Time, value(s))
			if i == 0 {
				fmt.Fprintf(bw, "%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(bw, " L%.1f,%.1f", x, y)
			}
		}
		bw.WriteString("\"/>\n")
	}

	path(setpointStroke, ` stroke-dasharray="4 3"`, func(s sim.Sample) float64 { return s.Setpoint })
	path(measurementStroke, "", func(s sim.Sample) float64 { return s.Measurement })

	bw.WriteString("</svg>\n")
	return bw.Flush()
}
