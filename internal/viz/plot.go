package viz

import (
	"github.com/guptarohit/asciigraph"
)

// Downsample keeps at most n evenly spaced points, always including the last.
func Downsample(data []float64, n int) []float64 {
	if n <= 0 || len(data) <= n {
		return data
	}
	out := make([]float64, n)
	step := float64(len(data)-1) / float64(n-1)
	for i := range out {
		out[i] = data[int(float64(i)*step+0.5)]
	}
	return out
}

// Plot charts one or more series of equal length. The first series is drawn
// in the default color; later ones cycle through green, yellow and red.
func Plot(caption string, width, height int, series ...[]float64) string {
	if len(series) == 0 || len(series[0]) == 0 {
		return ""
	}

	data := make([][]float64, len(series))
	for i, s := range series {
		data[i] = Downsample(s, width)
	}

	colors := []asciigraph.AnsiColor{asciigraph.Default, asciigraph.Green, asciigraph.Yellow, asciigraph.Red}
	seriesColors := make([]asciigraph.AnsiColor, len(data))
	for i := range data {
		seriesColors[i] = colors[i%len(colors)]
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(seriesColors...),
	)
}
