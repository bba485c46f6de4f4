package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/pidf/internal/filter"
	"github.com/san-kum/pidf/internal/viz"
	"github.com/spf13/cobra"
)

func testSignal(kind string, n int, fs float64) ([]float64, error) {
	out := make([]float64, n)
	switch kind {
	case "step":
		for i := range out {
			if i >= n/10 {
				out[i] = 1
			}
		}
	case "sine":
		for i := range out {
			out[i] = math.Sin(2 * math.Pi * freq * float64(i) / fs)
		}
	case "noise":
		rng := rand.New(rand.NewSource(seed))
		for i := range out {
			out[i] = 1 + rng.NormFloat64()*0.2
		}
	default:
		return nil, fmt.Errorf("unknown signal %q (step, sine, noise)", kind)
	}
	return out, nil
}

// runFilter feeds a test signal through the derivative low-pass on its own,
// printing the biquad coefficients when there are any.
func runFilter(cmd *cobra.Command, args []string) error {
	kind := "step"
	if len(args) > 0 {
		kind = args[0]
	}

	ft, err := filter.ParseType(filterName)
	if err != nil {
		return err
	}
	if err := filter.CheckSamplingFrequency(rate); err != nil {
		return err
	}
	if samples < 2 {
		return fmt.Errorf("need at least 2 samples, got %d", samples)
	}

	input, err := testSignal(kind, samples, rate)
	if err != nil {
		return err
	}

	modes := []string{angular}
	if compareAngular {
		ft = filter.SecondOrder
		modes = []string{filter.AngularLiteral, filter.AngularNormalized}
	}

	series := [][]float64{input}
	for _, mode := range modes {
		fn, err := filter.AngularFrequencyByName(mode)
		if err != nil {
			return err
		}
		lpf, err := filter.NewLowPass(cutoff, ft, filter.WithAngularFrequency(fn))
		if err != nil {
			return err
		}

		label := ft.String()
		if ft == filter.SecondOrder {
			label += "/" + mode
			so, _ := filter.NewSecondOrderLPF(cutoff, filter.WithAngularFrequency(fn))
			c := so.Coefficients(rate)
			fmt.Printf("%s @ fc=%gHz fs=%gHz\n", label, cutoff, rate)
			fmt.Printf("  b = [%.6g %.6g %.6g]  a = [1 %.6g %.6g]\n", c.B0, c.B1, c.B2, c.A1, c.A2)
			fmt.Printf("  stable: %v  dc gain: %.4f  |H(fc)|: %.4f\n",
				c.Stable(), c.DCGain(), math.Sqrt(c.MagnitudeSquared(cutoff, rate)))
		} else {
			fmt.Printf("%s @ fc=%gHz fs=%gHz\n", label, cutoff, rate)
		}

		output := make([]float64, len(input))
		for i, x := range input {
			output[i] = lpf.Process(x, rate)
		}
		fmt.Printf("  final output: %.4f  diverged: %v\n\n", output[len(output)-1], lpf.Diverged())
		series = append(series, output)
	}

	fmt.Println(viz.Plot(fmt.Sprintf("%s input and filtered output", kind), 80, 12, series...))
	return nil
}
