package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/pidf/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times        []float64    `json:"times"`
	Setpoints    []float64    `json:"setpoints"`
	Measurements []float64    `json:"measurements"`
	Outputs      []float64    `json:"outputs"`
	Terms        [][4]float64 `json:"terms"`
}

// ExportJSON writes a run as column arrays, with terms as [p, i, d, f].
func ExportJSON(w io.Writer, meta RunMetadata, samples []sim.Sample) error {
	data := ExportData{
		RunMetadata:  meta,
		Times:        make([]float64, len(samples)),
		Setpoints:    make([]float64, len(samples)),
		Measurements: make([]float64, len(samples)),
		Outputs:      make([]float64, len(samples)),
		Terms:        make([][4]float64, len(samples)),
	}

	for i, s := range samples {
		data.Times[i] = s.Time
		data.Setpoints[i] = s.Setpoint
		data.Measurements[i] = s.Measurement
		data.Outputs[i] = s.Output
		data.Terms[i] = [4]float64{s.Terms.P, s.Terms.I, s.Terms.D, s.Terms.F}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
