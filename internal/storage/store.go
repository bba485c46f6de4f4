// Package storage persists closed-loop runs as a directory per run holding
// metadata.json and ticks.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/sim"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

var tickHeader = []string{"time", "setpoint", "measurement", "output", "p", "i", "d", "f"}

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunInfo describes how a run was produced.
type RunInfo struct {
	Plant      string             `json:"plant"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Params     map[string]float64 `json:"params,omitempty"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
}

type RunMetadata struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	RunInfo
	Ticks   int                `json:"ticks"`
	Metrics map[string]float64 `json:"metrics"`
}

// Save writes a run and returns its ID.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := s.now()
	runID := fmt.Sprintf("%s_%d", info.Plant, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		RunInfo:   info,
		Ticks:     len(result.Samples),
		Metrics:   result.Metrics,
	}
	if err := writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return "", err
	}

	if err := writeFile(filepath.Join(runDir, ticksFile), func(w io.Writer) error {
		return WriteTicksCSV(w, result.Samples)
	}); err != nil {
		return "", err
	}

	return runID, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// List returns the stored runs, oldest first. Directories without readable
// metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]sim.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	return ReadTicksCSV(file)
}

// WriteTicksCSV writes one row per sample under the tick header.
func WriteTicksCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tickHeader); err != nil {
		return err
	}

	row := make([]string, len(tickHeader))
	for _, sm := range samples {
		for i, v := range []float64{sm.Time, sm.Setpoint, sm.Measurement, sm.Output, sm.Terms.P, sm.Terms.I, sm.Terms.D, sm.Terms.F} {
			row[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTicksCSV parses what WriteTicksCSV wrote.
func ReadTicksCSV(r io.Reader) ([]sim.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(tickHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("storage: ticks: %w", err)
	}
	if len(records) < 2 {
		return []sim.Sample{}, nil
	}

	samples := make([]sim.Sample, 0, len(records)-1)
	vals := make([]float64, len(tickHeader))
	for line, record := range records[1:] {
		for i, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: ticks line %d: %w", line+2, err)
			}
			vals[i] = v
		}
		samples = append(samples, sim.Sample{
			Time:        vals[0],
			Setpoint:    vals[1],
			Measurement: vals[2],
			Output:      vals[3],
			Terms:       control.Terms{P: vals[4], I: vals[5], D: vals[6], F: vals[7], Output: vals[3]},
		})
	}

	return samples, nil
}
