package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/pidf/internal/control"
	"github.com/san-kum/pidf/internal/sim"
)

func testResult() *sim.Result {
	return &sim.Result{
		Samples: []sim.Sample{
			{Time: 0, Setpoint: 72, Measurement: 20, Output: 281.6, Terms: control.Terms{P: 260, I: 0.1, D: 0, F: 21.6}},
			{Time: 0.01, Setpoint: 72, Measurement: 20.5, Output: 279.1, Terms: control.Terms{P: 257.5, I: 0.2, D: -0.3125, F: 21.6}},
		},
		Metrics: map[string]float64{"iae": 1.5},
	}
}

func testInfo() RunInfo {
	return RunInfo{
		Plant:      "thermal",
		Integrator: "rk4",
		Controller: "pidf",
		Params:     map[string]float64{"kp": 5},
		Seed:       42,
		Dt:         0.01,
		Duration:   1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save(testInfo(), testResult())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "thermal", meta.Plant)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, 2, meta.Ticks)
	assert.Equal(t, 1.5, meta.Metrics["iae"])
	assert.Equal(t, 5.0, meta.Params["kp"])

	ticks, err := st.LoadTicks(runID)
	require.NoError(t, err)
	require.Len(t, ticks, 2)
	assert.Equal(t, testResult().Samples[1].Terms.D, ticks[1].Terms.D)
	assert.Equal(t, 20.5, ticks[1].Measurement)
}

func TestStoreLoadMissing(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.LoadTicks("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	st.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first, err := st.Save(testInfo(), testResult())
	require.NoError(t, err)
	second, err := st.Save(testInfo(), testResult())
	require.NoError(t, err)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "junk"), 0755))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save(testInfo(), testResult())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(dir, runID, "ticks.csv"))

	raw, err := os.ReadFile(filepath.Join(dir, runID, "ticks.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "time,setpoint,measurement,output,p,i,d,f\n")
}

func TestReadTicksCSVRejectsGarbage(t *testing.T) {
	_, err := ReadTicksCSV(bytes.NewBufferString("time,setpoint,measurement,output,p,i,d,f\n0,1,2,x,4,5,6,7\n"))
	assert.Error(t, err)

	_, err = ReadTicksCSV(bytes.NewBufferString("time,setpoint\n0,1\n"))
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	var buf bytes.Buffer
	meta := RunMetadata{ID: "thermal_1", RunInfo: testInfo()}
	require.NoError(t, ExportJSON(&buf, meta, testResult().Samples))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "thermal_1", got.ID)
	assert.Equal(t, "pidf", got.Controller)
	assert.Equal(t, []float64{20, 20.5}, got.Measurements)
	assert.Equal(t, [4]float64{260, 0.1, 0, 21.6}, got.Terms[0])
}

func TestExportSVG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSVG(&buf, testResult().Samples, 400, 200))

	out := buf.String()
	assert.Contains(t, out, `width="400" height="200"`)
	assert.Contains(t, out, `stroke="#888888" stroke-width="1.5" stroke-dasharray="4 3" d="M33.3,16.7`)
	assert.Contains(t, out, `stroke="#00ff00" stroke-width="1.5" d="M33.3,183.3`)
	assert.Contains(t, out, "</svg>")

	err := ExportSVG(&buf, testResult().Samples[:1], 400, 200)
	assert.Error(t, err)
}
