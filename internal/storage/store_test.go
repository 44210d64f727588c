package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/compassim/internal/config"
	"github.com/san-kum/compassim/internal/experiment"
)

func runExperiment(t *testing.T, tests ...experiment.Test) *experiment.Experiment {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Params.ViscousFit = 0.005
	exp := experiment.New(cfg, nil)
	require.NoError(t, exp.Setup())
	_, err := exp.Run(context.Background(), tests...)
	require.NoError(t, err)
	return exp
}

func TestSaveAndLoad(t *testing.T) {
	exp := runExperiment(t, experiment.TestRapidity, experiment.TestStabilitySmall)
	report, err := exp.Report()
	require.NoError(t, err)

	s := New(t.TempDir())
	require.NoError(t, s.Init())

	id, err := s.Save(report, exp.Runs())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "r500_"), id)

	meta, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, id, meta.ID)
	assert.Equal(t, []string{"rapidity", "stability_small_angle"}, meta.Tests)
	require.NotNil(t, meta.Report.Tho)
	assert.Equal(t, *report.Tho, *meta.Report.Tho)
	assert.Equal(t, report.Coefficients, meta.Report.Coefficients)

	run, ok := exp.Result(experiment.TestRapidity)
	require.True(t, ok)
	tr, err := s.LoadTrace(id, experiment.TestRapidity)
	require.NoError(t, err)
	assert.Equal(t, run.Times(), tr.Times)
	assert.Equal(t, run.Angles(), tr.Angles)
	assert.Equal(t, run.AngularVelocity(), tr.Omegas)

	_, err = s.LoadTrace(id, experiment.TestStability)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	exp := runExperiment(t, experiment.TestRapidity)
	report, err := exp.Report()
	require.NoError(t, err)

	dir := t.TempDir()
	s := New(dir)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		id, err := s.Save(report, exp.Runs())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err := s.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = New(t.TempDir()).Load("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCSVHeaderCarriesUnit(t *testing.T) {
	exp := runExperiment(t, experiment.TestRapidity, experiment.TestRapiditySmall)

	var buf bytes.Buffer
	run, _ := exp.Result(experiment.TestRapiditySmall)
	require.NoError(t, WriteCSV(&buf, run))
	assert.True(t, strings.HasPrefix(buf.String(), "time,angle_rad,omega\n"))

	tr, err := ReadCSV(&buf)
	require.NoError(t, err)
	assert.Len(t, tr.Times, run.Len())

	_, err = ReadCSV(strings.NewReader("time,angle_deg,omega\n0,abc,1\n"))
	assert.Error(t, err)
}

func TestExportJSON(t *testing.T) {
	exp := runExperiment(t, experiment.TestRapidity)
	report, err := exp.Report()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ExportJSON(&buf, report, exp.Runs()))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	require.Contains(t, data.Runs, "rapidity")
	rap := data.Runs["rapidity"]
	assert.Equal(t, "deg", rap.Unit)
	assert.Len(t, rap.Angles, 300)
	assert.InDelta(t, 90, rap.Angles[0], 1e-12)
	assert.Equal(t, "R500", data.Report.Compass)
}

func TestStoredExportAndCopy(t *testing.T) {
	exp := runExperiment(t, experiment.TestRapidity)
	report, err := exp.Report()
	require.NoError(t, err)

	s := New(t.TempDir())
	id, err := s.Save(report, exp.Runs())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf, id))
	var out StoredExport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, id, out.Metadata.ID)
	require.Contains(t, out.Traces, "rapidity")
	assert.Len(t, out.Traces["rapidity"].Angles, 300)

	buf.Reset()
	require.NoError(t, s.CopyTrace(&buf, id, experiment.TestRapidity))
	assert.True(t, strings.HasPrefix(buf.String(), "time,angle_deg,omega\n"))
	assert.ErrorIs(t, s.CopyTrace(&buf, id, experiment.TestStability), ErrNotFound)
}
