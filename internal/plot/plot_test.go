package plot

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/compassim/internal/balance"
	"github.com/san-kum/compassim/internal/compass"
	"github.com/san-kum/compassim/internal/dynamic"
)

func engine(t *testing.T) *dynamic.Engine {
	t.Helper()
	p := dynamic.DefaultParams()
	p.ViscousFit = 0.005
	e, err := dynamic.New(compass.R500(), compass.Lille(), p)
	require.NoError(t, err)
	return e
}

func TestRunPlotPNG(t *testing.T) {
	e := engine(t)
	run, err := e.Rapidity(context.Background())
	require.NoError(t, err)
	tho, ok := e.Tho()
	require.True(t, ok)

	p, err := Run(run, 5, &tho)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(p, &buf, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestSteadyStateSVG(t *testing.T) {
	e := engine(t)
	run, err := e.StabilitySmallAngle(context.Background())
	require.NoError(t, err)
	ss, err := e.Response()
	require.NoError(t, err)

	p, err := SteadyState(run, ss)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "stab.svg")
	require.NoError(t, Save(p, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestOverlay(t *testing.T) {
	e := engine(t)
	run, err := e.Rapidity(context.Background())
	require.NoError(t, err)
	measured := dynamic.Series{Time: []float64{0, 0.5, 1}, Angle: []float64{90, 20, 2}}
	_, err = Overlay(run, measured)
	require.NoError(t, err)
}

func TestMapsSkipMissingLatitudes(t *testing.T) {
	limits := []balance.Limits{
		{Lon: -10, Lower: -30, Optimum: 10, Upper: 50},
		{Lon: 0, Lower: math.NaN(), Optimum: 12, Upper: math.NaN()},
		{Lon: 10, Lower: -28, Optimum: 14, Upper: 52},
	}
	p, err := Acceptability(limits)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(p, &buf, "svg"))

	curves := []balance.IsoCurve{{Offset: 1e-4, Lon: []float64{0, 10}, Lat: []float64{20, 22}}, {Offset: 0}}
	_, err = Iso(curves)
	require.NoError(t, err)
}
