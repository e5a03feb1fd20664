package main

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const drawing = `{"type":"FeatureCollection","features":[
  {"type":"Feature","id":"l1","properties":{},"geometry":{"type":"LineString","coordinates":[[0,0],[0.01,0],[0.01,0.02]]}},
  {"type":"Feature","id":"p1","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[0.01,0],[0.01,0.01],[0,0.01],[0,0]]]}}
]}`

func writeDrawing(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drawing.geojson")
	require.NoError(t, os.WriteFile(path, []byte(drawing), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	labelsJSON, labelsPlain = false, false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--locale", "en", "--length-unit", "m", "--area-unit", "ha", "--log-level", "error"))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestLabelsCommand(t *testing.T) {
	out, err := execute(t, "labels", writeDrawing(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Line l1:")
	assert.Regexp(t, `Segment 1: 1,111\.9\d m`, out)
	assert.Regexp(t, `Segment 2: 2,223\.9\d m`, out)
	assert.Contains(t, out, "Polygon p1:")
	assert.Regexp(t, `Area: 12\d\.\d\d ha`, out)
}

func TestLabelsCommandJSON(t *testing.T) {
	out, err := execute(t, "labels", writeDrawing(t), "--json")
	require.NoError(t, err)

	var fc geojson.FeatureCollection
	require.NoError(t, json.Unmarshal([]byte(out), &fc))
	assert.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.NotEmpty(t, f.Properties.MustString("measurement", ""))
	}
}

func TestLabelsCommandPlain(t *testing.T) {
	out, err := execute(t, "labels", writeDrawing(t), "--plain")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1,111.95 m", lines[0])
	assert.Regexp(t, `^2,223\.9\d m$`, lines[1])
	assert.Regexp(t, `^12\d\.\d\d ha$`, lines[2])
}

func TestInfoCommand(t *testing.T) {
	out, err := execute(t, "info", writeDrawing(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Lines: 1")
	assert.Contains(t, out, "Polygons: 1")
	assert.Contains(t, out, "Count: 2")
}

func TestSegmentsCommand(t *testing.T) {
	out, err := execute(t, "segments", writeDrawing(t), "--longest", "-n", "1")
	require.NoError(t, err)

	assert.Contains(t, out, "Top 1 Longest Segments")
	assert.Contains(t, out, "(0.010000, 0.000000)")
	assert.Contains(t, out, "(0.010000, 0.020000)")
}

func TestSnapshotCommand(t *testing.T) {
	output := filepath.Join(t.TempDir(), "out.png")
	out, err := execute(t, "snapshot", writeDrawing(t), "-o", output, "--width", "120", "--height", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "3 labels")

	file, err := os.Open(output)
	require.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	require.NoError(t, err)
	assert.Equal(t, 120, img.Bounds().Dx())
	assert.Equal(t, 90, img.Bounds().Dy())
}

func TestMissingFile(t *testing.T) {
	_, err := execute(t, "labels", filepath.Join(t.TempDir(), "missing.geojson"))
	assert.Error(t, err)
}

func TestCompletionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"completion", "bash"})
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "gomeasure")
}
