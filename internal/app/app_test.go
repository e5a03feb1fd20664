package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/config"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const line = `{"type":"LineString","coordinates":[[0,0],[0.01,0],[0.01,0.01]]}`

const polygon = `{"type":"FeatureCollection","features":[
  {"type":"Feature","id":"area","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[0.01,0],[0.01,0.01],[0,0.01],[0,0]]]}}
]}`

func newApp(t *testing.T, configure func(*control.Options)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.LengthUnit = "m"
	cfg.DebounceWindow = "10ms"

	a, err := New(cfg, nil, configure)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.AreaUnit = "m"

	_, err := New(cfg, nil, nil)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadAndSave(t *testing.T) {
	a := newApp(t, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "line.geojson")
	writeFile(t, path, line)

	require.NoError(t, a.Load(path))
	assert.Equal(t, path, a.File())
	assert.Equal(t, 1, a.Draw.Len())
	assert.Equal(t, 2, a.Control.Labels().Len())
	assert.Equal(t, control.StateActive, a.Control.State())

	out := filepath.Join(dir, "saved.geojson")
	require.NoError(t, a.Save(out))
	assert.Equal(t, out, a.File())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	fc, err := geojson.UnmarshalFeatureCollection(data)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 1)
}

func TestSaveWithoutFile(t *testing.T) {
	a := newApp(t, nil)
	assert.Error(t, a.Save(""))
}

func TestLoadMissingFile(t *testing.T) {
	a := newApp(t, nil)
	assert.Error(t, a.Load(filepath.Join(t.TempDir(), "missing.geojson")))
}

func TestConfigureCallbacks(t *testing.T) {
	created := make(chan int, 1)
	a := newApp(t, func(opts *control.Options) {
		opts.OnCreate = func(fc *geojson.FeatureCollection, labels measurement.Collection) error {
			created <- labels.Len()
			return nil
		}
	})

	fc, err := geojson.UnmarshalFeatureCollection([]byte(polygon))
	require.NoError(t, err)
	_, err = a.Draw.Add(fc.Features[0].Geometry)
	require.NoError(t, err)

	select {
	case n := <-created:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("OnCreate was not called")
	}
}

func TestWatchReloads(t *testing.T) {
	a := newApp(t, nil)
	path := filepath.Join(t.TempDir(), "drawing.geojson")
	writeFile(t, path, line)
	require.NoError(t, a.Load(path))

	ctx, cancel := context.WithCancel(context.Background())
	reloaded := make(chan error, 4)
	done := make(chan error, 1)
	go func() {
		done <- a.Watch(ctx, path, 20*time.Millisecond, func(err error) {
			reloaded <- err
		})
	}()

	// give the watcher time to register the directory
	assert.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(polygon), 0o644)
		select {
		case err := <-reloaded:
			return err == nil
		default:
			return false
		}
	}, 2*time.Second, 100*time.Millisecond)

	assert.Eventually(t, func() bool {
		labels := a.Control.Labels()
		return labels.Len() == 1 && labels.Labels[0].FeatureID == "area"
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
