// Package app assembles a measurement session: an in-memory host map, the
// drawing subsystem and the measurement control, plus drawing file loading
// and watching.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/philipparndt/gomeasure/internal/config"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"github.com/philipparndt/gomeasure/pkg/watcher"
)

// DefaultWatchDebounce coalesces bursts of writes to a watched drawing
const DefaultWatchDebounce = 500 * time.Millisecond

// App is one measurement session
type App struct {
	Config  config.File
	Logger  *slog.Logger
	Host    *maplayer.Map
	Draw    *draw.Draw
	Control *control.Control

	mu   sync.Mutex
	file string
}

// New creates a session from cfg. configure, if not nil, may adjust the
// control options before the control is created.
func New(cfg config.File, logger *slog.Logger, configure func(*control.Options)) (*App, error) {
	logger = logging.OrNop(logger)

	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	opts.Logger = logger
	if configure != nil {
		configure(&opts)
	}

	d := draw.New()
	ctl, err := control.New(d, opts)
	if err != nil {
		return nil, err
	}

	host := maplayer.NewMap()
	host.Load()
	if _, err := ctl.Attach(host); err != nil {
		return nil, fmt.Errorf("failed to attach control: %w", err)
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Host:    host,
		Draw:    d,
		Control: ctl,
	}, nil
}

// Load replaces the drawing with the shapes of a GeoJSON file and
// recomputes the labels
func (a *App) Load(path string) error {
	fc, err := draw.LoadFile(path)
	if err != nil {
		return err
	}

	ids := a.Draw.Set(fc)
	a.mu.Lock()
	a.file = path
	a.mu.Unlock()
	a.Logger.Info("drawing loaded", "file", filepath.Base(path), "shapes", len(ids))

	return a.Control.Refresh()
}

// Save writes the drawing to path. An empty path saves to the last loaded
// or saved file.
func (a *App) Save(path string) error {
	a.mu.Lock()
	if path == "" {
		path = a.file
	}
	a.mu.Unlock()

	if path == "" {
		return fmt.Errorf("no file to save to")
	}
	if err := a.Draw.WriteFile(path); err != nil {
		return err
	}

	a.mu.Lock()
	a.file = path
	a.mu.Unlock()
	return nil
}

// File returns the last loaded or saved file
func (a *App) File() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file
}

// Watch reloads path whenever it changes until ctx is done. onReload, if
// not nil, is called after every reload with its result.
func (a *App) Watch(ctx context.Context, path string, debounce time.Duration, onReload func(error)) error {
	fw, err := watcher.NewFileWatcher(debounce, a.Logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	err = fw.Watch([]string{path}, func(changed string) {
		a.Logger.Info("file changed, reloading", "file", filepath.Base(changed))
		err := a.Load(changed)
		if err != nil {
			a.Logger.Error("reload failed", "file", filepath.Base(changed), "error", err)
		}
		if onReload != nil {
			onReload(err)
		}
	})
	if err != nil {
		return err
	}

	fw.Start()
	<-ctx.Done()
	return nil
}

// Close detaches the control from the host
func (a *App) Close() error {
	return a.Control.Detach()
}
