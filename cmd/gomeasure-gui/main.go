package main

import (
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/app"
	"github.com/philipparndt/gomeasure/internal/config"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/internal/ui"
	"github.com/philipparndt/gomeasure/pkg/viewer"
	"github.com/philipparndt/gomeasure/version"
)

type App struct {
	window  fyne.Window
	session *app.App
	mapView *viewer.MapView
	panel   *ui.Panel
}

func main() {
	logger, err := logging.New(os.Stderr, os.Getenv("GOMEASURE_LOG_LEVEL"), logging.FormatText)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Default()
	if path := os.Getenv("GOMEASURE_CONFIG"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
	if cfg.Locale == "" {
		cfg.Locale = config.DetectLocale()
	}

	a := fyneapp.New()
	w := a.NewWindow("GoMeasure " + version.GetVersion())

	appInstance := &App{window: w}
	if err := appInstance.setup(cfg, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer appInstance.session.Close()

	// Check if file was provided as argument
	if len(os.Args) > 1 {
		appInstance.loadFile(os.Args[1])
	}

	w.Resize(fyne.NewSize(1200, 800))
	w.ShowAndRun()
}

func (a *App) setup(cfg config.File, logger *slog.Logger) error {
	session, err := app.New(cfg, logger, func(opts *control.Options) {
		// debounced, runs off the UI thread
		opts.OnRender = func(_ *geojson.FeatureCollection, labels measurement.Collection) error {
			fyne.Do(func() {
				if a.panel != nil {
					a.panel.ShowLabels(labels)
				}
			})
			return nil
		}
	})
	if err != nil {
		return err
	}
	a.session = session

	a.mapView = viewer.NewMapView(session.Host, session.Draw)
	a.mapView.SetOnError(a.showError)

	a.panel = ui.NewPanel(session.Control)
	a.panel.SetOnError(a.showError)
	a.panel.SetOnPress(func(kind control.ButtonKind) {
		if kind == control.ButtonClear {
			a.mapView.FitToFeatures()
		}
	})

	a.setupMainUI()
	return nil
}

func (a *App) showError(err error) {
	dialog.ShowError(err, a.window)
}

func (a *App) showFileDialog() {
	open := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		a.loadFile(reader.URI().Path())
	}, a.window)
	open.SetFilter(storage.NewExtensionFileFilter([]string{".geojson", ".json"}))
	open.Show()
}

func (a *App) showSaveDialog() {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			a.showError(err)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		_ = writer.Close()

		if err := a.session.Save(path); err != nil {
			a.showError(fmt.Errorf("failed to save drawing: %w", err))
		}
	}, a.window)
}

func (a *App) loadFile(filename string) {
	if err := a.session.Load(filename); err != nil {
		a.showError(fmt.Errorf("failed to load drawing: %w", err))
		return
	}
	a.window.SetTitle("GoMeasure - " + filename)
	a.panel.ShowLabels(a.session.Control.Labels())
	a.mapView.FitToFeatures()
}

func (a *App) setupMainUI() {
	openButton := widget.NewButton("Open File", a.showFileDialog)
	saveButton := widget.NewButton("Save File", a.showSaveDialog)
	finishButton := widget.NewButton("Finish Shape", a.mapView.Finish)
	fitButton := widget.NewButton("Fit View", a.mapView.FitToFeatures)

	instructions := widget.NewLabel(
		"Instructions:\n" +
			"• Choose a measure button, then click to add vertices\n" +
			"• Double-click or 'Finish Shape' to complete it\n" +
			"• Drag a vertex to move it, drag elsewhere to pan\n" +
			"• Scroll to zoom in/out",
	)
	instructions.Wrapping = fyne.TextWrapWord

	infoPanel := container.NewVBox(
		a.panel.Object(),
		widget.NewSeparator(),
		finishButton,
		fitButton,
		widget.NewSeparator(),
		instructions,
		widget.NewSeparator(),
		openButton,
		saveButton,
	)

	infoScroll := container.NewVScroll(infoPanel)
	infoScroll.SetMinSize(fyne.NewSize(300, 0))

	content := container.NewBorder(
		nil,        // top
		nil,        // bottom
		nil,        // left
		infoScroll, // right
		a.mapView,  // center
	)

	a.window.SetContent(content)
}
