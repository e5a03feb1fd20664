package control

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"github.com/samber/lo"
)

// Host ids of the label source and layer
const (
	LabelSourceID = "source-draw-labels"
	LabelLayerID  = "layer-draw-labels"
)

// ErrRendererNotReady is returned when the label source cannot be created,
// typically because the host style has not finished loading
var ErrRendererNotReady = errors.New("renderer not ready")

// LabelLayer returns the symbol layer displaying the measurement property
func LabelLayer(ts draw.TextStyle) maplayer.Layer {
	ts = ts.WithDefaults()

	size := []any{"interpolate", []any{"linear"}, []any{"zoom"}}
	for _, stop := range ts.SizeStops {
		size = append(size, stop[0], stop[1])
	}

	return maplayer.Layer{
		ID:     LabelLayerID,
		Type:   maplayer.LayerSymbol,
		Source: LabelSourceID,
		Layout: map[string]any{
			"text-font":           []any{ts.Font},
			"text-field":          []any{"get", "measurement"},
			"text-anchor":         "center",
			"text-radial-offset":  ts.RadialOffset,
			"text-justify":        "auto",
			"text-letter-spacing": ts.LetterSpacing,
			"text-allow-overlap":  ts.AllowOverlap,
			"text-size":           size,
		},
		Paint: map[string]any{
			"text-color":      ts.Color,
			"text-halo-color": ts.HaloColor,
			"text-halo-width": ts.HaloWidth,
		},
	}
}

// Synchronizer keeps the host's label source and layer in place, replaces
// the label data and keeps the labels drawn above the drawn shapes
type Synchronizer struct {
	host   maplayer.Renderer
	style  draw.TextStyle
	logger *slog.Logger
}

// NewSynchronizer creates a synchronizer for host
func NewSynchronizer(host maplayer.Renderer, style draw.TextStyle, logger *slog.Logger) *Synchronizer {
	return &Synchronizer{
		host:   host,
		style:  style,
		logger: logging.OrNop(logger),
	}
}

// Ensure creates the label source and layer if they are missing
func (s *Synchronizer) Ensure() error {
	if _, ok := s.host.GetSource(LabelSourceID); !ok {
		if err := s.host.AddSource(LabelSourceID, geojson.NewFeatureCollection()); err != nil {
			return fmt.Errorf("failed to add label source: %w", err)
		}
	}
	if _, ok := s.host.GetLayer(LabelLayerID); !ok {
		if err := s.host.AddLayer(LabelLayer(s.style)); err != nil {
			return fmt.Errorf("failed to add label layer: %w", err)
		}
	}
	return nil
}

// Sync replaces the label data with fc and reorders the layers
func (s *Synchronizer) Sync(fc *geojson.FeatureCollection) error {
	_, hasSource := s.host.GetSource(LabelSourceID)
	_, hasLayer := s.host.GetLayer(LabelLayerID)
	if !hasSource || !hasLayer {
		if err := s.Ensure(); err != nil {
			s.logger.Warn("failed to recreate label layer", "error", err)
		}
	}

	src, ok := s.host.GetSource(LabelSourceID)
	if !ok {
		return fmt.Errorf("label source %q missing: %w", LabelSourceID, ErrRendererNotReady)
	}
	src.SetData(fc)

	s.reorder()
	return nil
}

// reorder moves the drawing layers to the top in their current order and
// then the label layer above them
func (s *Synchronizer) reorder() {
	sources := draw.Sources()
	for _, l := range s.host.Layers() {
		if !lo.Contains(sources, l.Source) {
			continue
		}
		if err := s.host.MoveLayer(l.ID); err != nil {
			s.logger.Debug("failed to move draw layer", "layer", l.ID, "error", err)
		}
	}
	if err := s.host.MoveLayer(LabelLayerID); err != nil {
		s.logger.Debug("failed to move label layer", "error", err)
	}
}

// Remove removes the label layer and source
func (s *Synchronizer) Remove() error {
	var errs []error
	if err := s.host.RemoveLayer(LabelLayerID); err != nil && !errors.Is(err, maplayer.ErrNotFound) {
		errs = append(errs, err)
	}
	if err := s.host.RemoveSource(LabelSourceID); err != nil && !errors.Is(err, maplayer.ErrNotFound) {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
