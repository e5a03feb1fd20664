// Package maplayer describes the host map renderer the measurement control
// draws into: a registry of GeoJSON sources and style layers with a
// bottom-to-top draw order.
package maplayer

import (
	"errors"

	"github.com/paulmach/orb/geojson"
)

// EventLoad is fired once the renderer's style is ready to accept sources and layers
const EventLoad = "load"

var (
	// ErrStyleNotLoaded is returned when sources or layers are added before load
	ErrStyleNotLoaded = errors.New("style is not done loading")
	// ErrExists is returned when adding a source or layer id twice
	ErrExists = errors.New("already exists")
	// ErrNotFound is returned for unknown source or layer ids
	ErrNotFound = errors.New("not found")
)

// LayerType is the style layer kind
type LayerType string

const (
	LayerLine   LayerType = "line"
	LayerFill   LayerType = "fill"
	LayerCircle LayerType = "circle"
	LayerSymbol LayerType = "symbol"
)

// Layer is a style rule rendering the features of one source
type Layer struct {
	ID     string         `json:"id"`
	Type   LayerType      `json:"type"`
	Source string         `json:"source"`
	Filter []any          `json:"filter,omitempty"`
	Layout map[string]any `json:"layout,omitempty"`
	Paint  map[string]any `json:"paint,omitempty"`
}

// Source is a GeoJSON data container whose data is replaced, never merged
type Source interface {
	SetData(fc *geojson.FeatureCollection)
	Data() *geojson.FeatureCollection
}

// Renderer is the host map the control attaches to
type Renderer interface {
	// Loaded reports whether the load event has fired
	Loaded() bool
	// On registers fn for a renderer event and returns a function removing it
	On(event string, fn func()) (off func())

	GetSource(id string) (Source, bool)
	AddSource(id string, data *geojson.FeatureCollection) error
	RemoveSource(id string) error

	GetLayer(id string) (Layer, bool)
	AddLayer(layer Layer) error
	RemoveLayer(id string) error
	// MoveLayer moves a layer to the top of the draw order
	MoveLayer(id string) error
	// Layers returns the layers in draw order, bottom first
	Layers() []Layer
}
