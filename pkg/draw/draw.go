// Package draw is an in-memory vector drawing subsystem. It stores line and
// polygon features, tracks the drawing mode and emits lifecycle events
// whenever the drawn geometry changes.
package draw

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
)

// Mode is the active drawing mode
type Mode string

const (
	ModeSimpleSelect   Mode = "simple_select"
	ModeDrawLineString Mode = "draw_line_string"
	ModeDrawPolygon    Mode = "draw_polygon"
	ModeStatic         Mode = "static"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	switch m {
	case ModeSimpleSelect, ModeDrawLineString, ModeDrawPolygon, ModeStatic:
		return true
	}
	return false
}

// EventKind identifies a drawing lifecycle event
type EventKind string

const (
	// EventCreate fires after a shape is finished
	EventCreate EventKind = "create"
	// EventUpdate fires after a shape is moved or its vertices changed
	EventUpdate EventKind = "update"
	// EventDelete fires after shapes are deleted individually
	EventDelete EventKind = "delete"
	// EventRender fires on every visual refresh, including mid-drag
	EventRender EventKind = "render"
	// EventModeChange fires after the drawing mode changed
	EventModeChange EventKind = "modechange"
)

// Internal host sources owned by the drawing subsystem
const (
	SourceCold = "mapbox-gl-draw-cold"
	SourceHot  = "mapbox-gl-draw-hot"
)

// Sources returns the internal host source ids
func Sources() []string {
	return []string{SourceCold, SourceHot}
}

// ErrNotFound is returned for unknown feature ids
var ErrNotFound = errors.New("feature not found")

// Event is passed to handlers
type Event struct {
	Kind     EventKind
	Features []*geojson.Feature
	Mode     Mode
}

// Handler receives drawing events
type Handler func(Event)

// Draw is the feature store
type Draw struct {
	mu       sync.Mutex
	features []*geojson.Feature
	mode     Mode
	dragging string
	handlers map[EventKind]map[int]Handler
	nextID   int
	host     maplayer.Renderer
}

// New creates an empty store in simple_select mode
func New() *Draw {
	return &Draw{
		mode:     ModeSimpleSelect,
		handlers: make(map[EventKind]map[int]Handler),
	}
}

// On registers h for kind and returns a function removing it
func (d *Draw) On(kind EventKind, h Handler) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	if d.handlers[kind] == nil {
		d.handlers[kind] = make(map[int]Handler)
	}
	d.handlers[kind][id] = h

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.handlers[kind], id)
	}
}

// Mode returns the current drawing mode
func (d *Draw) Mode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// ChangeMode switches the drawing mode
func (d *Draw) ChangeMode(mode Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("unknown draw mode %q", mode)
	}

	d.mu.Lock()
	d.mode = mode
	d.dragging = ""
	d.mu.Unlock()

	d.emit(Event{Kind: EventModeChange, Mode: mode})
	d.publish()
	d.emit(Event{Kind: EventRender, Mode: mode})
	return nil
}

// Add stores a finished shape and returns its id
func (d *Draw) Add(g orb.Geometry) (string, error) {
	if g == nil {
		return "", errors.New("cannot add nil geometry")
	}

	f := geojson.NewFeature(orb.Clone(g))
	f.ID = uuid.NewString()

	d.mu.Lock()
	d.features = append(d.features, f)
	created := cloneFeature(f)
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventCreate, Features: []*geojson.Feature{created}})
	d.emit(Event{Kind: EventRender})
	return created.ID.(string), nil
}

// Update replaces the geometry of a stored shape
func (d *Draw) Update(id string, g orb.Geometry) error {
	if g == nil {
		return errors.New("cannot update to nil geometry")
	}

	d.mu.Lock()
	f := d.find(id)
	if f == nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	f.Geometry = orb.Clone(g)
	updated := cloneFeature(f)
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventUpdate, Features: []*geojson.Feature{updated}})
	d.emit(Event{Kind: EventRender})
	return nil
}

// DragVertex moves one vertex of a shape without committing the change.
// Only render events are emitted until FinishDrag.
func (d *Draw) DragVertex(id string, index int, to orb.Point) error {
	d.mu.Lock()
	f := d.find(id)
	if f == nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	if err := moveVertex(f, index, to); err != nil {
		d.mu.Unlock()
		return err
	}
	d.dragging = id
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventRender})
	return nil
}

// FinishDrag commits a drag started with DragVertex
func (d *Draw) FinishDrag(id string) error {
	d.mu.Lock()
	f := d.find(id)
	if f == nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	d.dragging = ""
	updated := cloneFeature(f)
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventUpdate, Features: []*geojson.Feature{updated}})
	d.emit(Event{Kind: EventRender})
	return nil
}

// Delete removes the given shapes
func (d *Draw) Delete(ids ...string) error {
	d.mu.Lock()
	for _, id := range ids {
		if d.find(id) == nil {
			d.mu.Unlock()
			return fmt.Errorf("%s: %w", id, ErrNotFound)
		}
	}

	var deleted []*geojson.Feature
	d.features = slices.DeleteFunc(d.features, func(f *geojson.Feature) bool {
		if slices.Contains(ids, featureID(f)) {
			deleted = append(deleted, f)
			return true
		}
		return false
	})
	if slices.Contains(ids, d.dragging) {
		d.dragging = ""
	}
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventDelete, Features: deleted})
	d.emit(Event{Kind: EventRender})
	return nil
}

// DeleteAll removes every shape. Like a programmatic clear it does not
// emit a delete event, only a render.
func (d *Draw) DeleteAll() {
	d.mu.Lock()
	d.features = nil
	d.dragging = ""
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventRender})
}

// Set replaces the whole store. Features without an id get one.
func (d *Draw) Set(fc *geojson.FeatureCollection) []string {
	var features []*geojson.Feature
	if fc != nil {
		features = make([]*geojson.Feature, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			nf := cloneFeature(f)
			if id := featureID(nf); id == "" {
				nf.ID = uuid.NewString()
			} else {
				nf.ID = id
			}
			features = append(features, nf)
		}
	}

	ids := make([]string, len(features))
	for i, f := range features {
		ids[i] = featureID(f)
	}

	d.mu.Lock()
	d.features = features
	d.dragging = ""
	updated := cloneFeatures(features)
	d.mu.Unlock()

	d.publish()
	d.emit(Event{Kind: EventUpdate, Features: updated})
	d.emit(Event{Kind: EventRender})
	return ids
}

// Get returns a copy of one shape
func (d *Draw) Get(id string) (*geojson.Feature, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := d.find(id)
	if f == nil {
		return nil, false
	}
	return cloneFeature(f), true
}

// GetAll returns a deep copy of every stored shape in insertion order
func (d *Draw) GetAll() *geojson.FeatureCollection {
	d.mu.Lock()
	defer d.mu.Unlock()

	fc := geojson.NewFeatureCollection()
	fc.Features = cloneFeatures(d.features)
	return fc
}

// Len returns the number of stored shapes
func (d *Draw) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.features)
}

func (d *Draw) find(id string) *geojson.Feature {
	for _, f := range d.features {
		if featureID(f) == id {
			return f
		}
	}
	return nil
}

func (d *Draw) emit(e Event) {
	d.mu.Lock()
	ids := make([]int, 0, len(d.handlers[e.Kind]))
	for id := range d.handlers[e.Kind] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]Handler, 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, d.handlers[e.Kind][id])
	}
	d.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}

func moveVertex(f *geojson.Feature, index int, to orb.Point) error {
	switch g := f.Geometry.(type) {
	case orb.LineString:
		if index < 0 || index >= len(g) {
			return fmt.Errorf("vertex %d out of range", index)
		}
		g[index] = to
	case orb.Polygon:
		if len(g) == 0 || index < 0 || index >= len(g[0]) {
			return fmt.Errorf("vertex %d out of range", index)
		}
		ring := g[0]
		ring[index] = to
		// keep the ring closed
		last := len(ring) - 1
		if index == 0 {
			ring[last] = to
		} else if index == last {
			ring[0] = to
		}
	default:
		return fmt.Errorf("cannot drag vertex of %s", f.Geometry.GeoJSONType())
	}
	return nil
}

func featureID(f *geojson.Feature) string {
	switch id := f.ID.(type) {
	case nil:
		return ""
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

func cloneFeature(f *geojson.Feature) *geojson.Feature {
	nf := geojson.NewFeature(orb.Clone(f.Geometry))
	nf.ID = f.ID
	nf.Properties = f.Properties.Clone()
	if nf.Properties == nil {
		nf.Properties = geojson.Properties{}
	}
	return nf
}

func cloneFeatures(features []*geojson.Feature) []*geojson.Feature {
	out := make([]*geojson.Feature, len(features))
	for i, f := range features {
		out[i] = cloneFeature(f)
	}
	return out
}
