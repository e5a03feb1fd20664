package maplayer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/paulmach/orb/geojson"
)

// Map is an in-memory Renderer. It keeps the style's sources and layers,
// fires the load event and notifies observers whenever source data changes.
type Map struct {
	mu       sync.Mutex
	loaded   bool
	sources  map[string]*geoJSONSource
	layers   []Layer
	handlers map[string]map[int]func()
	watchers map[int]func(id string, fc *geojson.FeatureCollection)
	nextID   int
}

var _ Renderer = (*Map)(nil)

// NewMap creates an empty, not yet loaded map
func NewMap() *Map {
	return &Map{
		sources:  make(map[string]*geoJSONSource),
		handlers: make(map[string]map[int]func()),
		watchers: make(map[int]func(string, *geojson.FeatureCollection)),
	}
}

// Load marks the style as ready and fires the load event
func (m *Map) Load() {
	m.mu.Lock()
	if m.loaded {
		m.mu.Unlock()
		return
	}
	m.loaded = true
	m.mu.Unlock()

	m.fire(EventLoad)
}

// Loaded reports whether Load has been called
func (m *Map) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// On registers fn for event
func (m *Map) On(event string, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	if m.handlers[event] == nil {
		m.handlers[event] = make(map[int]func())
	}
	m.handlers[event][id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers[event], id)
	}
}

// OnSourceData registers fn to be called after any source's data is replaced
func (m *Map) OnSourceData(fn func(id string, fc *geojson.FeatureCollection)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextID
	m.nextID++
	m.watchers[id] = fn

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.watchers, id)
	}
}

func (m *Map) fire(event string) {
	m.mu.Lock()
	ids := make([]int, 0, len(m.handlers[event]))
	for id := range m.handlers[event] {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.handlers[event][id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// GetSource returns the source registered under id
func (m *Map) GetSource(id string) (Source, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sources[id]
	if !ok {
		return nil, false
	}
	return s, true
}

// AddSource registers a GeoJSON source
func (m *Map) AddSource(id string, data *geojson.FeatureCollection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return fmt.Errorf("add source %q: %w", id, ErrStyleNotLoaded)
	}
	if _, ok := m.sources[id]; ok {
		return fmt.Errorf("source %q: %w", id, ErrExists)
	}
	if data == nil {
		data = geojson.NewFeatureCollection()
	}
	m.sources[id] = &geoJSONSource{id: id, owner: m, data: data}
	return nil
}

// RemoveSource removes a source that no layer uses anymore
func (m *Map) RemoveSource(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sources[id]; !ok {
		return fmt.Errorf("source %q: %w", id, ErrNotFound)
	}
	for _, l := range m.layers {
		if l.Source == id {
			return fmt.Errorf("source %q is still used by layer %q", id, l.ID)
		}
	}
	delete(m.sources, id)
	return nil
}

// GetLayer returns the layer registered under id
func (m *Map) GetLayer(id string) (Layer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.indexOf(id); i >= 0 {
		return m.layers[i], true
	}
	return Layer{}, false
}

// AddLayer appends a layer on top of the draw order
func (m *Map) AddLayer(layer Layer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return fmt.Errorf("add layer %q: %w", layer.ID, ErrStyleNotLoaded)
	}
	if m.indexOf(layer.ID) >= 0 {
		return fmt.Errorf("layer %q: %w", layer.ID, ErrExists)
	}
	if _, ok := m.sources[layer.Source]; !ok {
		return fmt.Errorf("layer %q references source %q: %w", layer.ID, layer.Source, ErrNotFound)
	}
	m.layers = append(m.layers, layer)
	return nil
}

// RemoveLayer removes a layer
func (m *Map) RemoveLayer(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("layer %q: %w", id, ErrNotFound)
	}
	m.layers = slices.Delete(m.layers, i, i+1)
	return nil
}

// MoveLayer moves a layer to the top
func (m *Map) MoveLayer(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return fmt.Errorf("layer %q: %w", id, ErrNotFound)
	}
	layer := m.layers[i]
	m.layers = append(slices.Delete(m.layers, i, i+1), layer)
	return nil
}

// Layers returns a copy of the layers in draw order
func (m *Map) Layers() []Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.layers)
}

// LayerIDs returns the layer ids in draw order
func (m *Map) LayerIDs() []string {
	layers := m.Layers()
	ids := make([]string, len(layers))
	for i, l := range layers {
		ids[i] = l.ID
	}
	return ids
}

func (m *Map) indexOf(id string) int {
	return slices.IndexFunc(m.layers, func(l Layer) bool { return l.ID == id })
}

// geoJSONSource is the Map's Source implementation
type geoJSONSource struct {
	id    string
	owner *Map
	data  *geojson.FeatureCollection
}

// SetData replaces the source data and notifies observers
func (s *geoJSONSource) SetData(fc *geojson.FeatureCollection) {
	if fc == nil {
		fc = geojson.NewFeatureCollection()
	}

	s.owner.mu.Lock()
	s.data = fc
	watchers := make([]func(string, *geojson.FeatureCollection), 0, len(s.owner.watchers))
	ids := make([]int, 0, len(s.owner.watchers))
	for id := range s.owner.watchers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		watchers = append(watchers, s.owner.watchers[id])
	}
	s.owner.mu.Unlock()

	for _, fn := range watchers {
		fn(s.id, fc)
	}
}

// Data returns the current data
func (s *geoJSONSource) Data() *geojson.FeatureCollection {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	return s.data
}
