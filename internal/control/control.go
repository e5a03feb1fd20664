// Package control wires a drawing subsystem to a host map and keeps
// measurement labels for every drawn shape in sync.
package control

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/paulmach/orb/geojson"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/internal/schedule"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"github.com/philipparndt/gomeasure/pkg/units"
	"golang.org/x/text/language"
)

// ErrDetached is returned by operations on a control that was detached
var ErrDetached = errors.New("control is detached")

// State is the lifecycle state of a control
type State int

const (
	// StateIdle waits for the host to finish loading
	StateIdle State = iota
	// StateActive reacts to drawing events
	StateActive
	// StateDetached is final
	StateDetached
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateDetached:
		return "detached"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Control is the measurement overlay. Every event handler, debounced
// callback and user action runs under mu.
type Control struct {
	mu sync.Mutex

	opts   Options
	lang   Lang
	draw   *draw.Draw
	engine *measurement.Engine
	logger *slog.Logger

	state      State
	sel        units.Selection
	host       maplayer.Renderer
	syncer     *Synchronizer
	sched      *schedule.Scheduler
	offs       []func()
	labels     measurement.Collection
	showLength bool
	showArea   bool
}

// New creates a control measuring the shapes of d
func New(d *draw.Draw, opts Options) (*Control, error) {
	if d == nil {
		return nil, errors.New("draw must not be nil")
	}

	sel := opts.selection()
	if err := sel.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default units: %w", err)
	}

	tag := language.English
	if opts.Locale != "" {
		parsed, err := language.Parse(opts.Locale)
		if err != nil {
			return nil, fmt.Errorf("invalid locale %q: %w", opts.Locale, err)
		}
		tag = parsed
	}

	logger := logging.OrNop(opts.Logger)
	formatter := units.NewFormatter(tag, opts.UnitsGroupingSeparator)

	return &Control{
		opts:   opts,
		lang:   buttonTitles(tag.String(), opts.Lang),
		draw:   d,
		engine: measurement.NewEngine(opts.Analyzer, formatter, logger),
		logger: logger,
		sel:    sel,
	}, nil
}

// Draw returns the drawing subsystem
func (c *Control) Draw() *draw.Draw {
	return c.draw
}

// Attach mounts the control on host. If host has already loaded the
// control becomes active immediately, otherwise on the host's load event.
func (c *Control) Attach(host maplayer.Renderer) (*Panel, error) {
	c.mu.Lock()
	switch {
	case c.state == StateDetached:
		c.mu.Unlock()
		return nil, ErrDetached
	case c.host != nil:
		c.mu.Unlock()
		return nil, errors.New("control is already attached")
	}

	c.host = host
	c.syncer = NewSynchronizer(host, c.opts.Style.Text, c.logger)
	c.sched = schedule.NewScheduler(c.opts.DebounceWindow, c.debouncedRecompute, c.debouncedRender)
	c.offs = []func(){
		host.On(maplayer.EventLoad, c.onLoad),
		c.draw.On(draw.EventCreate, c.onCreate),
		c.draw.On(draw.EventUpdate, c.onChange),
		c.draw.On(draw.EventDelete, c.onChange),
		c.draw.On(draw.EventRender, c.onRender),
	}
	panel := c.panelLocked()
	c.mu.Unlock()

	if host.Loaded() {
		c.onLoad()
	}
	return &panel, nil
}

// Detach unmounts the control. Pending debounced work is cancelled and the
// label and drawing layers are removed from the host.
func (c *Control) Detach() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDetached {
		return ErrDetached
	}
	c.state = StateDetached

	if c.sched != nil {
		c.sched.Stop()
	}
	for _, off := range c.offs {
		off()
	}
	c.offs = nil

	if c.host == nil {
		return nil
	}

	var errs []error
	if err := c.syncer.Remove(); err != nil {
		errs = append(errs, err)
	}
	if err := c.draw.RemoveFrom(c.host); err != nil {
		errs = append(errs, err)
	}
	c.host = nil
	c.syncer = nil

	err := errors.Join(errs...)
	if err != nil {
		c.logger.Warn("detach left layers behind", "error", err)
	}
	return err
}

// State returns the lifecycle state
func (c *Control) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Selection returns the current units
func (c *Control) Selection() units.Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel
}

// Labels returns a copy of the current labels
func (c *Control) Labels() measurement.Collection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return measurement.Collection{
		Labels:  slices.Clone(c.labels.Labels),
		Skipped: slices.Clone(c.labels.Skipped),
	}
}

// Panel returns a snapshot of the buttons and selectors
func (c *Control) Panel() Panel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panelLocked()
}

func (c *Control) panelLocked() Panel {
	return newPanel(c.opts.Title, c.lang, c.sel, c.showLength, c.showArea)
}

// SelectLengthUnit changes the length unit and recomputes the labels
func (c *Control) SelectLengthUnit(u units.Unit) error {
	return c.selectUnit(u, units.KindLength)
}

// SelectAreaUnit changes the area unit and recomputes the labels
func (c *Control) SelectAreaUnit(u units.Unit) error {
	return c.selectUnit(u, units.KindArea)
}

func (c *Control) selectUnit(u units.Unit, kind units.Kind) error {
	if !u.Valid() {
		return fmt.Errorf("%s unit %q: %w", kind, u, units.ErrUnknownUnit)
	}
	if u.Kind() != kind {
		return fmt.Errorf("%q is not a %s unit: %w", u, kind, units.ErrIncompatibleUnits)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDetached {
		return ErrDetached
	}
	if kind == units.KindArea {
		c.sel.Area = u
	} else {
		c.sel.Length = u
	}

	if c.state != StateActive {
		return nil
	}
	return c.recomputeLocked()
}

// Refresh recomputes the labels immediately
func (c *Control) Refresh() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateDetached:
		return ErrDetached
	case StateIdle:
		return ErrRendererNotReady
	}
	return c.recomputeLocked()
}

// StartLine switches the drawing subsystem to line drawing and shows the
// length selector
func (c *Control) StartLine() error {
	return c.startDrawing(draw.ModeDrawLineString, true, false)
}

// StartPolygon switches the drawing subsystem to polygon drawing and shows
// the area selector
func (c *Control) StartPolygon() error {
	return c.startDrawing(draw.ModeDrawPolygon, false, true)
}

func (c *Control) startDrawing(mode draw.Mode, showLength, showArea bool) error {
	if c.State() == StateDetached {
		return ErrDetached
	}

	// the drawing subsystem emits synchronously, so it is called without mu
	if err := c.draw.ChangeMode(mode); err != nil {
		return err
	}

	c.mu.Lock()
	c.showLength = showLength
	c.showArea = showArea
	c.mu.Unlock()
	return nil
}

// Clear deletes every drawn shape, empties the labels and hides both
// selectors
func (c *Control) Clear() error {
	if c.State() == StateDetached {
		return ErrDetached
	}

	c.draw.DeleteAll()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.showLength = false
	c.showArea = false
	if c.state != StateActive {
		c.labels = measurement.Collection{}
		return nil
	}
	return c.recomputeLocked()
}

// Press dispatches a panel button
func (c *Control) Press(b ButtonKind) error {
	switch b {
	case ButtonLength:
		return c.StartLine()
	case ButtonArea:
		return c.StartPolygon()
	case ButtonClear:
		return c.Clear()
	default:
		return fmt.Errorf("unknown button %s", b)
	}
}

func (c *Control) onLoad() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateIdle || c.host == nil {
		return
	}
	if err := c.draw.AddTo(c.host, c.opts.Style); err != nil {
		c.logger.Warn("failed to register drawing layers", "error", err)
	}
	if err := c.syncer.Ensure(); err != nil {
		c.logger.Warn("failed to create label layer", "error", err)
	}
	c.state = StateActive
	c.logger.Debug("control active")

	// shapes that existed before the host loaded get their labels now
	if c.draw.Len() > 0 {
		_ = c.recomputeLocked()
	}
}

func (c *Control) onCreate(draw.Event) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	_ = c.recomputeLocked()
	features, labels := c.draw.GetAll(), c.labels
	c.mu.Unlock()

	c.invoke("onCreate", c.opts.OnCreate, features, labels)
}

func (c *Control) onChange(draw.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	_ = c.recomputeLocked()
}

func (c *Control) onRender(draw.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	c.sched.Signal()
}

func (c *Control) debouncedRecompute() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateActive {
		return
	}
	_ = c.recomputeLocked()
}

func (c *Control) debouncedRender() {
	if c.opts.OnRender == nil {
		return
	}

	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return
	}
	features := c.draw.GetAll()
	labels, err := c.engine.Measure(features, c.sel)
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("failed to measure shapes for render callback", "error", err)
		return
	}
	c.invoke("onRender", c.opts.OnRender, features, labels)
}

// recomputeLocked measures every drawn shape and replaces the label source.
// The caller holds mu.
func (c *Control) recomputeLocked() error {
	labels, err := c.engine.Measure(c.draw.GetAll(), c.sel)
	if err != nil {
		c.logger.Error("failed to compute labels", "error", err)
		return err
	}
	c.labels = labels

	if err := c.syncer.Sync(labels.FeatureCollection()); err != nil {
		c.logger.Warn("labels not rendered, retrying on next change", "error", err)
		return err
	}
	c.logger.Debug("labels updated", "count", labels.Len(), "skipped", len(labels.Skipped))
	return nil
}

func (c *Control) invoke(name string, cb Callback, features *geojson.FeatureCollection, labels measurement.Collection) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("callback panicked", "callback", name, "panic", r)
		}
	}()
	if err := cb(features, labels); err != nil {
		c.logger.Error("callback failed", "callback", name, "error", err)
	}
}
