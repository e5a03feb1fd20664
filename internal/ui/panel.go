// Package ui contains the fyne widgets of the measurement control panel
package ui

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/pkg/units"
)

// Panel shows the measure buttons, the unit selectors and the current labels
type Panel struct {
	control *control.Control

	title        *widget.Label
	buttons      map[control.ButtonKind]*widget.Button
	lengthSelect *widget.Select
	areaSelect   *widget.Select
	labels       *widget.Label
	summary      *widget.Label
	content      *fyne.Container

	lengthUnits map[string]units.Unit
	areaUnits   map[string]units.Unit
	syncing     bool

	onPress func(control.ButtonKind)
	onError func(error)
}

// NewPanel creates the panel widgets for ctl
func NewPanel(ctl *control.Control) *Panel {
	p := &Panel{
		control:     ctl,
		buttons:     make(map[control.ButtonKind]*widget.Button),
		lengthUnits: make(map[string]units.Unit),
		areaUnits:   make(map[string]units.Unit),
	}
	state := ctl.Panel()

	p.title = widget.NewLabel(state.Title)
	p.title.TextStyle = fyne.TextStyle{Bold: true}

	buttons := container.NewVBox()
	for _, b := range state.Buttons {
		kind := b.Kind
		btn := widget.NewButton(b.Title, func() {
			p.press(kind)
		})
		p.buttons[kind] = btn
		buttons.Add(btn)
	}

	p.lengthSelect = widget.NewSelect(p.options(state.Length, p.lengthUnits), func(label string) {
		p.selectUnit(label, p.lengthUnits, ctl.SelectLengthUnit)
	})
	p.areaSelect = widget.NewSelect(p.options(state.Area, p.areaUnits), func(label string) {
		p.selectUnit(label, p.areaUnits, ctl.SelectAreaUnit)
	})

	p.labels = widget.NewLabel("")
	p.labels.Wrapping = fyne.TextWrapWord
	p.summary = widget.NewLabel("")

	p.content = container.NewVBox(
		p.title,
		buttons,
		p.lengthSelect,
		p.areaSelect,
		widget.NewSeparator(),
		widget.NewLabel("Measurements:"),
		p.labels,
		p.summary,
	)

	p.Update()
	p.ShowLabels(ctl.Labels())
	return p
}

// Object returns the canvas object to place in a window
func (p *Panel) Object() fyne.CanvasObject {
	return p.content
}

// SetOnPress sets a callback run after a button was handled
func (p *Panel) SetOnPress(callback func(control.ButtonKind)) {
	p.onPress = callback
}

// SetOnError sets the callback for failed actions
func (p *Panel) SetOnError(callback func(error)) {
	p.onError = callback
}

// Update refreshes the title, selector values and selector visibility
func (p *Panel) Update() {
	state := p.control.Panel()

	p.syncing = true
	defer func() { p.syncing = false }()

	p.title.SetText(state.Title)
	if state.Title == "" {
		p.title.Hide()
	} else {
		p.title.Show()
	}

	for kind, sel := range map[units.Kind]*widget.Select{
		units.KindLength: p.lengthSelect,
		units.KindArea:   p.areaSelect,
	} {
		s := state.Selector(kind)
		sel.SetSelected(s.Selected.Label())
		setVisible(sel, s.Visible)
	}
}

// ShowLabels lists the measurements of a label collection
func (p *Panel) ShowLabels(labels measurement.Collection) {
	var sb strings.Builder
	for _, l := range labels.Labels {
		switch {
		case l.Segment >= 0:
			fmt.Fprintf(&sb, "Segment %d: %s\n", l.Segment+1, l.Measurement)
		default:
			fmt.Fprintf(&sb, "Area: %s\n", l.Measurement)
		}
	}
	if len(labels.Labels) == 0 {
		sb.WriteString("-")
	}
	p.labels.SetText(strings.TrimRight(sb.String(), "\n"))

	if n := len(labels.Skipped); n > 0 {
		p.summary.SetText(fmt.Sprintf("%d shape(s) could not be measured", n))
		p.summary.Show()
	} else {
		p.summary.Hide()
	}
}

func (p *Panel) press(kind control.ButtonKind) {
	if err := p.control.Press(kind); err != nil {
		p.fail(err)
		return
	}
	p.Update()
	if kind == control.ButtonClear {
		p.ShowLabels(p.control.Labels())
	}
	if p.onPress != nil {
		p.onPress(kind)
	}
}

func (p *Panel) selectUnit(label string, lookup map[string]units.Unit, apply func(units.Unit) error) {
	if p.syncing {
		return
	}
	u, ok := lookup[label]
	if !ok {
		return
	}
	if err := apply(u); err != nil {
		p.fail(err)
		return
	}
	p.ShowLabels(p.control.Labels())
}

func (p *Panel) options(s control.Selector, lookup map[string]units.Unit) []string {
	out := make([]string, len(s.Options))
	for i, o := range s.Options {
		out[i] = o.Label
		lookup[o.Label] = o.Value
	}
	return out
}

func (p *Panel) fail(err error) {
	if p.onError != nil {
		p.onError(err)
	}
}

func setVisible(o fyne.CanvasObject, visible bool) {
	if visible {
		o.Show()
	} else {
		o.Hide()
	}
}
