package control

import (
	"fmt"

	"github.com/philipparndt/gomeasure/pkg/units"
)

// ButtonKind identifies a panel button
type ButtonKind int

const (
	ButtonLength ButtonKind = iota
	ButtonArea
	ButtonClear
)

func (b ButtonKind) String() string {
	switch b {
	case ButtonLength:
		return "length"
	case ButtonArea:
		return "area"
	case ButtonClear:
		return "clear"
	default:
		return fmt.Sprintf("button(%d)", int(b))
	}
}

// MarshalText encodes the button by name
func (b ButtonKind) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

// ParseButton returns the button named s
func ParseButton(s string) (ButtonKind, error) {
	for _, b := range []ButtonKind{ButtonLength, ButtonArea, ButtonClear} {
		if b.String() == s {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

// Button is a panel button
type Button struct {
	Kind  ButtonKind `json:"kind"`
	Title string     `json:"title"`
}

// UnitOption is one entry of a unit selector
type UnitOption struct {
	Value units.Unit `json:"value"`
	Label string     `json:"label"`
}

// Selector is a unit dropdown
type Selector struct {
	Kind     units.Kind   `json:"kind"`
	Options  []UnitOption `json:"options"`
	Selected units.Unit   `json:"selected"`
	Visible  bool         `json:"visible"`
}

// Panel is a snapshot of the control's container element
type Panel struct {
	Title   string   `json:"title,omitempty"`
	Buttons []Button `json:"buttons"`
	Length  Selector `json:"length"`
	Area    Selector `json:"area"`
}

// Selector returns the selector for kind
func (p Panel) Selector(kind units.Kind) Selector {
	if kind == units.KindArea {
		return p.Area
	}
	return p.Length
}

func unitOptions(list []units.Unit) []UnitOption {
	out := make([]UnitOption, len(list))
	for i, u := range list {
		out[i] = UnitOption{Value: u, Label: u.Label()}
	}
	return out
}

func newPanel(title string, lang Lang, sel units.Selection, showLength, showArea bool) Panel {
	return Panel{
		Title: title,
		Buttons: []Button{
			{Kind: ButtonLength, Title: lang.LengthMeasurementButtonTitle},
			{Kind: ButtonArea, Title: lang.AreaMeasurementButtonTitle},
			{Kind: ButtonClear, Title: lang.ClearMeasurementsButtonTitle},
		},
		Length: Selector{
			Kind:     units.KindLength,
			Options:  unitOptions(units.LengthUnits),
			Selected: sel.Length,
			Visible:  showLength,
		},
		Area: Selector{
			Kind:     units.KindArea,
			Options:  unitOptions(units.AreaUnits),
			Selected: sel.Area,
			Visible:  showArea,
		},
	}
}
