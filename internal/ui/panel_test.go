package ui

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/paulmach/orb"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/measurement"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/maplayer"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPanel(t *testing.T, opts control.Options) (*Panel, *control.Control) {
	t.Helper()
	test.NewTempApp(t)

	ctl, err := control.New(draw.New(), opts)
	require.NoError(t, err)
	host := maplayer.NewMap()
	host.Load()
	_, err = ctl.Attach(host)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctl.Detach() })

	return NewPanel(ctl), ctl
}

func TestPanelInitialState(t *testing.T) {
	p, _ := newPanel(t, control.Options{Title: "Measure"})

	assert.Equal(t, "Measure", p.title.Text)
	require.Len(t, p.buttons, 3)
	assert.Equal(t, "Measure distance", p.buttons[control.ButtonLength].Text)
	assert.Equal(t, "Measure area", p.buttons[control.ButtonArea].Text)
	assert.Equal(t, "Clear measurements", p.buttons[control.ButtonClear].Text)

	assert.False(t, p.lengthSelect.Visible())
	assert.False(t, p.areaSelect.Visible())
	assert.Equal(t, "ft", p.lengthSelect.Selected)
	assert.Equal(t, "ft²", p.areaSelect.Selected)
	assert.Equal(t, []string{"ft", "m", "km", "mi"}, p.lengthSelect.Options)
	assert.Equal(t, "-", p.labels.Text)
}

func TestPanelButtons(t *testing.T) {
	p, ctl := newPanel(t, control.Options{})

	var pressed []control.ButtonKind
	p.SetOnPress(func(kind control.ButtonKind) {
		pressed = append(pressed, kind)
	})

	test.Tap(p.buttons[control.ButtonLength])
	assert.Equal(t, draw.ModeDrawLineString, ctl.Draw().Mode())
	assert.True(t, p.lengthSelect.Visible())
	assert.False(t, p.areaSelect.Visible())

	test.Tap(p.buttons[control.ButtonArea])
	assert.Equal(t, draw.ModeDrawPolygon, ctl.Draw().Mode())
	assert.False(t, p.lengthSelect.Visible())
	assert.True(t, p.areaSelect.Visible())

	_, err := ctl.Draw().Add(orb.LineString{{0, 0}, {0.01, 0}})
	require.NoError(t, err)

	test.Tap(p.buttons[control.ButtonClear])
	assert.Equal(t, 0, ctl.Draw().Len())
	assert.False(t, p.areaSelect.Visible())
	assert.Equal(t, "-", p.labels.Text)

	assert.Equal(t, []control.ButtonKind{control.ButtonLength, control.ButtonArea, control.ButtonClear}, pressed)
}

func TestPanelUnitSelection(t *testing.T) {
	p, ctl := newPanel(t, control.Options{})
	_, err := ctl.Draw().Add(orb.LineString{{0, 0}, {0.01, 0}})
	require.NoError(t, err)

	p.lengthSelect.SetSelected("m")
	assert.Equal(t, units.Meters, ctl.Selection().Length)
	assert.Regexp(t, `^Segment 1: 1,111\.9\d m$`, p.labels.Text)

	p.areaSelect.SetSelected("ha")
	assert.Equal(t, units.Hectares, ctl.Selection().Area)
}

func TestPanelShowLabels(t *testing.T) {
	p, _ := newPanel(t, control.Options{})

	p.ShowLabels(measurement.Collection{
		Labels: []measurement.Label{
			{Measurement: "10.00 m", Segment: 0},
			{Measurement: "2.00 ha", Segment: -1},
		},
		Skipped: []measurement.Skipped{{Index: 2, Err: errors.New("degenerate")}},
	})

	assert.Equal(t, "Segment 1: 10.00 m\nArea: 2.00 ha", p.labels.Text)
	assert.Equal(t, "1 shape(s) could not be measured", p.summary.Text)
	assert.True(t, p.summary.Visible())
}

func TestPanelReportsErrors(t *testing.T) {
	p, ctl := newPanel(t, control.Options{})
	require.NoError(t, ctl.Detach())

	var got error
	p.SetOnError(func(err error) { got = err })

	test.Tap(p.buttons[control.ButtonLength])
	assert.ErrorIs(t, got, control.ErrDetached)
}
