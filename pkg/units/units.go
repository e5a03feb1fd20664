package units

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrUnknownUnit is returned for a unit symbol outside the recognized set
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrIncompatibleUnits is returned when converting between a length and an area
	ErrIncompatibleUnits = errors.New("incompatible units")
)

// Kind distinguishes length units from area units
type Kind int

const (
	KindLength Kind = iota
	KindArea
)

// String returns "length" or "area"
func (k Kind) String() string {
	switch k {
	case KindLength:
		return "length"
	case KindArea:
		return "area"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Unit is a measurement unit symbol
type Unit string

const (
	Feet       Unit = "ft"
	Meters     Unit = "m"
	Kilometers Unit = "km"
	Miles      Unit = "mi"

	SquareFeet       Unit = "ft2"
	SquareMeters     Unit = "m2"
	SquareKilometers Unit = "km2"
	SquareMiles      Unit = "mi2"
	Acres            Unit = "ac"
	Hectares         Unit = "ha"
)

// Defaults used until the user picks another unit.
const (
	DefaultLength = Feet
	DefaultArea   = SquareFeet
)

// LengthUnits lists the recognized length units in selector order
var LengthUnits = []Unit{Feet, Meters, Kilometers, Miles}

// AreaUnits lists the recognized area units in selector order
var AreaUnits = []Unit{SquareFeet, SquareMeters, SquareKilometers, SquareMiles, Acres, Hectares}

// factors holds the size of one unit expressed in meters (length) or square meters (area)
var factors = map[Unit]float64{
	Feet:       0.3048,
	Meters:     1,
	Kilometers: 1000,
	Miles:      1609.344,

	SquareFeet:       0.09290304,
	SquareMeters:     1,
	SquareKilometers: 1e6,
	SquareMiles:      2589988.110336,
	Acres:            4046.8564224,
	Hectares:         10000,
}

// labels are the display strings used by the unit selectors
var labels = map[Unit]string{
	SquareFeet:       "ft²",
	SquareMeters:     "m²",
	SquareKilometers: "km²",
	SquareMiles:      "mi²",
}

// Parse validates a unit symbol
func Parse(s string) (Unit, error) {
	u := Unit(strings.TrimSpace(s))
	if _, ok := factors[u]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
	return u, nil
}

// Valid reports whether u is a recognized unit
func (u Unit) Valid() bool {
	_, ok := factors[u]
	return ok
}

// Kind returns whether u measures length or area
func (u Unit) Kind() Kind {
	if lo.Contains(AreaUnits, u) {
		return KindArea
	}
	return KindLength
}

// Label returns the human readable symbol, e.g. "ft²" for ft2
func (u Unit) Label() string {
	if l, ok := labels[u]; ok {
		return l
	}
	return string(u)
}

// String returns the unit symbol
func (u Unit) String() string {
	return string(u)
}

// Convert converts value from one unit to another of the same kind
func Convert(value float64, from, to Unit) (float64, error) {
	ff, ok := factors[from]
	if !ok {
		return 0, fmt.Errorf("convert from %q: %w", from, ErrUnknownUnit)
	}
	tf, ok := factors[to]
	if !ok {
		return 0, fmt.Errorf("convert to %q: %w", to, ErrUnknownUnit)
	}
	if from.Kind() != to.Kind() {
		return 0, fmt.Errorf("convert %s to %s: %w", from, to, ErrIncompatibleUnits)
	}
	if from == to {
		return value, nil
	}
	return value * ff / tf, nil
}

// Selection holds the length and area unit currently chosen by the user
type Selection struct {
	Length Unit `json:"length"`
	Area   Unit `json:"area"`
}

// DefaultSelection returns the selection a new control starts with
func DefaultSelection() Selection {
	return Selection{Length: DefaultLength, Area: DefaultArea}
}

// Validate checks that both units are recognized and of the right kind
func (s Selection) Validate() error {
	if !lo.Contains(LengthUnits, s.Length) {
		return fmt.Errorf("length unit %q: %w", s.Length, ErrUnknownUnit)
	}
	if !lo.Contains(AreaUnits, s.Area) {
		return fmt.Errorf("area unit %q: %w", s.Area, ErrUnknownUnit)
	}
	return nil
}
