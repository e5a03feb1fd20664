// Package config loads gomeasure settings from YAML or TOML files.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/jeandeaual/go-locale"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/pkg/draw"
	"github.com/philipparndt/gomeasure/pkg/units"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// DefaultAddr is the HTTP bridge listen address
const DefaultAddr = ":8080"

// File is the on-disk configuration
type File struct {
	Locale                 string       `yaml:"locale" toml:"locale"`
	Title                  string       `yaml:"title" toml:"title"`
	UnitsGroupingSeparator string       `yaml:"unitsGroupingSeparator" toml:"unitsGroupingSeparator"`
	DebounceWindow         string       `yaml:"debounceWindow" toml:"debounceWindow"`
	LengthUnit             string       `yaml:"lengthUnit" toml:"lengthUnit"`
	AreaUnit               string       `yaml:"areaUnit" toml:"areaUnit"`
	Style                  draw.Style   `yaml:"style" toml:"style"`
	Lang                   control.Lang `yaml:"lang" toml:"lang"`
	Server                 Server       `yaml:"server" toml:"server"`
	Log                    Log          `yaml:"log" toml:"log"`
}

// Server configures the HTTP bridge
type Server struct {
	Addr string `yaml:"addr" toml:"addr"`
}

// Log configures the logger
type Log struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Default returns the built-in configuration
func Default() File {
	return File{
		LengthUnit: string(units.DefaultLength),
		AreaUnit:   string(units.DefaultArea),
		Server:     Server{Addr: DefaultAddr},
		Log:        Log{Level: "info", Format: "text"},
	}
}

// Load reads a configuration file. The format is chosen by extension:
// .yaml, .yml or .toml. Values missing from the file keep their defaults.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	cfg, err := Parse(data, format)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a configuration in the given format (yaml, yml or toml)
func Parse(data []byte, format string) (File, error) {
	cfg := Default()

	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return File{}, fmt.Errorf("invalid YAML: %w", err)
		}
	case "toml":
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return File{}, fmt.Errorf("invalid TOML: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return File{}, fmt.Errorf("unknown TOML keys: %v", undecoded)
		}
	default:
		return File{}, fmt.Errorf("unsupported config format %q", format)
	}

	return cfg, nil
}

// Options converts the file into control options after validating units,
// locale and debounce window
func (f File) Options() (control.Options, error) {
	length, err := units.Parse(f.LengthUnit)
	if err != nil {
		return control.Options{}, fmt.Errorf("lengthUnit: %w", err)
	}
	area, err := units.Parse(f.AreaUnit)
	if err != nil {
		return control.Options{}, fmt.Errorf("areaUnit: %w", err)
	}
	sel := units.Selection{Length: length, Area: area}
	if err := sel.Validate(); err != nil {
		return control.Options{}, err
	}

	if f.Locale != "" {
		if _, err := language.Parse(f.Locale); err != nil {
			return control.Options{}, fmt.Errorf("locale %q: %w", f.Locale, err)
		}
	}

	var window time.Duration
	if f.DebounceWindow != "" {
		window, err = time.ParseDuration(f.DebounceWindow)
		if err != nil {
			return control.Options{}, fmt.Errorf("debounceWindow: %w", err)
		}
		if window <= 0 {
			return control.Options{}, fmt.Errorf("debounceWindow must be positive, got %s", window)
		}
	}

	return control.Options{
		Title:                  f.Title,
		Style:                  f.Style,
		Lang:                   f.Lang,
		UnitsGroupingSeparator: f.UnitsGroupingSeparator,
		Locale:                 f.Locale,
		DebounceWindow:         window,
		DefaultLengthUnit:      length,
		DefaultAreaUnit:        area,
	}, nil
}

// DetectLocale returns the operating system locale as a BCP 47 tag, or
// "en" when it cannot be determined
func DetectLocale() string {
	loc, err := locale.GetLocale()
	if err != nil || loc == "" {
		return "en"
	}
	tag, err := language.Parse(strings.ReplaceAll(loc, "_", "-"))
	if err != nil {
		return "en"
	}
	return tag.String()
}
