package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/philipparndt/gomeasure/internal/app"
	"github.com/philipparndt/gomeasure/internal/config"
	"github.com/philipparndt/gomeasure/internal/control"
	"github.com/philipparndt/gomeasure/internal/logging"
	"github.com/philipparndt/gomeasure/pkg/units"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

var (
	configPath string
	localeFlag string
	lengthFlag string
	areaFlag   string
	sepFlag    string
	logLevel   string
	logFormat  string

	settings config.File
	logger   *slog.Logger
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Configuration file (.yaml, .yml or .toml)")
	flags.StringVar(&localeFlag, "locale", "", "Locale for number formatting and button titles (default: system locale)")
	flags.StringVar(&lengthFlag, "length-unit", "", "Length unit: ft, m, km or mi")
	flags.StringVar(&areaFlag, "area-unit", "", "Area unit: ft2, m2, km2, mi2, ac or ha")
	flags.StringVar(&sepFlag, "separator", "", "Digit grouping separator overriding the locale")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json")
}

// loadSettings reads the configuration file and applies flag overrides
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("locale") {
		cfg.Locale = localeFlag
	}
	if cfg.Locale == "" {
		cfg.Locale = config.DetectLocale()
	}
	if flags.Changed("length-unit") {
		cfg.LengthUnit = lengthFlag
	}
	if flags.Changed("area-unit") {
		cfg.AreaUnit = areaFlag
	}
	if flags.Changed("separator") {
		cfg.UnitsGroupingSeparator = sepFlag
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}

	l, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	if _, err := cfg.Options(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}

	settings = cfg
	logger = l
	return nil
}

// openSession creates a session and loads the drawing in file
func openSession(file string, configure func(*control.Options)) (*app.App, error) {
	a, err := app.New(settings, logger, configure)
	if err != nil {
		return nil, err
	}
	if file == "" {
		return a, nil
	}
	if err := a.Load(file); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// formatter returns the number formatter of the current settings
func formatter() *units.Formatter {
	tag, err := language.Parse(settings.Locale)
	if err != nil {
		tag = language.English
	}
	return units.NewFormatter(tag, settings.UnitsGroupingSeparator)
}

// formatLength renders meters in the selected length unit
func formatLength(f *units.Formatter, meters float64) string {
	unit := units.Unit(settings.LengthUnit)
	s, err := f.Convert(meters, units.Meters, unit)
	if err != nil {
		return fmt.Sprintf("%.2f m", meters)
	}
	return s + " " + unit.Label()
}

// formatArea renders square meters in the selected area unit
func formatArea(f *units.Formatter, squareMeters float64) string {
	unit := units.Unit(settings.AreaUnit)
	s, err := f.Convert(squareMeters, units.SquareMeters, unit)
	if err != nil {
		return fmt.Sprintf("%.2f m2", squareMeters)
	}
	return s + " " + unit.Label()
}
