// Package config loads tracker settings from Settings.ini.
package config

import (
	"fmt"
	"image"
	"strings"

	"gopkg.in/ini.v1"

	"encounter-tracker/internal/capture"
)

// Config holds all tracker settings.
type Config struct {
	// Capture source: window title candidates tried first, then the
	// display index plus an optional rectangle relative to that display
	// (zero rect captures the whole display).
	WindowTitles []string
	Display      int
	CaptureRect  image.Rectangle

	// File locations.
	StatePath   string
	HistoryPath string
	RulesPath   string

	// OCR language passed to Tesseract.
	OCRLanguage string

	// Adaptive polling delays, in milliseconds. Lower idle delay means
	// lower detection latency and more CPU; the encounter delay applies
	// after a count, when there is no urgency.
	IdleDelayMs      int
	EncounterDelayMs int
	SearchDelayMs    int

	// Debug dumps region crops to PNG files each cycle.
	Debug bool
}

// NewDefaultConfig returns the default configuration.
func NewDefaultConfig() *Config {
	return &Config{
		WindowTitles:     capture.DefaultWindowTitles(),
		Display:          0,
		StatePath:        "state.json",
		HistoryPath:      "history.db",
		RulesPath:        "rules.yaml",
		OCRLanguage:      "eng",
		IdleDelayMs:      10,
		EncounterDelayMs: 100,
		SearchDelayMs:    50,
	}
}

// LoadFromINI loads configuration from a Settings.ini file. Missing
// keys fall back to the defaults.
func LoadFromINI(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	section := cfg.Section("UserSettings")
	config := NewDefaultConfig()

	if titles := section.Key("windowTitles").String(); titles != "" {
		config.WindowTitles = config.WindowTitles[:0]
		for _, title := range strings.Split(titles, ",") {
			if title = strings.TrimSpace(title); title != "" {
				config.WindowTitles = append(config.WindowTitles, title)
			}
		}
	}

	config.Display = section.Key("SelectedDisplayIndex").MustInt(0)

	x := section.Key("captureX").MustInt(0)
	y := section.Key("captureY").MustInt(0)
	w := section.Key("captureWidth").MustInt(0)
	h := section.Key("captureHeight").MustInt(0)
	if w > 0 && h > 0 {
		config.CaptureRect = image.Rect(x, y, x+w, y+h)
	}

	config.StatePath = section.Key("statePath").MustString("state.json")
	config.HistoryPath = section.Key("historyPath").MustString("history.db")
	config.RulesPath = section.Key("rulesPath").MustString("rules.yaml")
	config.OCRLanguage = section.Key("ocrLanguage").MustString("eng")

	config.IdleDelayMs = section.Key("pollDelayIdleMs").MustInt(10)
	config.EncounterDelayMs = section.Key("pollDelayEncounterMs").MustInt(100)
	config.SearchDelayMs = section.Key("pollDelaySearchMs").MustInt(50)

	config.Debug = section.Key("debug").MustBool(false)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Display < 0 {
		return fmt.Errorf("display index must not be negative, got %d", c.Display)
	}
	if c.IdleDelayMs <= 0 || c.EncounterDelayMs <= 0 || c.SearchDelayMs <= 0 {
		return fmt.Errorf("poll delays must be positive: idle=%d encounter=%d search=%d",
			c.IdleDelayMs, c.EncounterDelayMs, c.SearchDelayMs)
	}
	if c.StatePath == "" {
		return fmt.Errorf("state path must not be empty")
	}
	return nil
}
