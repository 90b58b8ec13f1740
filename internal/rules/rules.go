// Package rules defines the lexical patterns used to recognize wild
// encounters in OCR output. The built-in defaults match the game's
// English, Spanish/Italian and French clients; a rules.yaml file can
// extend them for other locales.
package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules holds the trigger phrases and level-marker tokens the
// classifier matches against. All entries are lower-cased.
type Rules struct {
	// Triggers are substrings whose presence in any battle-text line
	// signals a wild encounter ("a wild PIDGEY appeared!").
	Triggers []string `yaml:"triggers"`

	// LevelMarkers are the abbreviations that follow a species name in
	// the battle header ("PIDGEY Lv. 5"). A token adjacent to one of
	// these is treated as a species name.
	LevelMarkers []string `yaml:"level_markers"`
}

// Default returns the built-in rule set.
func Default() Rules {
	return Rules{
		Triggers:     []string{"a wild"},
		LevelMarkers: []string{"lv.", "nv.", "niv."},
	}
}

// Load reads a YAML rules file. A missing file is not an error: the
// defaults apply. Entries are merged with (not replacing) the defaults
// so a partial override file cannot disable detection entirely.
func Load(path string) (Rules, error) {
	base := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return base, fmt.Errorf("failed to read rules file: %w", err)
	}

	var override Rules
	if err := yaml.Unmarshal(data, &override); err != nil {
		return base, fmt.Errorf("failed to parse rules file: %w", err)
	}

	base.Triggers = mergeLower(base.Triggers, override.Triggers)
	base.LevelMarkers = mergeLower(base.LevelMarkers, override.LevelMarkers)
	return base, nil
}

func mergeLower(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, s := range base {
		seen[s] = true
	}
	for _, s := range extra {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		base = append(base, s)
		seen[s] = true
	}
	return base
}
