package encounter

import (
	"strings"

	"encounter-tracker/internal/rules"
)

// HasWildTrigger reports whether any line contains one of the trigger
// phrases. Matching is case-insensitive; empty lines are skipped.
func HasWildTrigger(lines []string, r rules.Rules) bool {
	for _, line := range lines {
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, trigger := range r.Triggers {
			if strings.Contains(lower, trigger) {
				return true
			}
		}
	}
	return false
}

// ExtractSpecies collects species names from the battle header lines.
// A token is a species name when the next token starts with a level
// marker ("PIDGEY Lv. 5" and "PIDGEY Lv.5" both match) and the token
// itself is longer than one character, which filters out OCR specks.
// Duplicates are kept: a double battle yields the species twice.
func ExtractSpecies(lines []string, r rules.Rules) []string {
	var species []string
	for _, line := range lines {
		if line == "" {
			continue
		}
		tokens := strings.Fields(strings.ToLower(line))
		for i := 0; i+1 < len(tokens); i++ {
			if len(tokens[i]) > 1 && hasMarkerPrefix(tokens[i+1], r.LevelMarkers) {
				species = append(species, tokens[i])
			}
		}
	}
	return species
}

func hasMarkerPrefix(token string, markers []string) bool {
	for _, m := range markers {
		if strings.HasPrefix(token, m) {
			return true
		}
	}
	return false
}
