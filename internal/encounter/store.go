package encounter

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"encounter-tracker/internal/logging"
)

// ErrStateCorrupt indicates the state file parses under neither the
// envelope nor the legacy schema. Callers should fall back to a fresh
// state rather than abort.
var ErrStateCorrupt = errors.New("encounter: state file corrupt")

// savedState is the persisted envelope. Crashed records whether the
// session that wrote the file was still running: every mid-session save
// writes true and only a clean shutdown save writes false, so finding
// true on load means the previous session died uncleanly.
type savedState struct {
	State   State `json:"state"`
	Crashed bool  `json:"crashed"`
}

// Store persists the statistics aggregate as a single JSON document.
type Store struct {
	path string
	log  *logging.Logger
}

// NewStore creates a store writing to the given file path.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		log:  logging.NewLogger("store"),
	}
}

// Path returns the state file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the state file. It understands both the current envelope
// schema and the legacy bare-state schema; legacy files are rewritten
// in envelope form once. A file matching neither fails with
// ErrStateCorrupt. A missing file fails with a wrapped fs error the
// caller can test with os.IsNotExist.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	// Key probe decides which schema the document uses; Go's JSON
	// decoder would otherwise happily produce a zero envelope from a
	// legacy file.
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
	}

	if _, ok := doc["state"]; ok {
		var envelope savedState
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
		}
		if envelope.Crashed {
			s.log.Warn("Last session did not exit cleanly, restoring progress")
		}
		st := envelope.State
		st.normalize()
		return &st, nil
	}

	if _, ok := doc["encounters"]; ok {
		var legacy State
		if err := json.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStateCorrupt, err)
		}
		legacy.normalize()
		s.log.Warn("Detected old state format, rewriting in current format")
		if err := s.Save(&legacy, false); err != nil {
			s.log.Error("Failed to migrate state file", err)
		}
		return &legacy, nil
	}

	return nil, fmt.Errorf("%w: unrecognized document shape", ErrStateCorrupt)
}

// Save atomically replaces the state file with the envelope form of
// the given state. Write-then-rename keeps readers from ever seeing a
// partial document.
func (s *Store) Save(st *State, crashed bool) error {
	data, err := json.Marshal(savedState{State: *st, Crashed: crashed})
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
