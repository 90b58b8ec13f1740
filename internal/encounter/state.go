// Package encounter implements the detection core: the accumulated
// statistics aggregate, the lexical classifier over OCR lines, the
// per-cycle debounce state machine and the durable state store.
package encounter

// Phase is the encounter debounce phase. It is the in-memory view of
// the (in_encounter, is_not_counted) boolean pair kept in the persisted
// document for compatibility with older state files.
type Phase int

const (
	// PhaseIdle: no encounter on screen.
	PhaseIdle Phase = iota
	// PhaseDetected: the trigger phrase was seen but the species line
	// has not been read yet, so nothing has been counted.
	PhaseDetected
	// PhaseCounted: the current encounter has been tallied; waiting for
	// its text to disappear before re-arming.
	PhaseCounted
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseDetected:
		return "detected"
	case PhaseCounted:
		return "counted"
	default:
		return "unknown"
	}
}

// State is the durable statistics aggregate. It is owned by the
// tracker's mutex; the machine mutates it one cycle at a time.
type State struct {
	// Encounters is the cumulative count of creatures across all
	// completed encounters. Double battles add two.
	Encounters uint32 `json:"encounters"`

	// LastEncounter holds the species of the encounter currently being
	// debounced; cleared when the encounter leaves the screen.
	LastEncounter []string `json:"last_encounter"`

	// MonStats maps lower-cased species name to cumulative count.
	MonStats map[string]uint32 `json:"mon_stats"`

	// Debug makes the region extractor dump crops to disk.
	Debug bool `json:"debug"`

	InEncounter  bool `json:"in_encounter"`
	IsNotCounted bool `json:"is_not_counted"`

	// UnsavedEncounters counts completed encounters since the last
	// save; reset to zero on every successful save.
	UnsavedEncounters uint32 `json:"unsaved_encounters"`
}

// NewState returns a fresh, empty state.
func NewState() *State {
	return &State{
		LastEncounter: []string{},
		MonStats:      make(map[string]uint32),
		IsNotCounted:  true,
	}
}

// Phase derives the debounce phase from the persisted boolean pair.
func (s *State) Phase() Phase {
	switch {
	case !s.InEncounter:
		return PhaseIdle
	case s.IsNotCounted:
		return PhaseDetected
	default:
		return PhaseCounted
	}
}

// setPhase encodes the phase back into the boolean pair.
func (s *State) setPhase(p Phase) {
	switch p {
	case PhaseIdle:
		s.InEncounter = false
		s.IsNotCounted = true
	case PhaseDetected:
		s.InEncounter = true
		s.IsNotCounted = true
	case PhaseCounted:
		s.InEncounter = true
		s.IsNotCounted = false
	}
}

// normalize repairs nil collections after a JSON load.
func (s *State) normalize() {
	if s.LastEncounter == nil {
		s.LastEncounter = []string{}
	}
	if s.MonStats == nil {
		s.MonStats = make(map[string]uint32)
	}
	// An empty file from before the debounce fields existed must not
	// start mid-encounter with stale flags.
	if !s.InEncounter {
		s.IsNotCounted = true
	}
}

// Clone returns a deep copy, used for snapshots handed to the GUI.
func (s *State) Clone() State {
	out := *s
	out.LastEncounter = append([]string(nil), s.LastEncounter...)
	out.MonStats = make(map[string]uint32, len(s.MonStats))
	for k, v := range s.MonStats {
		out.MonStats[k] = v
	}
	return out
}
