package encounter

import (
	"encounter-tracker/internal/logging"
	"encounter-tracker/internal/rules"
)

// SaveThreshold is how many completed encounters accumulate before the
// machine persists the state on its own.
const SaveThreshold = 5

// Recorder receives each completed encounter for the history log.
// Recording is best-effort: a failing recorder never aborts a cycle.
type Recorder interface {
	RecordEncounter(species []string) error
}

// Machine advances the debounce state machine one detection cycle at a
// time. It is the only mutator of State; the caller holds the state
// lock across Step.
type Machine struct {
	store         *Store
	recorder      Recorder
	rules         rules.Rules
	saveThreshold uint32
	log           *logging.Logger
}

// NewMachine creates a state machine backed by the given store.
func NewMachine(store *Store, r rules.Rules) *Machine {
	return &Machine{
		store:         store,
		rules:         r,
		saveThreshold: SaveThreshold,
		log:           logging.NewLogger("machine"),
	}
}

// WithRecorder attaches a history recorder.
func (m *Machine) WithRecorder(rec Recorder) *Machine {
	m.recorder = rec
	return m
}

// Step consumes one cycle of classifier input and mutates the state.
// bottomLines is the OCR output of the battle-text region, topLines of
// the header region; either may be nil when that region was not read
// this cycle. Returns true exactly on the cycle where a new encounter
// was tallied.
func (m *Machine) Step(st *State, bottomLines, topLines []string) bool {
	if st.Phase() == PhaseIdle {
		if HasWildTrigger(bottomLines, m.rules) {
			st.setPhase(PhaseDetected)
			m.log.Debug("Wild trigger detected")
		}
	}

	switch st.Phase() {
	case PhaseDetected:
		species := ExtractSpecies(topLines, m.rules)
		if len(species) == 0 {
			// Species line not visible yet; try again next cycle.
			return false
		}
		st.Encounters += uint32(len(species))
		st.LastEncounter = species
		for _, sp := range species {
			st.MonStats[sp]++
		}
		st.setPhase(PhaseCounted)
		st.UnsavedEncounters++
		m.log.Infof("Encounter counted: %v (total %d)", species, st.Encounters)

		if m.recorder != nil {
			if err := m.recorder.RecordEncounter(species); err != nil {
				m.log.Error("Failed to record encounter history", err)
			}
		}

		if st.UnsavedEncounters >= m.saveThreshold {
			// crashed stays true mid-session; only a clean shutdown
			// save clears it.
			if err := m.store.Save(st, true); err != nil {
				m.log.Error("Periodic save failed, will retry after next encounter", err)
			} else {
				st.UnsavedEncounters = 0
			}
		}
		return true

	case PhaseCounted:
		if len(ExtractSpecies(topLines, m.rules)) == 0 {
			// Battle text gone: encounter over, re-arm the debounce.
			st.setPhase(PhaseIdle)
			st.LastEncounter = []string{}
			m.log.Debug("Encounter ended, back to idle")
		}
	}
	return false
}
