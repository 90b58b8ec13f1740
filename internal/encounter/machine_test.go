package encounter

import (
	"path/filepath"
	"reflect"
	"testing"

	"encounter-tracker/internal/rules"
)

func newTestMachine(t *testing.T) (*Machine, *State) {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	return NewMachine(store, rules.Default()), NewState()
}

var (
	triggerLines = []string{"A wild PIDGEY appeared!"}
	speciesLines = []string{"PIDGEY Lv. 5"}
)

func TestMachineFullEncounterSequence(t *testing.T) {
	m, st := newTestMachine(t)

	// Cycle 1: nothing on screen.
	if m.Step(st, []string{"walking around"}, nil) {
		t.Error("Cycle 1 should not count")
	}
	if st.Phase() != PhaseIdle {
		t.Errorf("Cycle 1 phase = %v, want idle", st.Phase())
	}

	// Cycle 2: trigger visible, species line not yet readable.
	if m.Step(st, triggerLines, nil) {
		t.Error("Cycle 2 should not count without species")
	}
	if !st.InEncounter || !st.IsNotCounted {
		t.Errorf("Cycle 2: expected detected phase, got in=%v not_counted=%v",
			st.InEncounter, st.IsNotCounted)
	}
	if st.Encounters != 0 {
		t.Errorf("Cycle 2: encounters = %d, want 0", st.Encounters)
	}

	// Cycle 3: species line appears; this is the counting cycle.
	if !m.Step(st, nil, speciesLines) {
		t.Error("Cycle 3 should signal a new encounter")
	}
	if st.Encounters != 1 {
		t.Errorf("Cycle 3: encounters = %d, want 1", st.Encounters)
	}
	if st.IsNotCounted {
		t.Error("Cycle 3: is_not_counted should be false after counting")
	}
	if !reflect.DeepEqual(st.LastEncounter, []string{"pidgey"}) {
		t.Errorf("Cycle 3: last_encounter = %v", st.LastEncounter)
	}
	if st.MonStats["pidgey"] != 1 {
		t.Errorf("Cycle 3: mon_stats = %v", st.MonStats)
	}

	// Cycle 4: same encounter still on screen; no double counting.
	if m.Step(st, nil, speciesLines) {
		t.Error("Cycle 4 should not count the same encounter again")
	}
	if st.Encounters != 1 || st.MonStats["pidgey"] != 1 {
		t.Errorf("Cycle 4: mutation happened: encounters=%d stats=%v",
			st.Encounters, st.MonStats)
	}

	// Cycle 5: battle over, text gone; debounce re-arms.
	if m.Step(st, nil, nil) {
		t.Error("Cycle 5 should not count")
	}
	if st.InEncounter || !st.IsNotCounted {
		t.Errorf("Cycle 5: expected idle, got in=%v not_counted=%v",
			st.InEncounter, st.IsNotCounted)
	}
	if len(st.LastEncounter) != 0 {
		t.Errorf("Cycle 5: last_encounter should be cleared, got %v", st.LastEncounter)
	}
}

func TestMachineTriggerAndSpeciesSameCycle(t *testing.T) {
	m, st := newTestMachine(t)

	// The species line can already be stable on the first cycle the
	// trigger is seen; counting must happen in that single cycle.
	if !m.Step(st, triggerLines, speciesLines) {
		t.Error("Expected count on the cycle that sees trigger and species together")
	}
	if st.Encounters != 1 {
		t.Errorf("encounters = %d, want 1", st.Encounters)
	}
}

func TestMachineDoubleBattleCountsBoth(t *testing.T) {
	m, st := newTestMachine(t)

	m.Step(st, triggerLines, nil)
	counted := m.Step(st, nil, []string{"ZUBAT Lv. 9 ZUBAT Lv. 10"})
	if !counted {
		t.Fatal("Expected encounter to be counted")
	}
	if st.Encounters != 2 {
		t.Errorf("encounters = %d, want 2 for a double battle", st.Encounters)
	}
	if st.MonStats["zubat"] != 2 {
		t.Errorf("mon_stats[zubat] = %d, want 2", st.MonStats["zubat"])
	}
}

func runOneEncounter(m *Machine, st *State, species []string) {
	m.Step(st, triggerLines, nil)
	m.Step(st, nil, species)
	m.Step(st, nil, nil)
}

func TestMachineSaveCadence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)
	m := NewMachine(store, rules.Default())
	st := NewState()

	// Four encounters: below threshold, no file yet.
	for i := 0; i < 4; i++ {
		runOneEncounter(m, st, speciesLines)
	}
	if st.UnsavedEncounters != 4 {
		t.Errorf("unsaved_encounters = %d, want 4", st.UnsavedEncounters)
	}
	if _, err := store.Load(); err == nil {
		t.Error("No save should have happened before the threshold")
	}

	// Fifth encounter crosses the threshold: exactly one save, counter reset.
	runOneEncounter(m, st, speciesLines)
	if st.UnsavedEncounters != 0 {
		t.Errorf("unsaved_encounters = %d after threshold save, want 0", st.UnsavedEncounters)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("Expected state file after threshold save: %v", err)
	}
	if loaded.Encounters != 5 {
		t.Errorf("Persisted encounters = %d, want 5", loaded.Encounters)
	}
}

func TestMachineStatsConsistency(t *testing.T) {
	m, st := newTestMachine(t)

	// A mix of single and double encounters with re-detection noise in
	// between; sum(mon_stats) must always equal total species appended.
	encounters := [][]string{
		{"PIDGEY Lv. 5"},
		{"RATTATA Lv. 3"},
		{"ZUBAT Lv. 9 ZUBAT Lv. 10"},
		{"PIDGEY Lv. 7"},
		{"short x Niv.2", "ODDISH Niv. 4"},
	}

	var appended uint32
	for _, lines := range encounters {
		m.Step(st, triggerLines, nil)
		m.Step(st, nil, lines)
		// Re-detection frames of the same encounter.
		m.Step(st, nil, lines)
		m.Step(st, nil, lines)
		m.Step(st, nil, nil)
		appended += uint32(len(ExtractSpecies(lines, rules.Default())))
	}

	var sum uint32
	for _, v := range st.MonStats {
		sum += v
	}
	if sum != appended {
		t.Errorf("sum(mon_stats) = %d, want %d", sum, appended)
	}
	if st.Encounters != appended {
		t.Errorf("encounters = %d, want %d", st.Encounters, appended)
	}
}

type fakeRecorder struct {
	recorded [][]string
	err      error
}

func (f *fakeRecorder) RecordEncounter(species []string) error {
	f.recorded = append(f.recorded, species)
	return f.err
}

func TestMachineRecorder(t *testing.T) {
	m, st := newTestMachine(t)
	rec := &fakeRecorder{}
	m.WithRecorder(rec)

	runOneEncounter(m, st, speciesLines)

	if len(rec.recorded) != 1 || !reflect.DeepEqual(rec.recorded[0], []string{"pidgey"}) {
		t.Errorf("Recorder got %v", rec.recorded)
	}
}

func TestMachineRecorderFailureDoesNotAbort(t *testing.T) {
	m, st := newTestMachine(t)
	m.WithRecorder(&fakeRecorder{err: ErrStateCorrupt})

	m.Step(st, triggerLines, nil)
	if !m.Step(st, nil, speciesLines) {
		t.Error("Counting must proceed even when the recorder fails")
	}
	if st.Encounters != 1 {
		t.Errorf("encounters = %d, want 1", st.Encounters)
	}
}
