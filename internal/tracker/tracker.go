// Package tracker drives the detection pipeline: it polls the game
// window while active, runs capture, OCR and the encounter state
// machine each cycle, and publishes snapshots to the GUI.
package tracker

import (
	"sync"
	"time"

	"encounter-tracker/internal/capture"
	"encounter-tracker/internal/encounter"
	"encounter-tracker/internal/events"
	"encounter-tracker/internal/logging"
	"encounter-tracker/internal/ocr"
	"encounter-tracker/internal/rules"
	"encounter-tracker/internal/vision"
)

// Delays are the adaptive polling intervals. Idle applies while waiting
// for a trigger or an unread species line, Encounter after a count was
// just made, Search while the game window cannot be found.
type Delays struct {
	Idle      time.Duration
	Encounter time.Duration
	Search    time.Duration
}

// DefaultDelays matches the tuning the tracker shipped with.
func DefaultDelays() Delays {
	return Delays{
		Idle:      10 * time.Millisecond,
		Encounter: 100 * time.Millisecond,
		Search:    50 * time.Millisecond,
	}
}

// Tracker owns the statistics aggregate and the polling goroutine.
// All state access goes through its mutex: the polling goroutine takes
// it once per cycle for the mutation step only (capture and OCR run
// outside the lock), the GUI takes it for snapshots and resets.
type Tracker struct {
	mu    sync.Mutex
	state *encounter.State

	machine    *encounter.Machine
	store      *encounter.Store
	finder     capture.Finder
	extractor  *vision.Extractor
	recognizer ocr.LineRecognizer
	rules      rules.Rules
	bus        *events.Bus
	run        *RunFlag
	delays     Delays

	wg  sync.WaitGroup
	log *logging.Logger
}

// New wires up a tracker around an already-loaded state.
func New(
	state *encounter.State,
	store *encounter.Store,
	machine *encounter.Machine,
	finder capture.Finder,
	extractor *vision.Extractor,
	recognizer ocr.LineRecognizer,
	r rules.Rules,
	bus *events.Bus,
	delays Delays,
) *Tracker {
	return &Tracker{
		state:      state,
		store:      store,
		machine:    machine,
		finder:     finder,
		extractor:  extractor,
		recognizer: recognizer,
		rules:      r,
		bus:        bus,
		run:        NewRunFlag(),
		delays:     delays,
		log:        logging.NewLogger("tracker"),
	}
}

// RunState returns the current lifecycle state.
func (t *Tracker) RunState() RunState {
	return t.run.Get()
}

// Snapshot returns a deep copy of the current statistics for display.
func (t *Tracker) Snapshot() encounter.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state.Clone()
}

// Start begins polling. Valid from idle or paused.
func (t *Tracker) Start() error {
	if err := t.run.Transition(StateActive); err != nil {
		return err
	}
	t.publishRunState()

	t.wg.Add(1)
	go t.loop()
	return nil
}

// Pause stops polling, joins the loop and saves.
func (t *Tracker) Pause() error {
	if err := t.run.Transition(StatePaused); err != nil {
		return err
	}
	t.wg.Wait()
	t.publishRunState()
	return t.SaveNow(false)
}

// Reset stops polling if needed and replaces the statistics wholesale
// with a fresh state, persisting the reset.
func (t *Tracker) Reset() error {
	if t.run.Get() != StateIdle {
		if err := t.run.Transition(StateIdle); err != nil {
			return err
		}
		t.wg.Wait()
		t.publishRunState()
	}

	t.mu.Lock()
	*t.state = *encounter.NewState()
	t.mu.Unlock()

	t.log.Info("Statistics reset")
	return t.SaveNow(false)
}

// Quit stops polling permanently and saves. The run state cannot leave
// quitting afterwards.
func (t *Tracker) Quit() error {
	if err := t.run.Transition(StateQuitting); err != nil {
		return err
	}
	t.wg.Wait()
	t.publishRunState()
	return t.SaveNow(false)
}

// SaveNow persists the current state synchronously. crashed=true marks
// the session as still open (mid-session checkpoint); false marks a
// clean shutdown.
func (t *Tracker) SaveNow(crashed bool) error {
	t.mu.Lock()
	err := t.store.Save(t.state, crashed)
	t.mu.Unlock()

	if err != nil {
		t.log.Error("Failed to save state", err)
		return err
	}
	t.bus.Publish(events.Event{Type: events.EventStateSaved, Source: "tracker"})
	return nil
}

func (t *Tracker) publishRunState() {
	t.bus.Publish(events.Event{
		Type:     events.EventRunStateChanged,
		Source:   "tracker",
		RunState: t.run.Get().String(),
	})
}

func (t *Tracker) loop() {
	defer t.wg.Done()
	defer func() {
		// A panicking cycle must not lose progress: checkpoint with
		// the session still marked open, then drop out of active so
		// the GUI sees the stop and Start works again.
		if r := recover(); r != nil {
			t.log.Errorf("Polling loop panicked: %v", r)
			t.mu.Lock()
			saveErr := t.store.Save(t.state, true)
			t.mu.Unlock()
			if saveErr != nil {
				t.log.Error("Failed to save state after panic", saveErr)
			}
			if t.run.Get() == StateActive {
				if err := t.run.Transition(StateIdle); err == nil {
					t.publishRunState()
				}
			}
		}
	}()

	t.log.Info("Polling loop started")
	for t.run.Get() == StateActive {
		counted, err := t.cycle()

		var delay time.Duration
		switch {
		case err != nil:
			// Recoverable: window gone or OCR hiccup. Skip the cycle,
			// state untouched, retry after the search delay.
			t.log.Warnf("Cycle skipped: %v", err)
			t.bus.Publish(events.Event{Type: events.EventCycleError, Source: "tracker", Err: err})
			delay = t.delays.Search
		case counted:
			delay = t.delays.Encounter
		default:
			delay = t.delays.Idle
		}
		time.Sleep(delay)
	}
	t.log.Info("Polling loop exited")
}

// cycle runs one detection pass. Capture and OCR happen without the
// state lock; only the machine step holds it.
func (t *Tracker) cycle() (bool, error) {
	handle, err := t.finder.Find()
	if err != nil {
		return false, err
	}
	frame, err := handle.Capture()
	if err != nil {
		return false, err
	}

	t.mu.Lock()
	phase := t.state.Phase()
	debug := t.state.Debug
	t.mu.Unlock()
	t.extractor.SetDebug(debug)

	var bottomLines, topLines []string
	if phase == encounter.PhaseIdle {
		crop, err := t.extractor.Extract(frame, vision.BottomRegion, "debug_bottom.png")
		if err != nil {
			return false, err
		}
		bottomLines, err = t.recognizer.RecognizeLines(crop)
		if err != nil {
			return false, err
		}
	}

	// The header region matters once an encounter is (or just became)
	// plausible: either we were already in one, or the trigger phrase
	// is on screen right now.
	if phase != encounter.PhaseIdle || encounter.HasWildTrigger(bottomLines, t.rules) {
		crop, err := t.extractor.Extract(frame, vision.TopRegion, "debug_top.png")
		if err != nil {
			return false, err
		}
		topLines, err = t.recognizer.RecognizeLines(crop)
		if err != nil {
			return false, err
		}
	}

	t.mu.Lock()
	counted := t.machine.Step(t.state, bottomLines, topLines)
	var snap encounter.State
	if counted {
		snap = t.state.Clone()
	}
	t.mu.Unlock()

	if counted {
		t.bus.Publish(events.Event{
			Type:     events.EventEncounterCounted,
			Source:   "tracker",
			Snapshot: &snap,
		})
	}
	return counted, nil
}
