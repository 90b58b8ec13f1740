package main

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"encounter-tracker/internal/capture"
	"encounter-tracker/internal/encounter"
	"encounter-tracker/internal/events"
	"encounter-tracker/internal/logging"
	"encounter-tracker/internal/rules"
	"encounter-tracker/internal/tracker"
	"encounter-tracker/internal/vision"
)

type stubFinder struct{}

func (stubFinder) Find() (capture.Handle, error) { return nil, capture.ErrWindowNotFound }

type stubRecognizer struct{}

func (stubRecognizer) RecognizeLines(image.Image) ([]string, error) { return nil, nil }

func TestShutdownOnSignalQuitsThroughAppLoop(t *testing.T) {
	r := rules.Default()
	statePath := filepath.Join(t.TempDir(), "state.json")
	store := encounter.NewStore(statePath)
	bus := events.NewBus(8)
	t.Cleanup(bus.Stop)

	tr := tracker.New(
		encounter.NewState(),
		store,
		encounter.NewMachine(store, r),
		stubFinder{},
		vision.NewExtractor(false),
		stubRecognizer{},
		r,
		bus,
		tracker.DefaultDelays(),
	)

	sigCh := make(chan os.Signal, 1)
	quitCalled := make(chan struct{})
	go shutdownOnSignal(sigCh, tr, logging.NewLogger("test"), func() {
		close(quitCalled)
	})

	sigCh <- os.Interrupt
	select {
	case <-quitCalled:
	case <-time.After(5 * time.Second):
		t.Fatal("Signal did not reach the app quit path")
	}

	if tr.RunState() != tracker.StateQuitting {
		t.Errorf("RunState = %v, want quitting", tr.RunState())
	}

	raw, err := os.ReadFile(statePath)
	if err != nil {
		t.Fatalf("State was not persisted: %v", err)
	}
	var saved struct {
		Crashed bool `json:"crashed"`
	}
	if err := json.Unmarshal(raw, &saved); err != nil {
		t.Fatalf("Saved state unreadable: %v", err)
	}
	if saved.Crashed {
		t.Error("Signal shutdown should record a clean session close")
	}
}
