package main

import (
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"encounter-tracker/internal/capture"
	"encounter-tracker/internal/config"
	"encounter-tracker/internal/encounter"
	"encounter-tracker/internal/events"
	"encounter-tracker/internal/gui"
	"encounter-tracker/internal/history"
	"encounter-tracker/internal/logging"
	"encounter-tracker/internal/ocr"
	"encounter-tracker/internal/rules"
	"encounter-tracker/internal/tracker"
	"encounter-tracker/internal/vision"
)

func main() {
	log := logging.NewLogger("main")

	cfg, err := config.LoadFromINI("Settings.ini")
	if err != nil {
		log.Warnf("Failed to load Settings.ini, using defaults: %v", err)
		cfg = config.NewDefaultConfig()
	}

	if len(os.Args) > 1 && os.Args[1] == "debug" {
		if err := runDebugMode(cfg); err != nil {
			log.Error("Debug mode failed", err)
			os.Exit(1)
		}
		return
	}

	// Prefer the game window by title; fall back to the configured
	// display when no title matches or enumeration is unavailable.
	finder := capture.NewFallbackFinder(
		capture.NewWindowFinder(cfg.WindowTitles),
		capture.NewDisplayFinder(cfg.Display, cfg.CaptureRect),
	)
	if _, err := finder.Find(); err != nil {
		fmt.Fprintf(os.Stderr, "capture source not available: %v\n", err)
		os.Exit(1)
	}

	detectionRules, err := rules.Load(cfg.RulesPath)
	if err != nil {
		log.Warnf("Falling back to default detection rules: %v", err)
		detectionRules = rules.Default()
	}

	store := encounter.NewStore(cfg.StatePath)
	state, err := store.Load()
	if err != nil {
		if errors.Is(err, encounter.ErrStateCorrupt) {
			log.Error("State file corrupt, starting from a fresh state", err)
		} else if !errors.Is(err, os.ErrNotExist) {
			log.Error("Failed to load state, starting from a fresh state", err)
		}
		state = encounter.NewState()
	}
	if cfg.Debug {
		state.Debug = true
	}

	// Mark the session open on disk; only a clean shutdown save clears
	// the flag again, so a crash is visible on the next load.
	if err := store.Save(state, true); err != nil {
		log.Error("Failed to write session-open checkpoint", err)
	}

	machine := encounter.NewMachine(store, detectionRules)

	histDB, err := history.Open(cfg.HistoryPath)
	if err != nil {
		log.Error("History database unavailable, continuing without it", err)
	} else {
		defer histDB.Close()
		if err := histDB.RunMigrations(); err != nil {
			log.Error("History migrations failed, continuing without history", err)
		} else if _, err := histDB.BeginSession(); err != nil {
			log.Error("Failed to begin history session", err)
		} else {
			machine.WithRecorder(histDB)
		}
	}

	recognizer, err := ocr.NewTesseract(cfg.OCRLanguage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize OCR engine: %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	bus := events.NewBus(64)
	defer bus.Stop()

	tr := tracker.New(
		state,
		store,
		machine,
		finder,
		vision.NewExtractor(state.Debug),
		recognizer,
		detectionRules,
		bus,
		tracker.Delays{
			Idle:      time.Duration(cfg.IdleDelayMs) * time.Millisecond,
			Encounter: time.Duration(cfg.EncounterDelayMs) * time.Millisecond,
			Search:    time.Duration(cfg.SearchDelayMs) * time.Millisecond,
		},
	)

	fyneApp := app.NewWithID("com.encounter-tracker.gui")
	fyneApp.Settings().SetTheme(&gui.TrackerTheme{})

	// SIGINT/SIGTERM: persist, then leave through the app loop so the
	// deferred cleanup above still runs.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go shutdownOnSignal(sigCh, tr, log, func() {
		fyne.Do(fyneApp.Quit)
	})

	mainWindow := fyneApp.NewWindow("Encounter Counter")
	mainWindow.Resize(gui.DefaultWindowSize)

	controller := gui.NewController(fyneApp, mainWindow, tr, bus)
	mainWindow.SetContent(controller.BuildUI())
	mainWindow.SetMaster()
	mainWindow.ShowAndRun()

	// Window closed without the Quit button: stop polling and persist.
	controller.Shutdown()
	if tr.RunState() != tracker.StateQuitting {
		if err := tr.Quit(); err != nil {
			_ = tr.SaveNow(false)
		}
	}
}

// shutdownOnSignal waits for a termination signal, stops the tracker
// with a clean-shutdown save and hands control back to the app loop
// via quit.
func shutdownOnSignal(sigCh <-chan os.Signal, tr *tracker.Tracker, log *logging.Logger, quit func()) {
	sig := <-sigCh
	log.Infof("Received %v, saving and shutting down", sig)
	if err := tr.Quit(); err != nil {
		// Quit can be rejected if already quitting; save directly.
		_ = tr.SaveNow(false)
	}
	quit()
}

// runDebugMode lists capture sources and dumps one frame to debug.png.
func runDebugMode(cfg *config.Config) error {
	windows, err := capture.ListWindows()
	if err != nil {
		fmt.Printf("Window enumeration unavailable: %v\n", err)
	}
	for _, w := range windows {
		fmt.Printf("Window %q: %v\n", w.Title, w.Bounds)
	}
	for i, bounds := range capture.ListDisplays() {
		fmt.Printf("Display %d: %v\n", i, bounds)
	}

	finder := capture.NewFallbackFinder(
		capture.NewWindowFinder(cfg.WindowTitles),
		capture.NewDisplayFinder(cfg.Display, cfg.CaptureRect),
	)
	handle, err := finder.Find()
	if err != nil {
		return err
	}

	frame, err := handle.Capture()
	if err != nil {
		return err
	}

	f, err := os.Create("debug.png")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := png.Encode(f, frame); err != nil {
		return err
	}

	w, h := handle.Dimensions()
	fmt.Printf("Captured %dx%d frame to debug.png\n", w, h)
	return nil
}
