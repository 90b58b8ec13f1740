// Package gui is the Fyne front end: run controls and a live view of
// the accumulated statistics.
package gui

import (
	"fmt"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"encounter-tracker/internal/encounter"
	"encounter-tracker/internal/events"
	"encounter-tracker/internal/logging"
	"encounter-tracker/internal/tracker"
)

// TopListSize is how many species the ranking shows.
const TopListSize = 8

// Controller manages the GUI and relays control actions to the tracker.
type Controller struct {
	app    fyne.App
	window fyne.Window

	tracker *tracker.Tracker
	bus     *events.Bus
	subs    []events.SubscriptionID

	statusLabel *widget.Label
	totalLabel  *widget.Label
	lastLabel   *widget.Label
	topLabel    *widget.Label

	log *logging.Logger
}

// NewController creates a GUI controller bound to the tracker.
func NewController(app fyne.App, window fyne.Window, tr *tracker.Tracker, bus *events.Bus) *Controller {
	c := &Controller{
		app:     app,
		window:  window,
		tracker: tr,
		bus:     bus,
		log:     logging.NewLogger("gui"),
	}
	c.setupEventHandlers()
	return c
}

// BuildUI constructs the window content.
func (c *Controller) BuildUI() fyne.CanvasObject {
	c.statusLabel = widget.NewLabel("State: idle")
	c.totalLabel = widget.NewLabel("Total Encounters: 0")
	c.lastLabel = widget.NewLabel("Last Encounter: -")
	c.topLabel = widget.NewLabel("")

	controls := container.NewHBox(
		widget.NewButton("Start", c.onStart),
		widget.NewButton("Pause", c.onPause),
		widget.NewButton("Reset", c.onReset),
		widget.NewButton("Quit", c.onQuit),
	)

	heading := widget.NewLabel("Encounter Counter")
	heading.TextStyle = fyne.TextStyle{Bold: true}
	topHeading := widget.NewLabel(fmt.Sprintf("Top %d Encounters", TopListSize))
	topHeading.TextStyle = fyne.TextStyle{Bold: true}

	content := container.NewVBox(
		heading,
		c.statusLabel,
		controls,
		widget.NewSeparator(),
		c.totalLabel,
		c.lastLabel,
		widget.NewSeparator(),
		topHeading,
		c.topLabel,
	)

	c.refresh(c.tracker.Snapshot())
	return content
}

// Shutdown unsubscribes from the bus.
func (c *Controller) Shutdown() {
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
}

func (c *Controller) setupEventHandlers() {
	c.subs = append(c.subs, c.bus.Subscribe(events.EventEncounterCounted, func(e events.Event) {
		if e.Snapshot == nil {
			return
		}
		snap := *e.Snapshot
		fyne.Do(func() { c.refresh(snap) })
	}))

	c.subs = append(c.subs, c.bus.Subscribe(events.EventRunStateChanged, func(e events.Event) {
		state := e.RunState
		fyne.Do(func() {
			if c.statusLabel != nil {
				c.statusLabel.SetText("State: " + state)
			}
		})
	}))
}

func (c *Controller) onStart() {
	if err := c.tracker.Start(); err != nil {
		c.log.Error("Start rejected", err)
		return
	}
	c.statusLabel.SetText("State: " + c.tracker.RunState().String())
}

func (c *Controller) onPause() {
	if err := c.tracker.Pause(); err != nil {
		c.log.Error("Pause rejected", err)
		return
	}
	c.statusLabel.SetText("State: " + c.tracker.RunState().String())
	c.refresh(c.tracker.Snapshot())
}

func (c *Controller) onReset() {
	if err := c.tracker.Reset(); err != nil {
		c.log.Error("Reset rejected", err)
		return
	}
	c.statusLabel.SetText("State: " + c.tracker.RunState().String())
	c.refresh(c.tracker.Snapshot())
}

func (c *Controller) onQuit() {
	if err := c.tracker.Quit(); err != nil {
		c.log.Error("Quit failed", err)
	}
	c.app.Quit()
}

// refresh redraws the statistics widgets from a snapshot. Must run on
// the Fyne main thread.
func (c *Controller) refresh(snap encounter.State) {
	if c.totalLabel == nil {
		return
	}
	c.totalLabel.SetText(fmt.Sprintf("Total Encounters: %d", snap.Encounters))

	last := "-"
	if len(snap.LastEncounter) > 0 {
		last = strings.Join(snap.LastEncounter, ", ")
	}
	c.lastLabel.SetText("Last Encounter: " + last)

	c.topLabel.SetText(formatTopSpecies(snap.MonStats, TopListSize))
}

// formatTopSpecies renders the ranking, highest count first, names
// breaking ties for a stable display.
func formatTopSpecies(stats map[string]uint32, limit int) string {
	type entry struct {
		name  string
		count uint32
	}
	list := make([]entry, 0, len(stats))
	for name, count := range stats {
		list = append(list, entry{name, count})
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].count != list[j].count {
			return list[i].count > list[j].count
		}
		return list[i].name < list[j].name
	})
	if len(list) > limit {
		list = list[:limit]
	}

	var b strings.Builder
	for i, e := range list {
		fmt.Fprintf(&b, "%d. %s - %d\n", i+1, e.name, e.count)
	}
	return strings.TrimRight(b.String(), "\n")
}
