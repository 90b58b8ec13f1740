package capture

import (
	"fmt"
	"image"
	"strings"
)

// WindowInfo describes one top-level window known to the windowing
// system.
type WindowInfo struct {
	Title  string
	Bounds image.Rectangle
}

// DefaultWindowTitles are the title candidates the game is known to
// run under: its own name, or the bare JVM title some launchers leave.
func DefaultWindowTitles() []string {
	return []string{"pokemmo", "java"}
}

// WindowFinder locates the game window by title. Candidates match as
// case-insensitive substrings, so "pokemmo" finds "PokeMMO".
type WindowFinder struct {
	titles []string
}

// NewWindowFinder creates a finder for the given title candidates,
// falling back to the defaults when none are configured.
func NewWindowFinder(titles []string) *WindowFinder {
	if len(titles) == 0 {
		titles = DefaultWindowTitles()
	}
	return &WindowFinder{titles: titles}
}

// Find enumerates top-level windows and returns a handle over the
// first one whose title matches a candidate.
func (f *WindowFinder) Find() (Handle, error) {
	windows, err := ListWindows()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWindowNotFound, err)
	}
	for _, w := range windows {
		if w.Bounds.Empty() {
			continue
		}
		if matchesTitle(w.Title, f.titles) {
			return &screenRegion{bounds: w.Bounds}, nil
		}
	}
	return nil, fmt.Errorf("%w: no window titled like %v", ErrWindowNotFound, f.titles)
}

func matchesTitle(title string, candidates []string) bool {
	lower := strings.ToLower(title)
	for _, c := range candidates {
		if c != "" && strings.Contains(lower, strings.ToLower(c)) {
			return true
		}
	}
	return false
}

// FallbackFinder tries finders in order and returns the first hit.
// Pairing a WindowFinder with a DisplayFinder keeps capture working
// where window enumeration is unavailable or the title never matches.
type FallbackFinder struct {
	finders []Finder
}

// NewFallbackFinder chains the given finders.
func NewFallbackFinder(finders ...Finder) *FallbackFinder {
	return &FallbackFinder{finders: finders}
}

// Find returns the first handle any chained finder resolves, or the
// last error when none do.
func (f *FallbackFinder) Find() (Handle, error) {
	var lastErr error = ErrWindowNotFound
	for _, fd := range f.finders {
		h, err := fd.Find()
		if err == nil {
			return h, nil
		}
		lastErr = err
	}
	return nil, lastErr
}
