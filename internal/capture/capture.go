// Package capture abstracts locating the game window and grabbing
// frames from it. The polling loop only depends on the interfaces here;
// the screenshot-backed implementation lives in screen.go.
package capture

import (
	"errors"
	"image"
)

// ErrWindowNotFound is returned when the game window (or configured
// display) cannot be located. The polling loop treats it as a
// recoverable condition and retries on the next cycle.
var ErrWindowNotFound = errors.New("capture: game window not found")

// Handle is a located game window that frames can be captured from.
type Handle interface {
	// Capture grabs the current frame of the window.
	Capture() (*image.RGBA, error)

	// Dimensions returns the window size in pixels.
	Dimensions() (width, height int)
}

// Finder locates the game window. Find is called once per polling
// cycle so the tracker follows the window if it moves or closes.
type Finder interface {
	Find() (Handle, error)
}
