//go:build !linux && !windows

package capture

// ListWindows has no backend on this platform; title lookup finds
// nothing and callers fall back to display capture.
func ListWindows() ([]WindowInfo, error) {
	return nil, nil
}
