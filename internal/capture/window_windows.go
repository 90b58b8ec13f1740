//go:build windows

package capture

import (
	"fmt"
	"image"
	"syscall"
	"unsafe"
)

var (
	user32              = syscall.NewLazyDLL("user32.dll")
	procEnumWindows     = user32.NewProc("EnumWindows")
	procGetWindowTextW  = user32.NewProc("GetWindowTextW")
	procIsWindowVisible = user32.NewProc("IsWindowVisible")
	procGetWindowRect   = user32.NewProc("GetWindowRect")
)

type winRect struct {
	Left, Top, Right, Bottom int32
}

// ListWindows enumerates visible, titled top-level windows.
func ListWindows() ([]WindowInfo, error) {
	var out []WindowInfo
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if visible, _, _ := procIsWindowVisible.Call(hwnd); visible == 0 {
			return 1
		}
		buf := make([]uint16, 256)
		n, _, _ := procGetWindowTextW.Call(hwnd,
			uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n == 0 {
			return 1
		}
		var r winRect
		if ok, _, _ := procGetWindowRect.Call(hwnd,
			uintptr(unsafe.Pointer(&r))); ok == 0 {
			return 1
		}
		out = append(out, WindowInfo{
			Title:  syscall.UTF16ToString(buf[:n]),
			Bounds: image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom)),
		})
		return 1
	})
	if ret, _, err := procEnumWindows.Call(cb, 0); ret == 0 {
		return nil, fmt.Errorf("enumerating windows: %v", err)
	}
	return out, nil
}
