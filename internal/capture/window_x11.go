//go:build linux

package capture

import (
	"fmt"
	"image"
	"strings"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

// ListWindows enumerates the window manager's client list.
func ListWindows() ([]WindowInfo, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X server: %w", err)
	}
	defer conn.Close()

	root := xproto.Setup(conn).DefaultScreen(conn).Root

	clientList, err := internAtom(conn, "_NET_CLIENT_LIST")
	if err != nil {
		return nil, err
	}
	prop, err := xproto.GetProperty(conn, false, root, clientList,
		xproto.GetPropertyTypeAny, 0, 1<<20).Reply()
	if err != nil {
		return nil, fmt.Errorf("reading client list: %w", err)
	}

	out := make([]WindowInfo, 0, len(prop.Value)/4)
	for i := 0; i+4 <= len(prop.Value); i += 4 {
		win := xproto.Window(uint32(prop.Value[i]) |
			uint32(prop.Value[i+1])<<8 |
			uint32(prop.Value[i+2])<<16 |
			uint32(prop.Value[i+3])<<24)

		bounds, err := windowBounds(conn, root, win)
		if err != nil {
			continue
		}
		out = append(out, WindowInfo{Title: windowTitle(conn, win), Bounds: bounds})
	}
	return out, nil
}

func internAtom(conn *xgb.Conn, name string) (xproto.Atom, error) {
	reply, err := xproto.InternAtom(conn, true, uint16(len(name)), name).Reply()
	if err != nil {
		return 0, fmt.Errorf("interning %s: %w", name, err)
	}
	return reply.Atom, nil
}

// windowTitle prefers the EWMH UTF-8 name, then the ICCCM name, then
// the class hint, so JVM windows without a proper title still match
// on their class.
func windowTitle(conn *xgb.Conn, win xproto.Window) string {
	for _, name := range []string{"_NET_WM_NAME", "WM_NAME", "WM_CLASS"} {
		atom, err := internAtom(conn, name)
		if err != nil {
			continue
		}
		prop, err := xproto.GetProperty(conn, false, win, atom,
			xproto.GetPropertyTypeAny, 0, 1<<10).Reply()
		if err != nil || len(prop.Value) == 0 {
			continue
		}
		// WM_CLASS packs two NUL-separated strings.
		return strings.TrimSpace(strings.ReplaceAll(string(prop.Value), "\x00", " "))
	}
	return ""
}

func windowBounds(conn *xgb.Conn, root, win xproto.Window) (image.Rectangle, error) {
	geom, err := xproto.GetGeometry(conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	trans, err := xproto.TranslateCoordinates(conn, win, root, 0, 0).Reply()
	if err != nil {
		return image.Rectangle{}, err
	}
	x, y := int(trans.DstX), int(trans.DstY)
	return image.Rect(x, y, x+int(geom.Width), y+int(geom.Height)), nil
}
