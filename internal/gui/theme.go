package gui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

var (
	// DefaultWindowSize is the default window dimensions
	DefaultWindowSize = fyne.NewSize(320, 420)

	ColorPrimary = color.NRGBA{R: 76, G: 175, B: 80, A: 255} // Material Green
	ColorError   = color.NRGBA{R: 244, G: 67, B: 54, A: 255} // Material Red
	ColorWarning = color.NRGBA{R: 255, G: 152, B: 0, A: 255} // Material Orange
)

// TrackerTheme implements a custom theme for the tracker GUI
type TrackerTheme struct{}

func (t *TrackerTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return ColorPrimary
	case theme.ColorNameError:
		return ColorError
	case theme.ColorNameWarning:
		return ColorWarning
	default:
		return theme.DefaultTheme().Color(name, variant)
	}
}

func (t *TrackerTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *TrackerTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *TrackerTheme) Size(name fyne.ThemeSizeName) float32 {
	return theme.DefaultTheme().Size(name)
}
