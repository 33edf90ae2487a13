package tui

import (
	"fmt"

	"github.com/skisplace/epoxyview/internal/api"
)

// Theme is the widget color palette. Defaults are overridden per project by
// the theme config endpoint, the terminal equivalent of the embed's CSS
// theming.
type Theme struct {
	Accent  string
	Surface string
	Text    string
	Muted   string
	Subtle  string
	Success string
	Warning string
	Error   string
}

// DefaultTheme is used until (and unless) the config fetch supplies accents.
func DefaultTheme() Theme {
	return Theme{
		Accent:  "#cba6f7",
		Surface: "#313244",
		Text:    "#cdd6f4",
		Muted:   "#6c7086",
		Subtle:  "#a6adc8",
		Success: "#a6e3a1",
		Warning: "#f9e2af",
		Error:   "#f38ba8",
	}
}

// ApplyServerTheme overlays non-empty server-provided colors.
func (t Theme) ApplyServerTheme(remote *api.Theme) Theme {
	if remote == nil {
		return t
	}
	if remote.Accent != "" {
		t.Accent = remote.Accent
	}
	if remote.Surface != "" {
		t.Surface = remote.Surface
	}
	if remote.Text != "" {
		t.Text = remote.Text
	}
	return t
}

// InterpolateColor blends between two hex colors based on position (0.0 to 1.0)
func InterpolateColor(colorA, colorB string, pos float64) string {
	r1, g1, b1 := ParseHexColor(colorA)
	r2, g2, b2 := ParseHexColor(colorB)

	r := uint8(float64(r1)*(1-pos) + float64(r2)*pos)
	g := uint8(float64(g1)*(1-pos) + float64(g2)*pos)
	b := uint8(float64(b1)*(1-pos) + float64(b2)*pos)

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// ParseHexColor extracts RGB values from a #RRGGBB string.
func ParseHexColor(hex string) (uint8, uint8, uint8) {
	if len(hex) > 0 && hex[0] == '#' {
		hex = hex[1:]
	}
	var r, g, b uint8
	if len(hex) == 6 {
		_, _ = fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b)
	}
	return r, g, b
}
