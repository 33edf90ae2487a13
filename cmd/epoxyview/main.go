package main

import (
	"context"
	"os"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/tui"
)

const (
	logoText1 = "█▀▀ █▀█ █▀█ ▀▄▀ █▄█ █ █ █ █▀▀ █ █ █"
	logoText2 = "██▄ █▀▀ █▄█ █ █  █  ▀▄▀ █ ██▄ ▀▄▀▄▀"
)

// Version set via ldflags during build
var version = "dev"

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "epoxyview",
	Short: "Terminal preview widget for epoxy floor coatings",
}

// renderLogo creates the logo with gradient colors
func renderLogo() string {
	t := tui.DefaultTheme()
	line1 := applyGradient(logoText1, t.Accent, t.Success)
	line2 := applyGradient(logoText2, t.Accent, t.Success)
	return strings.Join([]string{line1, line2}, "\n")
}

// applyGradient colors each rune along a linear blend between two hex colors.
func applyGradient(text, from, to string) string {
	runes := []rune(text)
	if len(runes) < 2 {
		return text
	}
	var b strings.Builder
	for i, r := range runes {
		pos := float64(i) / float64(len(runes)-1)
		hex := tui.InterpolateColor(from, to, pos)
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
		b.WriteString(style.Render(string(r)))
	}
	return b.String()
}

func init() {
	rootCmd.Long = renderLogo() + `

epoxyview turns a photo of a room into a styled epoxy-coating preview
without leaving the terminal. Pick a photo, choose a style from your
project's catalog, tune blend strength and finish, then refine the
coating mask with a brush editor before saving the rendered image.

Configuration is loaded with the following precedence:
  CLI flags > EPOXYVIEW_* env vars > ./epoxyview.yml > ~/.config/epoxyview/epoxyview.yml > defaults`

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(setupCmd)
}
