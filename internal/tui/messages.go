package tui

import (
	"image"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/wizard"
)

// Async task completion messages. Each carries the wizard generation it was
// started under so stale completions can be dropped by the controller.

// fileSelectedMsg fires when the upload step picks a local image.
type fileSelectedMsg struct {
	path string
}

// uploadResultMsg is the background upload completion.
type uploadResultMsg struct {
	generation uint64
	imageID    string
	err        error
}

// stylesResultMsg is the catalog fetch completion.
type stylesResultMsg struct {
	generation uint64
	styles     []api.Style
	err        error
}

// renderResultMsg is the render submission completion.
type renderResultMsg struct {
	generation uint64
	result     *wizard.RenderResult
	err        error
}

// themeResultMsg is the project config fetch completion. A failure is
// silent: theming is cosmetic and never blocks the wizard.
type themeResultMsg struct {
	cfg *api.ProjectConfig
	err error
}

// maskSourceMsg delivers the downloaded server mask (nil when none exists
// or the download failed) together with the base image's natural size.
type maskSourceMsg struct {
	generation uint64
	naturalW   int
	naturalH   int
	source     image.Image
	err        error
}

// resultSavedMsg is the result-download completion.
type resultSavedMsg struct {
	path string
	err  error
}
