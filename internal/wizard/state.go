// Package wizard implements the widget's step state machine and all
// step-scoped data. The controller is pure state: it never talks to the
// network or the terminal, so every transition is unit-testable. Async task
// results are applied through Handle* methods carrying the generation the
// task was started under, which is how results from a superseded session are
// dropped.
package wizard

import (
	"encoding/json"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/mask"
)

// Step identifies the active wizard view. Exactly one step is active at a
// time; the error overlay interrupts whichever step is active without
// replacing it.
type Step int

const (
	StepUpload Step = iota
	StepSystemSelect
	StepStyleSelect
	StepRendering
	StepResult
)

// String returns the step's wire-friendly name.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepSystemSelect:
		return "system_select"
	case StepStyleSelect:
		return "style_select"
	case StepRendering:
		return "rendering"
	case StepResult:
		return "result"
	default:
		return "unknown"
	}
}

// Finish is the surface finish tuning knob.
type Finish string

const (
	FinishGloss Finish = "gloss"
	FinishSatin Finish = "satin"
	FinishMatte Finish = "matte"
)

// Blend strength bounds. Values are clamped, never rejected: the knob is
// free-form user adjustment with no server-side validation before submit.
const (
	MinBlendStrength = 0.3
	MaxBlendStrength = 1.0
)

// Tuning holds the user-adjustable render knobs, independent of mask
// content.
type Tuning struct {
	BlendStrength float64
	Finish        Finish
}

// DefaultTuning is the knob state of a fresh session.
func DefaultTuning() Tuning {
	return Tuning{BlendStrength: 0.85, Finish: FinishSatin}
}

// ClampBlend bounds a blend strength to [0.3, 1.0].
func ClampBlend(v float64) float64 {
	if v < MinBlendStrength {
		return MinBlendStrength
	}
	if v > MaxBlendStrength {
		return MaxBlendStrength
	}
	return v
}

// UploadedImage pairs the local file reference with the server-issued
// identifier. ServerID arrives asynchronously and may still be empty while
// the wizard has already advanced past the upload step.
type UploadedImage struct {
	LocalPath string
	ServerID  string
}

// RenderResult is a successful render response, present only after one.
type RenderResult struct {
	ResultImageURL string
	MaskImageURL   string
	MaskSource     string
	DebugPayload   json.RawMessage
}

// State is the single owned wizard state instance; lifetime is one widget
// session. Mutated exclusively by Controller handlers.
type State struct {
	Step Step

	Uploaded UploadedImage

	Styles         []api.Style
	StylesLoading  bool
	StylesLoaded   bool
	SelectedSystem string // finish-system category filter, "" = all
	SelectedStyle  string // must reference an entry of Styles or be ""

	Tuning Tuning

	RenderResult *RenderResult

	// Mask is the active editing session, present only while editing is
	// enabled. AppliedMask survives the session: it is the exported bitmap
	// handed to the render orchestrator.
	Mask        *mask.Session
	AppliedMask string // base64 PNG, "" when no mask was applied

	LastError *Error

	// Generation increments on every reset. Async task completions carry
	// the generation they started under; stale generations are dropped
	// instead of mutating a session they no longer belong to.
	Generation uint64
}

// StyleByID returns the style with the given id from the fetched catalog.
func (s *State) StyleByID(id string) (api.Style, bool) {
	for _, st := range s.Styles {
		if st.ID == id {
			return st, true
		}
	}
	return api.Style{}, false
}

// VisibleStyles returns the catalog filtered by the chosen finish system.
// Filtering is client-side; the fetched catalog itself is never mutated.
func (s *State) VisibleStyles() []api.Style {
	if s.SelectedSystem == "" {
		return s.Styles
	}
	var out []api.Style
	for _, st := range s.Styles {
		if st.Category == s.SelectedSystem {
			out = append(out, st)
		}
	}
	return out
}
