package wizard

import (
	"image"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/mask"
)

// Controller owns the WizardState and is the only code allowed to mutate
// it. Every user or network event arrives as a named handler call; handlers
// validate the transition, mutate state, and return what the caller must do
// next (start a fetch, reject with a precondition error). The caller, either
// the TUI or the headless tool server, performs the actual I/O.
type Controller struct {
	st *State

	// systems is the finish-system variant knob. With more than one entry
	// the wizard inserts the system-select step after upload.
	systems []string

	// onTransition, when set, observes every step change. Used by the
	// debug journal; never by wizard logic.
	onTransition func(from, to Step)
}

// NewController creates a controller at the upload step. systems may be nil
// for single-system projects.
func NewController(systems []string) *Controller {
	return &Controller{
		st: &State{
			Step:       StepUpload,
			Tuning:     DefaultTuning(),
			Generation: 1,
		},
		systems: systems,
	}
}

// State exposes the owned state for rendering. Callers must treat it as
// read-only; mutations go through handlers.
func (c *Controller) State() *State { return c.st }

// Generation returns the value async tasks must carry back to their
// completion handler.
func (c *Controller) Generation() uint64 { return c.st.Generation }

// OnTransition registers a step-change observer.
func (c *Controller) OnTransition(fn func(from, to Step)) { c.onTransition = fn }

func (c *Controller) setStep(to Step) {
	from := c.st.Step
	if from == to {
		return
	}
	c.st.Step = to
	logger.Debug("wizard step %s -> %s", from, to)
	if c.onTransition != nil {
		c.onTransition(from, to)
	}
}

// HandleFileSelected fires on successful local file selection. The wizard
// advances immediately, before the network upload completes: to system-select
// when the project has multiple finish systems, otherwise straight to
// style-select. The caller starts the upload task using the current
// generation.
func (c *Controller) HandleFileSelected(localPath string) error {
	if c.st.Step != StepUpload {
		return ErrWrongStep
	}
	c.st.Uploaded = UploadedImage{LocalPath: localPath}
	if len(c.systems) > 1 {
		c.setStep(StepSystemSelect)
	} else {
		if len(c.systems) == 1 {
			c.st.SelectedSystem = c.systems[0]
		}
		c.setStep(StepStyleSelect)
	}
	return nil
}

// HandleUploadResult applies the asynchronous upload completion. A result
// from a superseded generation is dropped: the session it belonged to no
// longer exists. Within the live generation a failure sets the error
// overlay regardless of the current step, since the upload is a prerequisite
// of everything downstream.
func (c *Controller) HandleUploadResult(generation uint64, serverID string, err error) {
	if generation != c.st.Generation {
		logger.Debug("dropping stale upload result (gen %d, live %d)", generation, c.st.Generation)
		return
	}
	if err != nil {
		logger.Warn("upload failed: %v", err)
		c.st.LastError = UploadError(err)
		return
	}
	c.st.Uploaded.ServerID = serverID
	logger.Info("upload complete: %s", serverID)
}

// HandleSystemChosen applies the finish-system choice and advances to
// style-select.
func (c *Controller) HandleSystemChosen(category string) error {
	if c.st.Step != StepSystemSelect {
		return ErrWrongStep
	}
	c.st.SelectedSystem = category
	c.setStep(StepStyleSelect)
	return nil
}

// BeginStyleFetch reports whether the caller should start a catalog fetch.
// Entering style-select triggers exactly one fetch; the loading flag keeps
// rapid re-entry from issuing duplicates. Retry after a failure goes
// through here as well (style-select reloads onto itself).
func (c *Controller) BeginStyleFetch() bool {
	if c.st.Step != StepStyleSelect || c.st.StylesLoading || c.st.StylesLoaded {
		return false
	}
	c.st.StylesLoading = true
	return true
}

// HandleStylesResult applies the asynchronous catalog fetch completion.
func (c *Controller) HandleStylesResult(generation uint64, styles []api.Style, err error) {
	if generation != c.st.Generation {
		logger.Debug("dropping stale styles result")
		return
	}
	c.st.StylesLoading = false
	if err != nil {
		logger.Warn("style fetch failed: %v", err)
		c.st.LastError = StyleFetchError(err)
		return
	}
	c.st.Styles = styles
	c.st.StylesLoaded = true
}

// RetryStyleFetch is the style-select → style-select reload edge: it clears
// a fetch failure and rearms the guard so the next BeginStyleFetch fires
// again, without leaving the step.
func (c *Controller) RetryStyleFetch() error {
	if c.st.Step != StepStyleSelect {
		return ErrWrongStep
	}
	c.st.LastError = nil
	c.st.StylesLoading = false
	c.st.StylesLoaded = false
	return nil
}

// HandleStyleSelected records the chosen style. The id must reference a
// fetched style.
func (c *Controller) HandleStyleSelected(id string) error {
	if c.st.Step != StepStyleSelect {
		return ErrWrongStep
	}
	if _, ok := c.st.StyleByID(id); !ok {
		return ErrNoStyleSelected
	}
	c.st.SelectedStyle = id
	return nil
}

// SetBlendStrength adjusts the blend knob, clamped to [0.3, 1.0].
func (c *Controller) SetBlendStrength(v float64) {
	c.st.Tuning.BlendStrength = ClampBlend(v)
}

// SetFinish adjusts the finish knob.
func (c *Controller) SetFinish(f Finish) {
	c.st.Tuning.Finish = f
}

// BeginRender guards the style-select → rendering transition. All three
// preconditions must hold: a style is selected, the catalog is not mid-load,
// and the server upload identifier has arrived. A violation is reported and
// the step does not change; there is no silent no-op or partial submit.
// On success the step is rendering and the caller submits exactly once.
func (c *Controller) BeginRender() error {
	if c.st.Step != StepStyleSelect {
		return ErrWrongStep
	}
	if c.st.StylesLoading {
		return ErrStylesLoading
	}
	if c.st.SelectedStyle == "" {
		return ErrNoStyleSelected
	}
	if c.st.Uploaded.ServerID == "" {
		return ErrUploadIncomplete
	}
	c.setStep(StepRendering)
	return nil
}

// HandleRenderResult applies the render completion: success stores the
// result and advances to the result step; any failure raises the error
// overlay without advancing. Dismissing the overlay returns to upload.
func (c *Controller) HandleRenderResult(generation uint64, res *RenderResult, err error) {
	if generation != c.st.Generation {
		logger.Debug("dropping stale render result")
		return
	}
	if c.st.Step != StepRendering {
		logger.Debug("render result outside rendering step, dropping")
		return
	}
	if err != nil {
		logger.Warn("render failed: %v", err)
		c.st.LastError = RenderError(err)
		return
	}
	c.st.RenderResult = res
	c.setStep(StepResult)
}

// EnableMaskEditing creates the editing session on the result view. The
// bitmap is sized to the base image's natural resolution; source is the
// server-provided mask, nil for an all-included start.
func (c *Controller) EnableMaskEditing(naturalW, naturalH int, source image.Image) error {
	if c.st.Step != StepResult {
		return ErrWrongStep
	}
	if c.st.Mask != nil {
		return nil // already editing
	}
	sess, err := mask.NewSession(naturalW, naturalH, source)
	if err != nil {
		return err
	}
	c.st.Mask = sess
	return nil
}

// DisableMaskEditing discards the session without applying it.
func (c *Controller) DisableMaskEditing() {
	if c.st.Mask != nil {
		c.st.Mask.Dispose()
		c.st.Mask = nil
	}
}

// ApplyMask exports the session bitmap, records it as the mask to send with
// the next render, and detaches the session.
func (c *Controller) ApplyMask() error {
	if c.st.Mask == nil {
		return ErrWrongStep
	}
	encoded, err := c.st.Mask.ExportBase64()
	if err != nil {
		return err
	}
	c.st.AppliedMask = encoded
	c.st.Mask.Dispose()
	c.st.Mask = nil
	return nil
}

// BeginRerender guards the result → rendering transition used after a mask
// apply or a tuning change. Same preconditions as BeginRender minus the
// catalog checks, which were satisfied to get here.
func (c *Controller) BeginRerender() error {
	if c.st.Step != StepResult {
		return ErrWrongStep
	}
	if c.st.Uploaded.ServerID == "" {
		return ErrUploadIncomplete
	}
	c.st.RenderResult = nil
	c.setStep(StepRendering)
	return nil
}

// DismissError clears the overlay. A recoverable error returns the wizard
// to upload via a full reset; the terminal config error has no retry path
// and leaves state untouched.
func (c *Controller) DismissError() {
	if c.st.LastError == nil {
		return
	}
	if !c.st.LastError.Recoverable() {
		return
	}
	c.st.LastError = nil
	c.Reset()
}

// SetError raises the overlay directly; used for failures that originate
// outside the async handlers.
func (c *Controller) SetError(e *Error) { c.st.LastError = e }

// Reset returns to upload and clears all step-scoped data: image reference,
// catalog selection, render result, applied mask, and any live editing
// session. The generation bump invalidates every in-flight task.
func (c *Controller) Reset() {
	c.DisableMaskEditing()
	gen := c.st.Generation + 1
	c.st.Uploaded = UploadedImage{}
	c.st.Styles = nil
	c.st.StylesLoading = false
	c.st.StylesLoaded = false
	c.st.SelectedSystem = ""
	c.st.SelectedStyle = ""
	c.st.Tuning = DefaultTuning()
	c.st.RenderResult = nil
	c.st.AppliedMask = ""
	c.st.LastError = nil
	c.st.Generation = gen
	c.setStep(StepUpload)
}
