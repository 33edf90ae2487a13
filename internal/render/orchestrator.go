// Package render assembles render submissions from wizard state and
// interprets the service's responses.
package render

import (
	"context"
	"fmt"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/logger"
	"github.com/skisplace/epoxyview/internal/wizard"
)

// Gateway is the slice of the API client the orchestrator needs.
type Gateway interface {
	Preview(ctx context.Context, req api.PreviewRequest) (*api.PreviewResult, error)
}

// Orchestrator submits render requests. One instance lives for the widget
// session; each entry into the rendering step submits exactly once.
type Orchestrator struct {
	gw        Gateway
	projectID string
	debug     bool
}

// New creates an orchestrator over the given gateway.
func New(gw Gateway, projectID string, debug bool) *Orchestrator {
	return &Orchestrator{gw: gw, projectID: projectID, debug: debug}
}

// Submit assembles the request from the wizard state captured at the moment
// the rendering transition fired and performs the single submission. A
// missing upload identifier is a precondition violation that the guarded
// transition should have blocked, so it is reported as a plain error rather
// than silently submitted.
func (o *Orchestrator) Submit(ctx context.Context, st *wizard.State) (*wizard.RenderResult, error) {
	if st.Uploaded.ServerID == "" {
		return nil, fmt.Errorf("render submitted without an upload identifier")
	}

	req := api.PreviewRequest{
		ImageID:       st.Uploaded.ServerID,
		StyleID:       st.SelectedStyle,
		BlendStrength: st.Tuning.BlendStrength,
		Finish:        string(st.Tuning.Finish),
		Debug:         o.debug,
		CustomMask:    st.AppliedMask,
		ProjectID:     o.projectID,
	}

	logger.Info("submitting render: image=%s style=%s finish=%s mask=%v",
		req.ImageID, req.StyleID, req.Finish, req.CustomMask != "")

	res, err := o.gw.Preview(ctx, req)
	if err != nil {
		return nil, err
	}

	out := &wizard.RenderResult{
		ResultImageURL: res.ResultURL,
		MaskImageURL:   res.MaskURL,
		MaskSource:     res.MaskSource,
	}
	if o.debug {
		out.DebugPayload = res.Raw
	}
	return out, nil
}
