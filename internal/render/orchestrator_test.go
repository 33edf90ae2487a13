package render

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skisplace/epoxyview/internal/api"
	"github.com/skisplace/epoxyview/internal/wizard"
)

type fakeGateway struct {
	got    api.PreviewRequest
	result *api.PreviewResult
	err    error
	calls  int
}

func (f *fakeGateway) Preview(_ context.Context, req api.PreviewRequest) (*api.PreviewResult, error) {
	f.calls++
	f.got = req
	return f.result, f.err
}

func renderableState() *wizard.State {
	return &wizard.State{
		Step:          wizard.StepRendering,
		Uploaded:      wizard.UploadedImage{LocalPath: "/p/floor.jpg", ServerID: "img_1"},
		SelectedStyle: "style_a",
		Tuning:        wizard.Tuning{BlendStrength: 0.85, Finish: wizard.FinishSatin},
	}
}

func TestSubmitAssemblesRequest(t *testing.T) {
	gw := &fakeGateway{result: &api.PreviewResult{
		ResultURL:  "https://x/r.jpg",
		MaskURL:    "https://x/m.png",
		MaskSource: "ai",
		Raw:        json.RawMessage(`{"result_url":"https://x/r.jpg","model_status":"warm"}`),
	}}
	o := New(gw, "proj_9", true)

	st := renderableState()
	st.AppliedMask = "bWFzaw=="

	res, err := o.Submit(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, 1, gw.calls)

	assert.Equal(t, "img_1", gw.got.ImageID)
	assert.Equal(t, "style_a", gw.got.StyleID)
	assert.InDelta(t, 0.85, gw.got.BlendStrength, 1e-9)
	assert.Equal(t, "satin", gw.got.Finish)
	assert.Equal(t, "bWFzaw==", gw.got.CustomMask)
	assert.Equal(t, "proj_9", gw.got.ProjectID)
	assert.True(t, gw.got.Debug)

	assert.Equal(t, "https://x/r.jpg", res.ResultImageURL)
	assert.Equal(t, "https://x/m.png", res.MaskImageURL)
	assert.Equal(t, "ai", res.MaskSource)
	assert.Contains(t, string(res.DebugPayload), "model_status")
}

func TestSubmitOmitsMaskWhenNeverApplied(t *testing.T) {
	gw := &fakeGateway{result: &api.PreviewResult{ResultURL: "https://x/r.jpg"}}
	o := New(gw, "", false)

	res, err := o.Submit(context.Background(), renderableState())
	require.NoError(t, err)
	assert.Empty(t, gw.got.CustomMask)
	assert.Nil(t, res.DebugPayload, "debug payload only in debug mode")
}

func TestSubmitRejectsMissingImageID(t *testing.T) {
	gw := &fakeGateway{}
	o := New(gw, "", false)

	st := renderableState()
	st.Uploaded.ServerID = ""

	_, err := o.Submit(context.Background(), st)
	require.Error(t, err)
	assert.Zero(t, gw.calls, "a precondition violation must never reach the wire")
}

func TestSubmitPropagatesFailure(t *testing.T) {
	gw := &fakeGateway{err: errors.New("boom")}
	o := New(gw, "", false)

	_, err := o.Submit(context.Background(), renderableState())
	require.Error(t, err)
}
