package wizard

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/skisplace/epoxyview/internal/api"
)

// ErrorKind tags the recoverable error overlay states plus the terminal
// configuration failure.
type ErrorKind int

const (
	// ErrConfigMissing means no API key resolved. Terminal: no retry path,
	// the widget makes no network calls.
	ErrConfigMissing ErrorKind = iota
	// ErrUploadFailed means the background image upload did not complete.
	ErrUploadFailed
	// ErrStyleFetchFailed means the style catalog could not be loaded.
	ErrStyleFetchFailed
	// ErrUnauthorized is the style-fetch sub-kind for a 401: the preview
	// token has expired or the key is invalid.
	ErrUnauthorized
	// ErrRenderFailed means the render submission was rejected or its
	// payload was unusable.
	ErrRenderFailed
	// ErrNetwork is a transport-level failure, distinct from a non-2xx
	// response.
	ErrNetwork
)

// String returns the kind's wire-friendly name.
func (k ErrorKind) String() string {
	switch k {
	case ErrConfigMissing:
		return "config_missing"
	case ErrUploadFailed:
		return "upload_failed"
	case ErrStyleFetchFailed:
		return "style_fetch_failed"
	case ErrUnauthorized:
		return "unauthorized"
	case ErrRenderFailed:
		return "render_failed"
	case ErrNetwork:
		return "network_error"
	default:
		return "unknown"
	}
}

// Error is the tagged error shown by the dismissible overlay. All kinds
// except ErrConfigMissing are recoverable; dismissing the overlay returns
// the wizard to the upload step.
type Error struct {
	Kind    ErrorKind
	Message string // user-facing
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Recoverable reports whether dismissing the overlay offers a retry path.
func (e *Error) Recoverable() bool { return e.Kind != ErrConfigMissing }

// Guard violations for the style-select → rendering transition. These are
// precondition errors surfaced inline, not overlay errors: the transition is
// rejected and the step does not change.
var (
	ErrUploadIncomplete = errors.New("upload incomplete: the image is still being sent")
	ErrNoStyleSelected  = errors.New("no style selected")
	ErrStylesLoading    = errors.New("style catalog is still loading")
	ErrWrongStep        = errors.New("action not available in the current step")
)

// UploadError classifies a failed upload task result.
func UploadError(err error) *Error {
	if kind, ok := transportKind(err); ok {
		return &Error{Kind: kind, Message: "Could not reach the preview service while uploading", Err: err}
	}
	return &Error{Kind: ErrUploadFailed, Message: "The image upload failed", Err: err}
}

// StyleFetchError classifies a failed style-catalog fetch, mapping a 401 to
// the distinct preview-token message.
func StyleFetchError(err error) *Error {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) && statusErr.Code == http.StatusUnauthorized {
		return &Error{
			Kind:    ErrUnauthorized,
			Message: "Your preview token has expired. Ask the site owner for a fresh embed key.",
			Err:     err,
		}
	}
	if kind, ok := transportKind(err); ok {
		return &Error{Kind: kind, Message: "Could not reach the preview service", Err: err}
	}
	return &Error{Kind: ErrStyleFetchFailed, Message: "Could not load the style catalog", Err: err}
}

// RenderError classifies a failed render submission.
func RenderError(err error) *Error {
	if kind, ok := transportKind(err); ok {
		return &Error{Kind: kind, Message: "Could not reach the preview service while rendering", Err: err}
	}
	return &Error{Kind: ErrRenderFailed, Message: "The render request failed", Err: err}
}

// transportKind reports ErrNetwork for failures that never produced an HTTP
// status.
func transportKind(err error) (ErrorKind, bool) {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return 0, false
	}
	return ErrNetwork, true
}
