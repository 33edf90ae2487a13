// Package api is the HTTP gateway to the remote preview service. It covers
// the four widget calls (upload, style catalog, theme config, render) plus a
// connectivity ping, all authenticated with the X-API-KEY header.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg" // result and mask decoders
	_ "image/png"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "golang.org/x/image/webp" // photo uploads may be webp

	"github.com/skisplace/epoxyview/internal/logger"
)

// StatusError is a non-2xx response from the service, distinct from a
// transport-level failure.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Style is one entry of the finish-style catalog. Immutable once fetched;
// the server is the sole source of truth.
type Style struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

// Theme is the per-project widget theme from the config endpoint.
type Theme struct {
	Accent     string `json:"accent"`
	FontFamily string `json:"font_family"`
	Radius     string `json:"radius"`
	Surface    string `json:"surface,omitempty"`
	Text       string `json:"text,omitempty"`
}

// ProjectConfig is the response of the public config endpoint.
type ProjectConfig struct {
	Theme *Theme `json:"theme,omitempty"`
}

// PreviewRequest carries everything the render submission needs.
type PreviewRequest struct {
	ImageID       string  // server-issued upload identifier, required
	StyleID       string  // selected style, optional on the wire
	BlendStrength float64 // [0.3, 1.0]
	Finish        string  // gloss | satin | matte
	Debug         bool
	CustomMask    string // base64-encoded PNG, present only after apply
	ProjectID     string
}

// PreviewResult is a successful render response. Raw preserves the full
// payload for the debug view; the server attaches diagnostic fields (mask
// provenance, camera geometry, model status) that the client never
// interprets.
type PreviewResult struct {
	ResultURL  string          `json:"result_url"`
	MaskURL    string          `json:"mask_url,omitempty"`
	MaskSource string          `json:"mask_source,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// Client issues the widget's HTTP calls.
type Client struct {
	baseURL string
	apiKey  string
	httpc   *http.Client
}

// NewClient creates a gateway client for the given service base URL.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

// SetHTTPClient replaces the underlying HTTP client, used by tests.
func (c *Client) SetHTTPClient(h *http.Client) { c.httpc = h }

// Upload sends an image file and returns the server-issued identifier.
func (c *Client) Upload(ctx context.Context, filename string, content io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("finalizing upload form: %w", err)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/epoxy/uploads", &body, mw.FormDataContentType(), &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("upload response missing id")
	}
	return out.ID, nil
}

// Styles fetches the public finish-style catalog.
func (c *Client) Styles(ctx context.Context) ([]Style, error) {
	var styles []Style
	if err := c.do(ctx, http.MethodGet, "/epoxy/styles/public", nil, "", &styles); err != nil {
		return nil, err
	}
	return styles, nil
}

// Config fetches the per-project widget theme configuration.
func (c *Client) Config(ctx context.Context) (*ProjectConfig, error) {
	var cfg ProjectConfig
	if err := c.do(ctx, http.MethodGet, "/epoxy/config/public", nil, "", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Ping is a lightweight connectivity and key check.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/epoxy/ping", nil, "", nil)
}

// Preview submits a render request and returns the interpreted result.
func (c *Client) Preview(ctx context.Context, req PreviewRequest) (*PreviewResult, error) {
	if req.ImageID == "" {
		return nil, fmt.Errorf("preview request without image id")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fields := map[string]string{
		"image_id":       req.ImageID,
		"blend_strength": strconv.FormatFloat(req.BlendStrength, 'f', 2, 64),
		"finish":         req.Finish,
	}
	if req.StyleID != "" {
		fields["style_id"] = req.StyleID
	}
	if req.Debug {
		fields["debug"] = "true"
	}
	if req.CustomMask != "" {
		fields["custom_mask"] = req.CustomMask
	}
	if req.ProjectID != "" {
		fields["project_id"] = req.ProjectID
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("building preview form: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing preview form: %w", err)
	}

	raw, err := c.doRaw(ctx, http.MethodPost, "/epoxy/preview", &body, mw.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var result PreviewResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding preview response: %w", err)
	}
	if result.ResultURL == "" {
		return nil, fmt.Errorf("preview response missing result_url")
	}
	result.Raw = raw
	return &result, nil
}

// Download fetches an absolute URL (result or mask image) with the API key
// attached, returning the raw bytes.
func (c *Client) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode, Body: http.StatusText(resp.StatusCode)}
	}
	return io.ReadAll(io.LimitReader(resp.Body, 32<<20))
}

// FetchImage downloads and decodes an image URL.
func (c *Client) FetchImage(ctx context.Context, url string) (image.Image, error) {
	data, err := c.Download(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image from %s: %w", url, err)
	}
	return img, nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	raw, err := c.doRaw(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	logger.Debug("API %s %s", method, path)
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("API %s %s -> %d", method, path, resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
