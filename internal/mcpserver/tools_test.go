package mcpserver

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skisplace/epoxyview/internal/api"
)

func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if text, ok := result.Content[0].(mcp.TextContent); ok {
		return text.Text
	}
	return ""
}

func callReq(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestListStylesFiltersByCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epoxy/styles/public", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "style_a", "name": "Midnight Flake", "category": "Flake"},
			{"id": "style_b", "name": "Clear Coat", "category": "Solid"}
		]`))
	}))
	defer srv.Close()

	s := New(api.NewClient(srv.URL, "pk_test"), "", false)

	result, err := s.handleListStyles(context.Background(), callReq("list_styles", map[string]any{"category": "Solid"}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	text := extractText(result)
	assert.Contains(t, text, "style_b")
	assert.NotContains(t, text, "style_a")
}

func TestUploadImageRequiresPath(t *testing.T) {
	s := New(api.NewClient("http://127.0.0.1:1", "pk_test"), "", false)

	result, err := s.handleUploadImage(context.Background(), callReq("upload_image", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "path")
}

func TestUploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epoxy/uploads", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "img_9"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "floor.jpg")
	require.NoError(t, os.WriteFile(path, []byte("fake-jpeg-bytes"), 0o644))

	s := New(api.NewClient(srv.URL, "pk_test"), "", false)

	result, err := s.handleUploadImage(context.Background(), callReq("upload_image", map[string]any{"path": path}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, extractText(result), `"image_id": "img_9"`)
}

func TestRenderPreviewDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epoxy/preview", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(8<<20))

		assert.Equal(t, "img_1", r.FormValue("image_id"))
		assert.Equal(t, "0.85", r.FormValue("blend_strength"))
		assert.Equal(t, "satin", r.FormValue("finish"))
		assert.Equal(t, "proj_1", r.FormValue("project_id"))
		assert.Empty(t, r.FormValue("custom_mask"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "result_url": "https://cdn/r.jpg"}`))
	}))
	defer srv.Close()

	s := New(api.NewClient(srv.URL, "pk_test"), "proj_1", false)

	result, err := s.handleRenderPreview(context.Background(), callReq("render_preview", map[string]any{
		"image_id": "img_1",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, extractText(result), "https://cdn/r.jpg")
}

func TestRenderPreviewWithMaskFile(t *testing.T) {
	maskBytes := []byte("\x89PNG\r\n\x1a\nfake")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(8<<20))
		assert.Equal(t, base64.StdEncoding.EncodeToString(maskBytes), r.FormValue("custom_mask"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status": "ok", "result_url": "https://cdn/r.jpg"}`))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "mask.png")
	require.NoError(t, os.WriteFile(path, maskBytes, 0o644))

	s := New(api.NewClient(srv.URL, "pk_test"), "", false)

	result, err := s.handleRenderPreview(context.Background(), callReq("render_preview", map[string]any{
		"image_id":  "img_1",
		"style_id":  "style_a",
		"mask_path": path,
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)
}

func TestRenderPreviewRequiresImageID(t *testing.T) {
	s := New(api.NewClient("http://127.0.0.1:1", "pk_test"), "", false)

	result, err := s.handleRenderPreview(context.Background(), callReq("render_preview", map[string]any{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "image_id")
}
