package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/epoxy/uploads", r.URL.Path)
		require.Equal(t, "pk_test", r.Header.Get("X-API-KEY"))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "floor.jpg", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "img_1"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pk_test")
	id, err := c.Upload(context.Background(), "/some/dir/floor.jpg", strings.NewReader("fake-jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "img_1", id)
}

func TestStyles(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epoxy/styles/public", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "style_a", "name": "Midnight Flake", "category": "Flake", "cover_image_url": "https://x/a.jpg"},
			{"id": "style_b", "name": "Clear Coat", "category": "Solid"}
		]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pk_test")
	styles, err := c.Styles(context.Background())
	require.NoError(t, err)
	require.Len(t, styles, 2)
	assert.Equal(t, "style_a", styles[0].ID)
	assert.Equal(t, "Flake", styles[0].Category)
	assert.Empty(t, styles[1].CoverImageURL)
}

func TestStylesUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "Invalid API Key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "expired")
	_, err := c.Styles(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr), "401 must surface as StatusError")
	assert.Equal(t, http.StatusUnauthorized, statusErr.Code)
}

func TestPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/epoxy/preview", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(8<<20))

		assert.Equal(t, "img_1", r.FormValue("image_id"))
		assert.Equal(t, "style_a", r.FormValue("style_id"))
		assert.Equal(t, "0.85", r.FormValue("blend_strength"))
		assert.Equal(t, "satin", r.FormValue("finish"))
		assert.Equal(t, "true", r.FormValue("debug"))
		assert.Equal(t, "bWFzaw==", r.FormValue("custom_mask"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result_url": "https://x/r.jpg", "mask_url": "https://x/m.png", "mask_source": "ai", "model_status": "warm"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pk_test")
	res, err := c.Preview(context.Background(), PreviewRequest{
		ImageID:       "img_1",
		StyleID:       "style_a",
		BlendStrength: 0.85,
		Finish:        "satin",
		Debug:         true,
		CustomMask:    "bWFzaw==",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/r.jpg", res.ResultURL)
	assert.Equal(t, "https://x/m.png", res.MaskURL)
	assert.Equal(t, "ai", res.MaskSource)
	assert.Contains(t, string(res.Raw), "model_status")
}

func TestPreviewRequiresImageID(t *testing.T) {
	c := NewClient("http://unused.invalid", "pk_test")
	_, err := c.Preview(context.Background(), PreviewRequest{StyleID: "style_a"})
	require.Error(t, err)
}

func TestPreviewMalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success"}`)) // no result_url
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "pk_test")
	_, err := c.Preview(context.Background(), PreviewRequest{ImageID: "img_1", BlendStrength: 0.5, Finish: "gloss"})
	require.Error(t, err)
}

func TestNetworkErrorIsNotStatusError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "pk_test") // nothing listens here
	err := c.Ping(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	assert.False(t, errors.As(err, &statusErr), "transport failure must not be a StatusError")
}
