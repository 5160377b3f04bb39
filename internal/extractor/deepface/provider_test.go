package deepface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tryshirtonline/face-attandance/internal/domain"
)

func newTestServer(t *testing.T, results []RepresentResult) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/represent", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req RepresentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Img)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(RepresentResponse{Results: results})
	}))
}

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = url
	cfg.RetryCount = 0
	return cfg
}

func embedding(dim int) []float64 {
	out := make([]float64, dim)
	for i := range out {
		out[i] = float64(i) / float64(dim)
	}
	return out
}

func TestExtract_ReturnsEmbedding(t *testing.T) {
	server := newTestServer(t, []RepresentResult{
		{Embedding: embedding(domain.EncodingDim), FacialArea: FacialArea{X: 10, Y: 10, W: 200, H: 200}},
	})
	defer server.Close()

	e := New(testConfig(server.URL))

	enc, err := e.Extract(context.Background(), []byte("fake-image-bytes"))

	require.NoError(t, err)
	assert.Len(t, []float64(enc), domain.EncodingDim)
}

func TestExtract_NoFace(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	e := New(testConfig(server.URL))

	_, err := e.Extract(context.Background(), []byte("fake-image-bytes"))

	assert.ErrorIs(t, err, domain.ErrNoFaceDetected)
}

func TestExtract_MultipleFaces(t *testing.T) {
	server := newTestServer(t, []RepresentResult{
		{Embedding: embedding(domain.EncodingDim)},
		{Embedding: embedding(domain.EncodingDim)},
	})
	defer server.Close()

	e := New(testConfig(server.URL))

	_, err := e.Extract(context.Background(), []byte("fake-image-bytes"))

	assert.ErrorIs(t, err, domain.ErrMultipleFaces)
}

func TestExtract_WrongDimension(t *testing.T) {
	server := newTestServer(t, []RepresentResult{
		{Embedding: embedding(512)},
	})
	defer server.Close()

	e := New(testConfig(server.URL))

	_, err := e.Extract(context.Background(), []byte("fake-image-bytes"))

	assert.ErrorIs(t, err, ErrWrongDimension)
}

func TestExtract_EmptyImage(t *testing.T) {
	e := New(DefaultConfig())

	_, err := e.Extract(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidImage)
}

func TestDetectFaces_ConfidenceScalesWithArea(t *testing.T) {
	server := newTestServer(t, []RepresentResult{
		{FacialArea: FacialArea{W: 60, H: 60}},   // small face
		{FacialArea: FacialArea{W: 400, H: 400}}, // large face
	})
	defer server.Close()

	e := New(testConfig(server.URL))

	faces, err := e.DetectFaces(context.Background(), []byte("fake-image-bytes"))

	require.NoError(t, err)
	require.Len(t, faces, 2)
	assert.Greater(t, faces[1].Confidence, faces[0].Confidence)
}

func TestClient_ServerErrorWrapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	e := New(testConfig(server.URL))

	_, err := e.Extract(context.Background(), []byte("fake-image-bytes"))

	assert.ErrorIs(t, err, ErrDeepFaceUnavailable)
}
