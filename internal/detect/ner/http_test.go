package ner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tushr23/AI-Powered-Data-Privacy-Assistant/internal/detect"
)

func newSidecar(t *testing.T, entities []wireEntity) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/v1/entities", func(w http.ResponseWriter, r *http.Request) {
		var req entitiesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Text)
		_ = json.NewEncoder(w).Encode(entitiesResponse{Entities: entities})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestNewHTTPProviderProbesHealth(t *testing.T) {
	srv := newSidecar(t, nil)

	p, err := NewHTTPProvider("hf_ner", srv.URL, true)
	require.NoError(t, err)
	assert.Equal(t, "hf_ner", p.ID())
}

func TestNewHTTPProviderUnreachable(t *testing.T) {
	_, err := NewHTTPProvider("hf_ner", "http://127.0.0.1:1", true)
	require.ErrorIs(t, err, detect.ErrProviderUnavailable)
}

func TestNewHTTPProviderNoBaseURL(t *testing.T) {
	_, err := NewHTTPProvider("hf_ner", "", true)
	require.ErrorIs(t, err, detect.ErrProviderUnavailable)
}

func TestNewHTTPProviderUnhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	_, err := NewHTTPProvider("hf_ner", srv.URL, true)
	require.ErrorIs(t, err, detect.ErrProviderUnavailable)
}

func TestHTTPProviderRecognize(t *testing.T) {
	srv := newSidecar(t, []wireEntity{
		{Start: 0, End: 10, Label: "B-PER", Score: 0.92},
		{Start: 14, End: 23, Label: "ORG", Score: 0.88},
		{Start: 30, End: 34, Label: "MISC", Score: 0.7}, // unmapped, dropped
	})

	p, err := NewHTTPProvider("hf_ner", srv.URL, true)
	require.NoError(t, err)

	entities, err := p.Recognize(context.Background(), "John Smith of Acme Corp, misc data")
	require.NoError(t, err)
	require.Len(t, entities, 2)

	assert.Equal(t, detect.CategoryPersonName, entities[0].Category)
	assert.Equal(t, detect.Span{Start: 0, End: 10}, entities[0].Span)
	assert.Equal(t, 0.92, entities[0].Confidence)
	assert.Equal(t, detect.CategoryOrganization, entities[1].Category)
}

func TestHTTPProviderRecognizeKeepsUnmappedAsOther(t *testing.T) {
	srv := newSidecar(t, []wireEntity{
		{Start: 0, End: 4, Label: "MISC", Score: 0.7},
	})

	p, err := NewHTTPProvider("hf_ner", srv.URL, false)
	require.NoError(t, err)

	entities, err := p.Recognize(context.Background(), "misc")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, detect.CategoryOther, entities[0].Category)
}

func TestHTTPProviderRecognizeServerError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {})
	mux.HandleFunc("/v1/entities", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p, err := NewHTTPProvider("hf_ner", srv.URL, true)
	require.NoError(t, err)

	_, err = p.Recognize(context.Background(), "text")
	require.ErrorIs(t, err, detect.ErrProviderUnavailable)
}
