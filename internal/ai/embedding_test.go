package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsrag/internal/config"
)

func embeddingServer(t *testing.T, dimension int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])
		assert.NotEmpty(t, req["input"])

		vector := make([]float32, dimension)
		for i := range vector {
			vector[i] = float32(i) / 100
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": vector}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbedReturnsVector(t *testing.T) {
	srv := embeddingServer(t, 8)
	client := NewEmbeddingClient(config.EmbeddingConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		Model:     "test-model",
		Dimension: 8,
	})

	vector, err := client.Embed(context.Background(), "some news text")
	require.NoError(t, err)
	assert.Len(t, vector, 8)
}

func TestEmbedRejectsDimensionMismatch(t *testing.T) {
	srv := embeddingServer(t, 8)
	client := NewEmbeddingClient(config.EmbeddingConfig{
		BaseURL:   srv.URL,
		APIKey:    "test-key",
		Model:     "test-model",
		Dimension: 1024,
	})

	_, err := client.Embed(context.Background(), "some news text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
}

func TestEmbedRejectsEmptyInput(t *testing.T) {
	client := NewEmbeddingClient(config.EmbeddingConfig{BaseURL: "http://localhost:1"})

	_, err := client.Embed(context.Background(), "   ")
	assert.Error(t, err)
}

func TestEmbedSurfacesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limited"}}`)
	}))
	t.Cleanup(srv.Close)

	client := NewEmbeddingClient(config.EmbeddingConfig{BaseURL: srv.URL, Model: "test-model"})
	_, err := client.Embed(context.Background(), "some news text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}

func TestEmbedRejectsEmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	t.Cleanup(srv.Close)

	client := NewEmbeddingClient(config.EmbeddingConfig{BaseURL: srv.URL, Model: "test-model"})
	_, err := client.Embed(context.Background(), "some news text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty embedding")
}

func TestEmbedTrimsTrailingSlashInBaseURL(t *testing.T) {
	srv := embeddingServer(t, 4)
	client := NewEmbeddingClient(config.EmbeddingConfig{
		BaseURL: strings.TrimRight(srv.URL, "/") + "/",
		APIKey:  "test-key",
		Model:   "test-model",
	})

	vector, err := client.Embed(context.Background(), "some news text")
	require.NoError(t, err)
	assert.Len(t, vector, 4)
}
