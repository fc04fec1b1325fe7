// Package vectorstore provides the Qdrant adapter behind the retrieval index.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"newsrag/internal/config"
	"newsrag/internal/model"
)

// QdrantStore is a minimal REST client for one Qdrant collection. The
// collection uses cosine distance; EnsureCollection creates it when absent.
type QdrantStore struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

func NewQdrantStore(cfg config.QdrantConfig) *QdrantStore {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &QdrantStore{
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *QdrantStore) Collection() string {
	return s.collection
}

// EnsureCollection creates the collection with the given vector dimension if
// it does not exist yet. It is idempotent: an existing collection is left
// untouched.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid vector dimension %d", dimension)
	}

	url := fmt.Sprintf("%s/collections/%s", s.baseURL, s.collection)
	status, err := s.do(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return fmt.Errorf("check collection failed: %w", err)
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("check collection failed: status %d", status)
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	status, err = s.do(ctx, http.MethodPut, url, body, nil)
	if err != nil {
		return fmt.Errorf("create collection failed: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("create collection failed: status %d", status)
	}
	return nil
}

// Upsert writes the points in a single request. A point id already present
// in the collection is overwritten, never duplicated; callers are expected to
// bound the slice size themselves.
func (s *QdrantStore) Upsert(ctx context.Context, points []model.IndexedPoint) error {
	if len(points) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/collections/%s/points?wait=true", s.baseURL, s.collection)
	body := map[string]interface{}{"points": points}
	status, err := s.do(ctx, http.MethodPut, url, body, nil)
	if err != nil {
		return fmt.Errorf("upsert points failed: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("upsert points failed: status %d", status)
	}
	return nil
}

// Search runs approximate nearest-neighbor search and returns at most limit
// hits ranked by descending similarity score.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, limit int) ([]model.RetrievedDoc, error) {
	if limit <= 0 {
		limit = 5
	}

	url := fmt.Sprintf("%s/collections/%s/points/search", s.baseURL, s.collection)
	body := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var parsed struct {
		Result []struct {
			Score   float32     `json:"score"`
			Payload model.Chunk `json:"payload"`
		} `json:"result"`
	}
	status, err := s.do(ctx, http.MethodPost, url, body, &parsed)
	if err != nil {
		return nil, fmt.Errorf("search points failed: %w", err)
	}
	if status >= 300 {
		return nil, fmt.Errorf("search points failed: status %d", status)
	}

	docs := make([]model.RetrievedDoc, 0, len(parsed.Result))
	for _, hit := range parsed.Result {
		docs = append(docs, model.RetrievedDoc{
			Text:   hit.Payload.Text,
			Title:  hit.Payload.Title,
			Date:   hit.Payload.Date,
			Source: hit.Payload.Source,
			URL:    hit.Payload.URL,
			Score:  hit.Score,
		})
	}
	return docs, nil
}

// Healthcheck verifies the Qdrant endpoint is reachable.
func (s *QdrantStore) Healthcheck(ctx context.Context) error {
	status, err := s.do(ctx, http.MethodGet, s.baseURL+"/collections", nil, nil)
	if err != nil {
		return fmt.Errorf("qdrant unreachable: %w", err)
	}
	if status >= 300 {
		return fmt.Errorf("qdrant status %d", status)
	}
	return nil
}

func (s *QdrantStore) do(ctx context.Context, method, url string, body interface{}, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request failed: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("build request failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response failed: %w", err)
		}
	}
	return resp.StatusCode, nil
}
