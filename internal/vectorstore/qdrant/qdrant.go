// Package qdrant is a minimal REST client to Qdrant used as the corpus store.
// One point is stored per article; the article number keys the payload and
// deterministically derives the point UUID.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"kira-rag/internal/domain"
)

// Store talks to a single Qdrant collection over HTTP. It assumes cosine
// distance.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config contains connection details for the Qdrant store.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a store for the configured collection.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// Recreate drops the collection if it exists and creates it fresh with the
// given dimension, guaranteeing embedding-function consistency on re-ingest.
func (s *Store) Recreate(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	// Best-effort drop; a missing collection is not an error.
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/collections/%s", s.url, s.collection), nil)
	if err != nil {
		return err
	}
	s.setHeaders(req)
	if resp, err := s.client.Do(req); err == nil {
		resp.Body.Close()
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

// Upsert writes one point per article. Point IDs are SHA1-namespace UUIDs of
// the article number, so re-upserting the same article overwrites in place.
func (s *Store) Upsert(ctx context.Context, articles []domain.Article, vectors [][]float32) error {
	if len(articles) != len(vectors) {
		return errors.New("articles and vectors length mismatch")
	}
	points := make([]map[string]any, len(articles))
	for i, a := range articles {
		points[i] = map[string]any{
			"id":     PointID(a.Number),
			"vector": vectors[i],
			"payload": map[string]any{
				"article_number": a.Number,
				"article_header": a.Header,
				"text":           a.Text,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(ctx, fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

// Search returns the topK nearest articles, ordered by descending score as
// reported by Qdrant.
func (s *Store) Search(ctx context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	if topK <= 0 {
		topK = 3
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection)
	if err := s.postJSON(ctx, url, req, &resp); err != nil {
		return nil, err
	}
	chunks := make([]domain.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := domain.RetrievedChunk{Score: r.Score}
		if v, ok := r.Payload["article_number"].(string); ok {
			chunk.Number = v
		}
		if v, ok := r.Payload["article_header"].(string); ok {
			chunk.Header = v
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Document = v
		}
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// Count returns the exact number of points in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	url := fmt.Sprintf("%s/collections/%s/points/count", s.url, s.collection)
	if err := s.postJSON(ctx, url, map[string]any{"exact": true}, &resp); err != nil {
		return 0, err
	}
	return resp.Result.Count, nil
}

// PointID derives the stable point UUID for an article number. Qdrant point
// IDs must be integers or UUIDs, so the raw number cannot be used directly.
func PointID(number string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(number)).String()
}

func (s *Store) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *Store) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Store) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
