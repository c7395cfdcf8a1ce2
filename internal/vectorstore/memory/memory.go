// Package memory is an in-memory corpus store using brute-force cosine
// similarity. It backs local experiments and is the deterministic stand-in
// for Qdrant in tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"kira-rag/internal/domain"
)

// Store holds article vectors in process memory.
type Store struct {
	mu        sync.RWMutex
	ready     bool
	dimension int
	vectors   [][]float32
	articles  []domain.Article
}

// New creates an empty store. Recreate must be called before Upsert.
func New() *Store { return &Store{} }

// Recreate discards all stored points and fixes the vector dimension.
func (s *Store) Recreate(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = true
	s.dimension = dimension
	s.vectors = nil
	s.articles = nil
	return nil
}

// Upsert appends articles with their vectors.
func (s *Store) Upsert(_ context.Context, articles []domain.Article, vectors [][]float32) error {
	if len(articles) != len(vectors) {
		return errors.New("articles and vectors length mismatch")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return errors.New("store not initialized")
	}
	for _, v := range vectors {
		if len(v) != s.dimension {
			return errors.New("vector dimension mismatch")
		}
	}
	s.articles = append(s.articles, articles...)
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the topK most similar articles by descending cosine score.
// Vectors are assumed L2-normalized, so the dot product is the score.
func (s *Store) Search(_ context.Context, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return nil, errors.New("store not initialized")
	}
	if topK <= 0 {
		topK = 3
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(s.vectors))
	for i := range s.vectors {
		scores[i] = scored{i, dot(s.vectors[i], vector)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	if topK > len(scores) {
		topK = len(scores)
	}
	chunks := make([]domain.RetrievedChunk, 0, topK)
	for _, sc := range scores[:topK] {
		a := s.articles[sc.idx]
		chunks = append(chunks, domain.RetrievedChunk{
			Document: a.Text,
			Number:   a.Number,
			Header:   a.Header,
			Score:    sc.score,
		})
	}
	return chunks, nil
}

// Count returns the number of stored articles.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return 0, errors.New("store not initialized")
	}
	return len(s.articles), nil
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
