package domain

import (
	"context"
	"errors"
)

// Article is a single statute article produced by segmentation.
// Number doubles as the storage key and must be unique across the corpus.
type Article struct {
	Number string // full marker label, e.g. "MADDE 339"
	Header string // nearest preceding structural heading, may be empty
	Text   string // trimmed article body, never empty once filtered
}

// RetrievedChunk is one retrieved article with its provenance metadata.
// Chunks are constructed fresh per query and ordered by descending relevance.
type RetrievedChunk struct {
	Document string
	Number   string
	Header   string
	Score    float64
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Generator turns a prompt into free-text output.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// VectorStore persists article vectors and supports similarity search.
type VectorStore interface {
	// Recreate drops the collection if present and creates it fresh with the
	// given vector dimension. Re-ingestion is destructive-then-rebuild.
	Recreate(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, articles []Article, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, topK int) ([]RetrievedChunk, error)
	Count(ctx context.Context) (int, error)
}

// Error taxonomy. The HTTP boundary maps these to status codes; nothing else
// crosses it untranslated.
var (
	ErrParse            = errors.New("source text unreadable")
	ErrStoreUnavailable = errors.New("vector store unavailable")
	ErrUnauthorized     = errors.New("invalid or missing API key")
	ErrQuotaExceeded    = errors.New("rate limit exceeded")
	ErrGenerationFailed = errors.New("answer generation failed")
)
