// Package retriever normalizes vector-store lookups into retrieved chunks.
package retriever

import (
	"context"
	"fmt"

	"kira-rag/internal/domain"
)

// Retriever embeds a query and asks the vector store for the most similar
// articles. Query-time embeddings use the same embedder that produced the
// ingestion-time vectors.
type Retriever struct {
	embedder domain.Embedder
	store    domain.VectorStore
}

// New creates a retriever over the given embedder and store.
func New(embedder domain.Embedder, store domain.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// Retrieve returns up to k chunks ordered by descending relevance. An empty
// result is a valid outcome, distinct from a store failure.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.RetrievedChunk, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if k <= 0 {
		k = 3
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := r.store.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return chunks, nil
}
