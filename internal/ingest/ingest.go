// Package ingest rebuilds the corpus from the statute source file. The run is
// destructive-then-rebuild: the collection is dropped and recreated so all
// stored vectors come from the same embedding function, then fully
// repopulated from a fresh segmentation pass.
package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"kira-rag/internal/domain"
	"kira-rag/internal/segment"
)

// Pipeline wires segmentation, embedding and the corpus store.
type Pipeline struct {
	embedder domain.Embedder
	store    domain.VectorStore
	throttle *rate.Limiter
	log      zerolog.Logger
}

// New creates a pipeline. embedsPerSec throttles embedding calls so a large
// statute does not trip the provider's rate limits.
func New(embedder domain.Embedder, store domain.VectorStore, embedsPerSec float64, log zerolog.Logger) *Pipeline {
	if embedsPerSec <= 0 {
		embedsPerSec = 2
	}
	return &Pipeline{
		embedder: embedder,
		store:    store,
		throttle: rate.NewLimiter(rate.Limit(embedsPerSec), 1),
		log:      log,
	}
}

// Run ingests the statute at path and returns the stored article count.
// Nothing is written if the source cannot be read or yields no articles.
func (p *Pipeline) Run(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrParse, err)
	}

	articles, dropped := segment.Segment(string(data))
	for _, number := range dropped {
		p.log.Warn().Str("article", number).Msg("article has empty text after trimming, skipping")
	}
	if len(articles) == 0 {
		return 0, fmt.Errorf("no articles parsed from %s", path)
	}
	p.log.Info().Int("articles", len(articles)).Str("source", path).Msg("statute segmented")

	vectors := make([][]float32, len(articles))
	for i, a := range articles {
		if err := p.throttle.Wait(ctx); err != nil {
			return 0, err
		}
		vector, err := p.embedder.Embed(ctx, a.Text)
		if err != nil {
			return 0, fmt.Errorf("embedding %s failed: %w", a.Number, err)
		}
		vectors[i] = vector
	}

	if err := p.store.Recreate(ctx, len(vectors[0])); err != nil {
		return 0, fmt.Errorf("%w: recreate failed: %v", domain.ErrStoreUnavailable, err)
	}
	if err := p.store.Upsert(ctx, articles, vectors); err != nil {
		return 0, fmt.Errorf("%w: upsert failed: %v", domain.ErrStoreUnavailable, err)
	}

	count, err := p.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count failed: %v", domain.ErrStoreUnavailable, err)
	}
	if count != len(articles) {
		return count, fmt.Errorf("verification failed: stored %d documents, expected %d", count, len(articles))
	}
	p.log.Info().Int("documents", count).Msg("corpus rebuilt")
	return count, nil
}
