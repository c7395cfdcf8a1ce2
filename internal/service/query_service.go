// Package service orchestrates the retrieval-augmented query pipeline:
// retrieve relevant articles, assemble a grounding prompt, generate an answer.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"kira-rag/internal/domain"
	"kira-rag/internal/prompt"
	"kira-rag/internal/retriever"
)

// Result is an answered query with the chunks that grounded it, echoed back
// to the caller for provenance.
type Result struct {
	Answer  string
	Sources []domain.RetrievedChunk
}

// HealthReport summarizes backing-service readiness. It is always produced,
// degrading to an unhealthy report with a reason rather than failing.
type HealthReport struct {
	Status              string            `json:"status"`
	Reason              string            `json:"reason,omitempty"`
	Services            map[string]string `json:"services,omitempty"`
	CollectionDocuments int               `json:"collection_documents"`
	Timestamp           float64           `json:"timestamp"`
}

// QueryService runs the per-request pipeline against process-wide client
// handles. The handles are constructed once at startup and never reconfigured
// by requests.
type QueryService struct {
	retriever *retriever.Retriever
	generator domain.Generator
	store     domain.VectorStore
	topK      int
	log       zerolog.Logger
}

// New creates a QueryService retrieving topK chunks per query.
func New(r *retriever.Retriever, g domain.Generator, store domain.VectorStore, topK int, log zerolog.Logger) *QueryService {
	if topK <= 0 {
		topK = 3
	}
	return &QueryService{
		retriever: r,
		generator: g,
		store:     store,
		topK:      topK,
		log:       log,
	}
}

// Query answers a user question grounded in the retrieved articles. The two
// external round trips are sequential: the prompt depends on retrieval.
func (s *QueryService) Query(ctx context.Context, query string) (*Result, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	chunks, err := s.retriever.Retrieve(ctx, query, s.topK)
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	s.log.Info().Int("retrieved", len(chunks)).Str("query", truncate(query, 80)).Msg("retrieval completed")

	p := prompt.Assemble(query, chunks)

	answer, err := s.generator.Generate(ctx, prompt.SystemMessage, p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	s.log.Info().Int("answer_len", len(answer)).Int("sources", len(chunks)).Msg("query answered")

	return &Result{Answer: answer, Sources: chunks}, nil
}

// Health reports store reachability and corpus size. It never returns an
// error; failures degrade the report instead.
func (s *QueryService) Health(ctx context.Context) HealthReport {
	count, err := s.store.Count(ctx)
	if err != nil {
		return HealthReport{
			Status:    "unhealthy",
			Reason:    err.Error(),
			Timestamp: unixNow(),
		}
	}
	return HealthReport{
		Status: "healthy",
		Services: map[string]string{
			"vector_store": "ok",
			"generator":    "ok",
		},
		CollectionDocuments: count,
		Timestamp:           unixNow(),
	}
}

func unixNow() float64 {
	return float64(time.Now().UnixMilli()) / 1000.0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
