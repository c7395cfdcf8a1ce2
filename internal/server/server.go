// Package server exposes the query service over JSON HTTP and owns
// request-level security: API-key validation and per-client rate limiting.
// All internal errors are translated to transport codes here; none cross the
// boundary untranslated.
package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"kira-rag/internal/domain"
	"kira-rag/internal/metrics"
	"kira-rag/internal/ratelimit"
	"kira-rag/internal/service"
)

// Server routes HTTP requests into the query service.
type Server struct {
	svc      *service.QueryService
	secret   string
	limiter  *ratelimit.Limiter
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	log      zerolog.Logger
}

// New creates a server. The API secret must be non-empty; its absence is a
// startup-fatal condition checked by the caller.
func New(svc *service.QueryService, secret string, limiter *ratelimit.Limiter, reg *prometheus.Registry, log zerolog.Logger) *Server {
	return &Server{
		svc:      svc,
		secret:   secret,
		limiter:  limiter,
		metrics:  metrics.New(reg),
		registry: reg,
		log:      log,
	}
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("POST /query", s.withRequestLog(s.requireAPIKey(s.rateLimited(http.HandlerFunc(s.handleQuery)))))
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

type queryRequest struct {
	QueryText string `json:"query_text"`
}

type sourceMetadata struct {
	ArticleNumber string `json:"article_number"`
	ArticleHeader string `json:"article_header"`
}

type querySource struct {
	Document string         `json:"document"`
	Metadata sourceMetadata `json:"metadata"`
}

type queryResponse struct {
	Answer           string        `json:"answer"`
	RetrievedSources []querySource `json:"retrieved_sources"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QueryText == "" {
		s.metrics.ObserveQuery(metrics.OutcomeFailed, 0, 0)
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Request body must be JSON with a non-empty query_text."})
		return
	}

	result, err := s.svc.Query(r.Context(), req.QueryText)
	if err != nil {
		s.metrics.ObserveQuery(metrics.OutcomeFailed, 0, 0)
		s.writeQueryError(w, r, err)
		return
	}

	sources := make([]querySource, 0, len(result.Sources))
	for _, chunk := range result.Sources {
		sources = append(sources, querySource{
			Document: chunk.Document,
			Metadata: sourceMetadata{
				ArticleNumber: chunk.Number,
				ArticleHeader: chunk.Header,
			},
		})
	}

	s.metrics.ObserveQuery(metrics.OutcomeAnswered, time.Since(start), len(sources))
	writeJSON(w, http.StatusOK, queryResponse{Answer: result.Answer, RetrievedSources: sources})
}

// writeQueryError maps the error taxonomy to transport codes. Internal detail
// is logged server-side, never leaked to the caller.
func (s *Server) writeQueryError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		logger.Error().Err(err).Msg("backing store unavailable")
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Detail: "Backing services are not available. Server may be initializing or encountered an error.",
		})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Invalid or missing API key."})
	case errors.Is(err, domain.ErrQuotaExceeded):
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Detail: fmt.Sprintf("Rate limit exceeded: at most %d requests per %d seconds. Please slow down.",
				s.limiter.Limit(), int(s.limiter.Window().Seconds())),
		})
	case errors.Is(err, domain.ErrGenerationFailed):
		logger.Error().Err(err).Msg("generation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: "An internal error occurred while generating the answer.",
		})
	default:
		logger.Error().Err(err).Msg("unexpected query failure")
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Detail: "An unexpected error occurred.",
		})
	}
}

// handleHealth never fails at the transport level; an unreachable store
// degrades to an unhealthy report.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Health(r.Context()))
}

// validKey compares the presented key against the configured secret in
// constant time.
func (s *Server) validKey(key string) bool {
	return len(key) > 0 && subtle.ConstantTimeCompare([]byte(key), []byte(s.secret)) == 1
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
