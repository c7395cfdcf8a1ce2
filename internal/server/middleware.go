package server

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"kira-rag/internal/domain"
	"kira-rag/internal/metrics"
)

// headerAPIKey carries the shared secret on query requests.
const headerAPIKey = "X-API-Key"

// withRequestLog tags each request with an ID and emits one structured log
// line per completed request, keyed by client identity.
func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		logger := s.log.With().
			Str("request_id", requestID).
			Str("client", clientIdentity(r)).
			Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		logger.Info().
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

// requireAPIKey rejects requests without the configured secret. Auth runs
// before rate limiting, so an invalid key never consumes quota.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.validKey(r.Header.Get(headerAPIKey)) {
			s.metrics.ObserveQuery(metrics.OutcomeRejectedAuth, 0, 0)
			s.writeQueryError(w, r, domain.ErrUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimited enforces the fixed-window quota per client identity.
func (s *Server) rateLimited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientIdentity(r)) {
			s.metrics.ObserveQuery(metrics.OutcomeRejectedQuota, 0, 0)
			s.writeQueryError(w, r, domain.ErrQuotaExceeded)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIdentity keys rate limiting by network origin. Behind a shared proxy
// this conflates users; keying by authenticated principal is a deployment
// decision.
func clientIdentity(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
