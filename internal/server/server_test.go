package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kira-rag/internal/domain"
	"kira-rag/internal/ratelimit"
	"kira-rag/internal/retriever"
	"kira-rag/internal/service"
	"kira-rag/internal/vectorstore/memory"
)

const testSecret = "test-secret"

type stubEmbedder struct{}

func (stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

type stubGenerator struct {
	answer string
	err    error
}

func (g *stubGenerator) Generate(context.Context, string, string) (string, error) {
	return g.answer, g.err
}

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.New()
	require.NoError(t, store.Recreate(context.Background(), 3))
	require.NoError(t, store.Upsert(context.Background(),
		[]domain.Article{
			{Number: "MADDE 339", Header: "A. Uygulama alanı", Text: "Konut ve çatılı işyeri kiralarına ilişkin hükümler uygulanır."},
		},
		[][]float32{{1, 0, 0}},
	))
	return store
}

// newTestServer wires a full server over in-memory backends. Each call uses a
// fresh metrics registry so tests never collide on collector registration.
func newTestServer(t *testing.T, store domain.VectorStore, gen domain.Generator, limit int) http.Handler {
	t.Helper()
	svc := service.New(retriever.New(stubEmbedder{}, store), gen, store, 3, zerolog.Nop())
	limiter := ratelimit.New(limit, time.Minute)
	srv := New(svc, testSecret, limiter, prometheus.NewRegistry(), zerolog.Nop())
	return srv.Handler()
}

func postQuery(handler http.Handler, apiKey, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	if apiKey != "" {
		req.Header.Set(headerAPIKey, apiKey)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestQueryOK(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "MADDE 339 uyarınca uygulanır."}, 10)

	rec := postQuery(handler, testSecret, `{"query_text":"kira hükümleri"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Answer           string `json:"answer"`
		RetrievedSources []struct {
			Document string `json:"document"`
			Metadata struct {
				ArticleNumber string `json:"article_number"`
				ArticleHeader string `json:"article_header"`
			} `json:"metadata"`
		} `json:"retrieved_sources"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MADDE 339 uyarınca uygulanır.", resp.Answer)
	require.Len(t, resp.RetrievedSources, 1)
	assert.Equal(t, "MADDE 339", resp.RetrievedSources[0].Metadata.ArticleNumber)
	assert.Equal(t, "A. Uygulama alanı", resp.RetrievedSources[0].Metadata.ArticleHeader)
	assert.NotEmpty(t, resp.RetrievedSources[0].Document)
}

func TestQueryRequiresAPIKey(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 10)

	for _, key := range []string{"", "wrong-key"} {
		rec := postQuery(handler, key, `{"query_text":"soru"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid or missing API key.")
	}
}

func TestInvalidKeyDoesNotConsumeQuota(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 2)

	// Burn more failed auth attempts than the whole quota.
	for i := 0; i < 5; i++ {
		rec := postQuery(handler, "wrong-key", `{"query_text":"soru"}`)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	// The full quota must still be available to the valid key.
	for i := 0; i < 2; i++ {
		rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestQueryRateLimited(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 3)

	for i := 0; i < 3; i++ {
		rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate limit exceeded: at most 3 requests per 60 seconds.")
}

func TestQueryBadBody(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 10)

	for _, body := range []string{"", "{not json", `{"query_text":""}`, `{"other_field":"x"}`} {
		rec := postQuery(handler, testSecret, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestQueryStoreUnavailable(t *testing.T) {
	// A store that was never initialized fails searches, which must surface
	// as 503 rather than a generic 500.
	handler := newTestServer(t, memory.New(), &stubGenerator{answer: "cevap"}, 10)

	rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "Backing services are not available")
}

func TestQueryGenerationFailure(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{err: errors.New("model overloaded")}, 10)

	rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	// Internal failure detail must not leak to the caller.
	assert.NotContains(t, rec.Body.String(), "model overloaded")
}

func TestHealthHealthy(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 10)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report service.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, 1, report.CollectionDocuments)
}

func TestHealthUnhealthyStill200(t *testing.T) {
	handler := newTestServer(t, memory.New(), &stubGenerator{answer: "cevap"}, 10)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var report service.HealthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "unhealthy", report.Status)
	assert.NotEmpty(t, report.Reason)
}

func TestHealthNeedsNoAPIKey(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 10)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, seededStore(t), &stubGenerator{answer: "cevap"}, 10)

	// Generate one answered query so the counter has a sample.
	rec := postQuery(handler, testSecret, `{"query_text":"soru"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mrec := httptest.NewRecorder()
	handler.ServeHTTP(mrec, req)

	require.Equal(t, http.StatusOK, mrec.Code)
	assert.Contains(t, mrec.Body.String(), `outcome="answered"`)
}
