package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/exchange"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
	"github.com/kailas-cloud/ctxdex/internal/domain/query"
	"github.com/kailas-cloud/ctxdex/internal/logger"
	"github.com/kailas-cloud/ctxdex/internal/usecase/companydata"
	healthuc "github.com/kailas-cloud/ctxdex/internal/usecase/health"
)

// maxBodyBytes caps request bodies; queries are limited to a few KiB anyway.
const maxBodyBytes = 64 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the context-retrieval HTTP API.
type Server struct {
	facade        *companydata.Server
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(facade *companydata.Server, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{
		facade: facade,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(context.Canceled, http.StatusBadRequest, ErrorCodeBadRequest),
	}
	return s
}

// PostContext handles POST /v1/context.
func (s *Server) PostContext(w http.ResponseWriter, r *http.Request) {
	var req exchange.Request
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.facade.HandleRequest(ctx, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	s.setRetrievalHeaders(w, usage)
	writeJSON(w, http.StatusOK, resp)
}

// SearchContext handles GET /v1/context/search.
func (s *Server) SearchContext(w http.ResponseWriter, r *http.Request) {
	params, err := bindSearchParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, err.Error())
		return
	}

	cfg := s.facade.Config()
	topK, threshold := cfg.TopK, cfg.SimilarityThreshold
	if params.TopK != nil {
		topK = *params.TopK
	}
	if params.SimilarityThreshold != nil {
		threshold = *params.SimilarityThreshold
	}

	q, err := query.New(params.Q, topK, threshold)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	docs, err := s.facade.Search(ctx, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]SearchItem, len(docs))
	for i := range docs {
		d := &docs[i]
		items[i] = SearchItem{ID: d.ID(), Title: d.Title(), Content: d.Content(), Source: d.Source()}
	}

	m := s.setRetrievalHeaders(w, usage)
	writeJSON(w, http.StatusOK, SearchResponse{Items: items, Total: len(items), Mode: string(m)})
}

// PostPrompt handles POST /v1/context/prompt.
func (s *Server) PostPrompt(w http.ResponseWriter, r *http.Request) {
	var req PromptRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "prompt is required")
		return
	}
	q := req.Query
	if q == "" {
		q = req.Prompt
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.facade.HandleRequest(ctx, exchange.Request{Query: q, Type: exchange.TypeCompanyData})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	block := companydata.FormatForLLM(&resp)
	s.setRetrievalHeaders(w, usage)
	writeJSON(w, http.StatusOK, PromptResponse{
		Context: block,
		Prompt:  companydata.AugmentPrompt(req.Prompt, block),
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// Degraded stores still answer requests, so only an empty corpus
	// takes the instance out of rotation.
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unavailable {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func bindSearchParams(r *http.Request) (SearchParams, error) {
	var p SearchParams
	values := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, true, "q", values, &p.Q); err != nil {
		return SearchParams{}, err //nolint:wrapcheck // message is client-facing
	}
	if err := runtime.BindQueryParameter("form", true, false, "top_k", values, &p.TopK); err != nil {
		return SearchParams{}, err //nolint:wrapcheck // message is client-facing
	}
	err := runtime.BindQueryParameter("form", true, false, "similarity_threshold", values, &p.SimilarityThreshold)
	if err != nil {
		return SearchParams{}, err //nolint:wrapcheck // message is client-facing
	}
	return p, nil
}

// setRetrievalHeaders reports the executed mode and, when the query was
// embedded, the tokens it consumed. An embedding retriever that did not
// embed the query served it from the keyword path.
func (s *Server) setRetrievalHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) mode.Mode {
	m := s.facade.Mode()
	if m == mode.Embedding && (usage == nil || !usage.Used) {
		m = mode.Keyword
	}
	w.Header().Set("X-Retrieval-Mode", string(m))
	if usage != nil && usage.Used {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.TotalTokens))
	}
	return m
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v) //nolint:wrapcheck // message is client-facing
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidQuery,
		context.Canceled,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
