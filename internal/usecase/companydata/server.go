// Package companydata answers company-data requests with retrieved corpus
// documents and renders them as prompt context.
package companydata

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/exchange"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
	"github.com/kailas-cloud/ctxdex/internal/domain/query"
	"github.com/kailas-cloud/ctxdex/internal/usecase/retrieval"
)

// Config holds the retrieval parameters applied to every façade request.
type Config struct {
	TopK                int
	SimilarityThreshold float64
}

// DefaultConfig returns the default retrieval parameters.
func DefaultConfig() Config {
	return Config{TopK: query.DefaultTopK, SimilarityThreshold: query.DefaultSimilarityThreshold}
}

// Server is the request-handling half of the company-data boundary.
type Server struct {
	retriever Retriever
	cfg       Config
	logger    *zap.Logger
}

// NewServer creates a Server over a retriever.
func NewServer(r Retriever, cfg Config, logger *zap.Logger) *Server {
	return &Server{retriever: r, cfg: cfg, logger: logger}
}

// Setup builds a retriever over the corpus and both halves of the boundary around it.
func Setup(c retrieval.Corpus, cfg Config, logger *zap.Logger, opts ...retrieval.Option) (*Client, *Server) {
	srv := NewServer(retrieval.New(c, logger, opts...), cfg, logger)
	return NewClient(srv), srv
}

// HandleRequest retrieves documents for req.Query and wraps them in the
// response envelope. Retrieval degradation is never reported as an error;
// only context cancellation is.
func (s *Server) HandleRequest(ctx context.Context, req exchange.Request) (exchange.Response, error) {
	q, err := query.New(req.Query, s.cfg.TopK, s.cfg.SimilarityThreshold)
	if err != nil {
		s.logger.Debug("Request query out of range, using defaults", zap.Error(err))
		q = query.Default(req.Query)
	}

	docs, err := s.retriever.Search(ctx, q)
	if err != nil {
		return exchange.Response{}, fmt.Errorf("handle request: %w", err)
	}

	s.logger.Debug("Company data request handled",
		zap.String("request_id", req.RequestID),
		zap.String("type", req.Type),
		zap.Int("results", len(docs)),
	)
	return exchange.NewResponse(req.Query, docs), nil
}

// Search runs a retrieval with caller-supplied parameters.
func (s *Server) Search(ctx context.Context, q query.Query) ([]document.Document, error) {
	docs, err := s.retriever.Search(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return docs, nil
}

// Mode reports the retrieval mode selected at startup.
func (s *Server) Mode() mode.Mode { return s.retriever.Mode() }

// Config returns the retrieval parameters applied to requests.
func (s *Server) Config() Config { return s.cfg }
