// Package retrieval ranks corpus documents against a free-text query.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
	"github.com/kailas-cloud/ctxdex/internal/domain/query"
	"github.com/kailas-cloud/ctxdex/internal/metrics"
)

// New selects the retriever variant from the corpus mode.
func New(c Corpus, logger *zap.Logger, opts ...Option) Retriever {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	kw := &KeywordSearch{docs: c.Documents(), logger: logger, opts: o}
	if c.Mode() != mode.Embedding {
		return kw
	}
	embedder := c.Embedder()
	if o.queryEmbedder != nil {
		embedder = o.queryEmbedder
	}
	return &EmbeddingSearch{
		docs:       c.Documents(),
		embeddings: c.Embeddings(),
		embedder:   embedder,
		fallback:   kw,
		logger:     logger,
		opts:       o,
	}
}

// EmbeddingSearch ranks documents by cosine similarity to the query vector.
type EmbeddingSearch struct {
	docs       []document.Document
	embeddings [][]float32
	embedder   domain.Embedder
	fallback   *KeywordSearch
	logger     *zap.Logger
	opts       options
}

// Mode implements Retriever.
func (s *EmbeddingSearch) Mode() mode.Mode { return mode.Embedding }

// Search returns the first min(top_k, N) documents by descending similarity.
// Ties keep corpus order. The similarity threshold does not filter results.
// If the query cannot be embedded, this call is served by keyword matching.
func (s *EmbeddingSearch) Search(ctx context.Context, q query.Query) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	start := time.Now()

	scores, err := s.score(ctx, q.Text())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("search: %w", ctxErr)
		}
		s.logger.Warn("Query embedding failed, using keyword match for this request", zap.Error(err))
		return s.fallback.Search(ctx, q)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]].Similarity > scores[order[b]].Similarity
	})

	n := min(q.TopK(), len(order))
	out := make([]document.Document, n)
	for i := range n {
		out[i] = s.docs[order[i]]
	}

	finish(s.logger, s.opts, Trace{Query: q.Text(), Mode: mode.Embedding, Scores: scores}, out, start)
	return out, nil
}

func (s *EmbeddingSearch) score(ctx context.Context, text string) ([]Score, error) {
	res, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	scores := make([]Score, len(s.docs))
	for i := range s.docs {
		sim, err := Cosine(s.embeddings[i], res.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score document %s: %w", s.docs[i].ID(), err)
		}
		scores[i] = Score{ID: s.docs[i].ID(), Title: s.docs[i].Title(), Similarity: sim}
	}
	return scores, nil
}

// KeywordSearch matches the whole query as a case-insensitive substring of
// title or content.
type KeywordSearch struct {
	docs   []document.Document
	logger *zap.Logger
	opts   options
}

// Mode implements Retriever.
func (s *KeywordSearch) Mode() mode.Mode { return mode.Keyword }

// Search returns every matching document in corpus order. top_k is not
// applied on this path. An empty query matches every document.
func (s *KeywordSearch) Search(ctx context.Context, q query.Query) ([]document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	start := time.Now()

	needle := strings.ToLower(q.Text())
	out := make([]document.Document, 0)
	for i := range s.docs {
		d := &s.docs[i]
		if strings.Contains(strings.ToLower(d.Title()), needle) ||
			strings.Contains(strings.ToLower(d.Content()), needle) {
			out = append(out, *d)
		}
	}

	finish(s.logger, s.opts, Trace{Query: q.Text(), Mode: mode.Keyword}, out, start)
	return out, nil
}

func finish(logger *zap.Logger, o options, tr Trace, out []document.Document, start time.Time) {
	tr.Titles = make([]string, len(out))
	for i := range out {
		tr.Titles[i] = out[i].Title()
	}

	m := string(tr.Mode)
	metrics.SearchRequestsTotal.WithLabelValues(m).Inc()
	metrics.SearchDuration.WithLabelValues(m).Observe(time.Since(start).Seconds())
	metrics.SearchResults.WithLabelValues(m).Observe(float64(len(out)))

	if ce := logger.Check(zap.DebugLevel, "Search completed"); ce != nil {
		fields := []zap.Field{
			zap.String("query", tr.Query),
			zap.String("mode", m),
			zap.Strings("titles", tr.Titles),
		}
		if tr.Scores != nil {
			sims := make([]float64, len(tr.Scores))
			for i, sc := range tr.Scores {
				sims[i] = sc.Similarity
			}
			fields = append(fields, zap.Float64s("scores", sims))
		}
		ce.Write(fields...)
	}

	if o.observer != nil {
		o.observer(tr)
	}
}
