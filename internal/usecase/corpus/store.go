// Package corpus builds the in-memory document store that retrieval runs on.
package corpus

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
	"github.com/kailas-cloud/ctxdex/internal/metrics"
)

// Store holds the documents and, in embedding mode, one vector per document
// in the same order. It is read-only after Load.
type Store struct {
	docs       []document.Document
	embeddings [][]float32
	embedder   domain.Embedder
	mode       mode.Mode
}

// Load reads the corpus and embeds it. It never fails: an unreadable corpus
// yields an empty store, and any embedding failure leaves the store in
// keyword mode for its lifetime.
func Load(ctx context.Context, src Source, embedder domain.Embedder, logger *zap.Logger) *Store {
	s := &Store{mode: mode.Keyword}

	docs, err := src.Load(ctx)
	if err != nil {
		logger.Warn("Corpus load failed, continuing with empty corpus", zap.Error(err))
		metrics.CorpusLoadErrorsTotal.Inc()
		s.publish()
		return s
	}
	s.docs = docs

	if embedder == nil {
		logger.Info("No embedder configured, using keyword retrieval")
	} else if vecs, err := embedDocuments(ctx, embedder, docs); err != nil {
		logger.Warn("Document embedding failed, using keyword retrieval", zap.Error(err))
	} else {
		s.embeddings = vecs
		s.embedder = embedder
		s.mode = mode.Embedding
	}

	logger.Info("Corpus loaded",
		zap.Int("documents", len(s.docs)),
		zap.String("mode", string(s.mode)),
	)
	s.publish()
	return s
}

// New builds a store from already embedded documents. A nil embedder or a
// vector count that differs from the document count selects keyword mode.
func New(docs []document.Document, embeddings [][]float32, embedder domain.Embedder) *Store {
	s := &Store{docs: docs, mode: mode.Keyword}
	if embedder != nil && len(embeddings) == len(docs) {
		s.embeddings = embeddings
		s.embedder = embedder
		s.mode = mode.Embedding
	}
	return s
}

func embedDocuments(ctx context.Context, e domain.Embedder, docs []document.Document) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].EmbeddingText()
	}

	res, err := domain.EmbedTexts(ctx, e, texts)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingInit, err)
	}
	return res.Embeddings, nil
}

func (s *Store) publish() {
	metrics.CorpusDocuments.Set(float64(len(s.docs)))
	for _, m := range mode.All() {
		v := 0.0
		if m == s.mode {
			v = 1
		}
		metrics.RetrievalMode.WithLabelValues(string(m)).Set(v)
	}
}

// Documents returns the corpus in load order.
func (s *Store) Documents() []document.Document { return s.docs }

// Embeddings returns one vector per document, or nil in keyword mode.
func (s *Store) Embeddings() [][]float32 { return s.embeddings }

// Embedder returns the embedder the corpus was embedded with, or nil in keyword mode.
func (s *Store) Embedder() domain.Embedder { return s.embedder }

// Mode reports the retrieval mode selected at load time.
func (s *Store) Mode() mode.Mode { return s.mode }

// Len returns the number of documents.
func (s *Store) Len() int { return len(s.docs) }
