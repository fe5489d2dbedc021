package retrieval

import (
	"context"
	"errors"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
)

// fakeCorpus satisfies Corpus without loading anything.
type fakeCorpus struct {
	docs       []document.Document
	embeddings [][]float32
	embedder   domain.Embedder
}

func (c *fakeCorpus) Documents() []document.Document { return c.docs }
func (c *fakeCorpus) Embeddings() [][]float32        { return c.embeddings }
func (c *fakeCorpus) Embedder() domain.Embedder      { return c.embedder }

func (c *fakeCorpus) Mode() mode.Mode {
	if c.embedder != nil && len(c.embeddings) == len(c.docs) {
		return mode.Embedding
	}
	return mode.Keyword
}

// mapEmbedder returns a fixed vector per text, or fallbackVec for unknown texts.
type mapEmbedder struct {
	vectors     map[string][]float32
	fallbackVec []float32
	tokens      int
	err         error
}

func (m *mapEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	if v, ok := m.vectors[text]; ok {
		return domain.EmbeddingResult{Embedding: v, TotalTokens: m.tokens}, nil
	}
	if m.fallbackVec != nil {
		return domain.EmbeddingResult{Embedding: m.fallbackVec, TotalTokens: m.tokens}, nil
	}
	return domain.EmbeddingResult{}, errors.New("unknown text")
}

func techCorpDocs() []document.Document {
	return []document.Document{
		document.Reconstruct("1", "Company Profile", "TechCorp was founded in 2010 in San Francisco."),
		document.Reconstruct("2", "Products", "TechCorp offers TechAssist, DataInsight and CloudSecure."),
	}
}

func titles(docs []document.Document) []string {
	out := make([]string, len(docs))
	for i := range docs {
		out[i] = docs[i].Title()
	}
	return out
}
