package corpus

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
)

// --- Mocks ---

type mockSource struct {
	docs []document.Document
	err  error
}

func (m *mockSource) Load(_ context.Context) ([]document.Document, error) { return m.docs, m.err }

type mockEmbedder struct {
	texts []string
	err   error
	short bool
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	m.texts = append(m.texts, text)
	return domain.EmbeddingResult{Embedding: []float32{float32(len(text)), 1}}, nil
}

func (m *mockEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := domain.BatchFallback(ctx, m, texts)
	if err != nil {
		return res, err
	}
	if m.short {
		res.Embeddings = res.Embeddings[:len(res.Embeddings)-1]
	}
	return res, nil
}

func sampleDocs() []document.Document {
	return []document.Document{
		document.Reconstruct("1", "About TechCorp", "Founded in 2010."),
		document.Reconstruct("2", "Products", "AI tools."),
	}
}

// --- Tests ---

func TestLoad_EmbeddingMode(t *testing.T) {
	emb := &mockEmbedder{}
	s := Load(context.Background(), &mockSource{docs: sampleDocs()}, emb, zap.NewNop())

	if s.Mode() != mode.Embedding {
		t.Fatalf("expected embedding mode, got %q", s.Mode())
	}
	if s.Len() != 2 || len(s.Embeddings()) != 2 {
		t.Fatalf("expected 2 docs and 2 embeddings, got %d/%d", s.Len(), len(s.Embeddings()))
	}
	if s.Embedder() != emb {
		t.Error("expected store to keep the corpus embedder")
	}
	want := []string{"About TechCorp Founded in 2010.", "Products AI tools."}
	for i, w := range want {
		if emb.texts[i] != w {
			t.Errorf("text %d: expected %q, got %q", i, w, emb.texts[i])
		}
	}
}

func TestLoad_SourceError(t *testing.T) {
	src := &mockSource{err: domain.ErrCorpusLoad}
	s := Load(context.Background(), src, &mockEmbedder{}, zap.NewNop())

	if s.Len() != 0 {
		t.Errorf("expected empty corpus, got %d", s.Len())
	}
	if s.Mode() != mode.Keyword {
		t.Errorf("expected keyword mode, got %q", s.Mode())
	}
	if s.Embeddings() != nil || s.Embedder() != nil {
		t.Error("expected no embeddings and no embedder")
	}
}

func TestLoad_KeywordFallback(t *testing.T) {
	tests := []struct {
		name     string
		embedder domain.Embedder
	}{
		{"nil embedder", nil},
		{"embedder error", &mockEmbedder{err: errors.New("model unavailable")}},
		{"count mismatch", &mockEmbedder{short: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Load(context.Background(), &mockSource{docs: sampleDocs()}, tt.embedder, zap.NewNop())
			if s.Mode() != mode.Keyword {
				t.Errorf("expected keyword mode, got %q", s.Mode())
			}
			if s.Len() != 2 {
				t.Errorf("documents must survive embedding failure, got %d", s.Len())
			}
			if s.Embeddings() != nil {
				t.Error("expected no embeddings in keyword mode")
			}
		})
	}
}

func TestNew_SelectsMode(t *testing.T) {
	docs := sampleDocs()
	emb := &mockEmbedder{}

	if s := New(docs, [][]float32{{1}, {2}}, emb); s.Mode() != mode.Embedding {
		t.Errorf("expected embedding mode, got %q", s.Mode())
	}
	if s := New(docs, [][]float32{{1}}, emb); s.Mode() != mode.Keyword {
		t.Errorf("expected keyword mode on count mismatch, got %q", s.Mode())
	}
	if s := New(docs, nil, nil); s.Mode() != mode.Keyword {
		t.Errorf("expected keyword mode without embedder, got %q", s.Mode())
	}
}
