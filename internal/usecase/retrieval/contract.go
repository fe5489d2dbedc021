package retrieval

import (
	"context"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
	"github.com/kailas-cloud/ctxdex/internal/domain/query"
)

// Retriever ranks corpus documents for a query. Both variants satisfy it so
// callers never branch on mode.
type Retriever interface {
	Search(ctx context.Context, q query.Query) ([]document.Document, error)
	// Mode reports the strategy selected at construction.
	Mode() mode.Mode
}

// Corpus is the read-only view of a loaded corpus store.
type Corpus interface {
	Documents() []document.Document
	Embeddings() [][]float32
	Embedder() domain.Embedder
	Mode() mode.Mode
}
