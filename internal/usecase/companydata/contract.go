package companydata

import (
	"context"

	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
	"github.com/kailas-cloud/ctxdex/internal/domain/query"
)

// Retriever ranks corpus documents for a query.
type Retriever interface {
	Search(ctx context.Context, q query.Query) ([]document.Document, error)
	Mode() mode.Mode
}
