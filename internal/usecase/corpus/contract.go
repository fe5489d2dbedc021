package corpus

import (
	"context"

	"github.com/kailas-cloud/ctxdex/internal/domain/document"
)

// Source provides the raw corpus records.
type Source interface {
	Load(ctx context.Context) ([]document.Document, error)
}
