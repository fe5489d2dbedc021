package health

import (
	"context"

	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
)

// Corpus reports the state of the loaded corpus.
type Corpus interface {
	Len() int
	Mode() mode.Mode
}

// CachePinger checks embedding-cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
