package query

import (
	"fmt"

	"github.com/kailas-cloud/ctxdex/internal/domain"
)

// Query parameter defaults and limits.
const (
	DefaultTopK                = 3
	DefaultSimilarityThreshold = 0.3
	MaxTopK                    = 100
)

// Query is a validated retrieval request. The zero value is not usable; build it with New.
type Query struct {
	text      string
	topK      int
	threshold float64
}

// New validates and normalizes query parameters.
// topK <= 0 selects DefaultTopK; topK above MaxTopK is clamped.
// Any text is valid input and is kept byte for byte, including the empty string.
func New(text string, topK int, threshold float64) (Query, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if threshold < 0 || threshold > 1 {
		return Query{}, fmt.Errorf("%w: similarity_threshold must be between 0 and 1", domain.ErrInvalidQuery)
	}
	return Query{text: text, topK: topK, threshold: threshold}, nil
}

// Default builds a query with default top_k and similarity threshold.
func Default(text string) Query {
	return Query{text: text, topK: DefaultTopK, threshold: DefaultSimilarityThreshold}
}

// Text returns the free-text query.
func (q *Query) Text() string { return q.text }

// TopK returns the maximum number of ranked results on the embedding path.
func (q *Query) TopK() int { return q.topK }

// SimilarityThreshold returns the accepted threshold. Retrieval does not filter on it.
func (q *Query) SimilarityThreshold() float64 { return q.threshold }
