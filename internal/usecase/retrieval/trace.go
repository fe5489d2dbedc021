package retrieval

import (
	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
)

// Score is the similarity of one corpus document to the query.
type Score struct {
	ID         string
	Title      string
	Similarity float64
}

// Trace describes one executed search.
type Trace struct {
	Query string
	// Mode is the path that produced the results; an embedding retriever
	// reports Keyword when the query could not be embedded.
	Mode mode.Mode
	// Scores is set on the embedding path only, in corpus order.
	Scores []Score
	Titles []string
}

// Option configures a Retriever.
type Option func(*options)

type options struct {
	observer      func(Trace)
	queryEmbedder domain.Embedder
}

// WithObserver registers a callback invoked after every search.
func WithObserver(fn func(Trace)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// WithQueryEmbedder embeds queries with e instead of the corpus embedder.
// e must produce vectors in the same space, typically the corpus model with
// a query instruction prefix.
func WithQueryEmbedder(e domain.Embedder) Option {
	return func(o *options) {
		o.queryEmbedder = e
	}
}
