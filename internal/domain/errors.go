package domain

import "errors"

var (
	// ErrCorpusLoad signals a missing, unreadable or malformed corpus source.
	ErrCorpusLoad = errors.New("corpus load failed")
	// ErrEmbeddingInit signals that document embeddings could not be computed.
	ErrEmbeddingInit = errors.New("embedding initialization failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingCountMismatch signals a provider returning the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
	// ErrVectorDimMismatch signals vectors of different lengths being compared.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrInvalidQuery signals query parameters outside their allowed range.
	ErrInvalidQuery = errors.New("invalid query")
)
