package mode

// Mode is the retrieval strategy a corpus store was initialized with.
type Mode string

// Retrieval mode constants.
const (
	// Embedding ranks documents by cosine similarity of embedding vectors.
	Embedding Mode = "embedding"
	// Keyword matches the query as a case-insensitive substring.
	Keyword Mode = "keyword"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Embedding || m == Keyword
}

// All returns every mode, in a stable order, for metric initialization.
func All() []Mode {
	return []Mode{Embedding, Keyword}
}
