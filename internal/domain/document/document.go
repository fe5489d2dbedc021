package document

// SourcePrefix is prepended to the document ID to build the citation source.
const SourcePrefix = "Company Database - "

// Document is a corpus entry (immutable value object).
type Document struct {
	id      string
	title   string
	content string
}

// Reconstruct creates a Document. Empty fields are kept as given;
// ID uniqueness across a corpus is assumed, not enforced.
func Reconstruct(id, title, content string) Document {
	return Document{id: id, title: title, content: content}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Title returns the document title.
func (d *Document) Title() string { return d.title }

// Content returns the document body.
func (d *Document) Content() string { return d.content }

// EmbeddingText is the text the document is embedded from: title and content joined by one space.
func (d *Document) EmbeddingText() string { return d.title + " " + d.content }

// Source returns the citation attached to the document in responses.
func (d *Document) Source() string { return SourcePrefix + d.id }
