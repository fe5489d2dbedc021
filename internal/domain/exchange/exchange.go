// Package exchange holds the request/response envelope passed across the
// in-process company-data client/server boundary and the HTTP surface.
package exchange

import "github.com/kailas-cloud/ctxdex/internal/domain/document"

// TypeCompanyData is the request type set by the company-data client.
const TypeCompanyData = "company_data"

// Request is a company-data request. Keys other than query are informational.
type Request struct {
	Query     string `json:"query"`
	Type      string `json:"type,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// Item is one retrieved document as exposed to consumers.
type Item struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// Response is the envelope returned for a request.
type Response struct {
	Results      []Item `json:"results"`
	Query        string `json:"query"`
	TotalResults int    `json:"total_results"`
}

// ItemFromDocument maps a document to a response item.
func ItemFromDocument(d *document.Document) Item {
	return Item{Title: d.Title(), Content: d.Content(), Source: d.Source()}
}

// NewResponse builds the envelope for docs in order.
func NewResponse(q string, docs []document.Document) Response {
	items := make([]Item, len(docs))
	for i := range docs {
		items[i] = ItemFromDocument(&docs[i])
	}
	return Response{Results: items, Query: q, TotalResults: len(items)}
}
