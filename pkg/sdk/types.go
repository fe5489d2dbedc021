package ctxdex

import (
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/exchange"
	"github.com/kailas-cloud/ctxdex/internal/domain/mode"
)

// Mode is the retrieval strategy selected when the corpus was loaded.
type Mode string

// Retrieval modes.
const (
	ModeEmbedding Mode = Mode(mode.Embedding)
	ModeKeyword   Mode = Mode(mode.Keyword)
)

// Document is a corpus entry supplied with WithDocuments.
type Document struct {
	ID      string
	Title   string
	Content string
}

// Result is one retrieved document. Source cites the document ID.
type Result struct {
	Title   string
	Content string
	Source  string
}

// Response is the answer to RequestCompanyData.
type Response struct {
	Query        string
	Results      []Result
	TotalResults int
}

func resultFromDomain(d *document.Document) Result {
	return Result{Title: d.Title(), Content: d.Content(), Source: d.Source()}
}

func resultsFromDomain(docs []document.Document) []Result {
	out := make([]Result, len(docs))
	for i := range docs {
		out[i] = resultFromDomain(&docs[i])
	}
	return out
}

func responseFromExchange(r *exchange.Response) Response {
	out := Response{Query: r.Query, TotalResults: r.TotalResults, Results: make([]Result, len(r.Results))}
	for i, it := range r.Results {
		out.Results[i] = Result{Title: it.Title, Content: it.Content, Source: it.Source}
	}
	return out
}

func (r *Response) toExchange() exchange.Response {
	items := make([]exchange.Item, len(r.Results))
	for i, res := range r.Results {
		items[i] = exchange.Item{Title: res.Title, Content: res.Content, Source: res.Source}
	}
	return exchange.Response{Results: items, Query: r.Query, TotalResults: r.TotalResults}
}
