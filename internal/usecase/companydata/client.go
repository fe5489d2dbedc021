package companydata

import (
	"context"

	"github.com/google/uuid"

	"github.com/kailas-cloud/ctxdex/internal/domain/exchange"
)

// Client is the calling half of the company-data boundary. It talks to the
// server in-process.
type Client struct {
	server *Server
}

// NewClient creates a client bound to server.
func NewClient(server *Server) *Client {
	return &Client{server: server}
}

// RequestCompanyData sends a company-data request for q.
func (c *Client) RequestCompanyData(ctx context.Context, q string) (exchange.Response, error) {
	return c.server.HandleRequest(ctx, exchange.Request{
		Query:     q,
		Type:      exchange.TypeCompanyData,
		RequestID: uuid.NewString(),
	})
}

// FormatForLLM renders resp as a prompt context block.
func (c *Client) FormatForLLM(resp *exchange.Response) string {
	return FormatForLLM(resp)
}
