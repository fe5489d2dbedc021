package chi

import "github.com/kailas-cloud/ctxdex/internal/domain/exchange"

// ErrorCode is the machine-readable error code in error responses.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ContextResponse is the body of POST /v1/context.
type ContextResponse = exchange.Response

// SearchItem is one document in a search response.
type SearchItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

// SearchResponse is the body of GET /v1/context/search.
type SearchResponse struct {
	Items []SearchItem `json:"items"`
	Total int          `json:"total"`
	Mode  string       `json:"mode"`
}

// SearchParams are the bound query parameters of GET /v1/context/search.
type SearchParams struct {
	Q                   string
	TopK                *int
	SimilarityThreshold *float64
}

// PromptRequest is the body of POST /v1/context/prompt. Query defaults to Prompt.
type PromptRequest struct {
	Prompt string `json:"prompt"`
	Query  string `json:"query,omitempty"`
}

// PromptResponse carries the formatted context block and the augmented prompt.
type PromptResponse struct {
	Context string `json:"context"`
	Prompt  string `json:"prompt"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
