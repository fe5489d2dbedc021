package companydata

import (
	"strings"

	"github.com/kailas-cloud/ctxdex/internal/domain/exchange"
)

// NoResults is the context block for a response with no documents.
const NoResults = "No relevant company information found."

const (
	formatHeader = "COMPANY INFORMATION:\n\n"
	promptJoiner = "\n\nUse the following company information to help answer:\n"
)

// FormatForLLM renders a response envelope into the text block injected into
// a language-model prompt.
func FormatForLLM(resp *exchange.Response) string {
	if resp == nil || len(resp.Results) == 0 {
		return NoResults
	}

	var b strings.Builder
	b.WriteString(formatHeader)
	for _, r := range resp.Results {
		b.WriteString("--- ")
		b.WriteString(r.Title)
		b.WriteString(" ---\n")
		b.WriteString(r.Content)
		b.WriteString("\n\n")
	}
	return b.String()
}

// AugmentPrompt appends a context block to a user prompt.
func AugmentPrompt(prompt, contextBlock string) string {
	return prompt + promptJoiner + contextBlock
}
