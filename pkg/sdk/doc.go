// Package ctxdex embeds company-context retrieval in a Go program.
//
// A Client loads a small document corpus once, embeds it through the
// caller's embedding provider and answers queries with the most relevant
// documents. When no embedder is configured, or the corpus cannot be
// embedded, retrieval falls back to case-insensitive substring matching.
//
//	client, _ := ctxdex.New(ctx,
//	    ctxdex.WithCorpusFiles("data/*.json"),
//	    ctxdex.WithEmbedder(myEmbedder, "all-minilm"),
//	    ctxdex.WithBolt("ctxdex-cache.db"),
//	)
//	defer client.Close()
//
//	resp, _ := client.RequestCompanyData(ctx, "When was TechCorp founded?")
//	prompt := client.AugmentPrompt(userPrompt, resp)
package ctxdex
