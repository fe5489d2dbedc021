package ctxdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	documents []Document
	files     []string

	embedder            Embedder
	model               string
	documentInstruction string
	queryInstruction    string
	batchSize           int

	cacheDriver   string // "valkey", "redis", "bolt" or empty
	cacheAddrs    []string
	cachePassword string
	cachePath     string
	cachePrefix   string

	topK      int
	threshold float64

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithDocuments uses an in-memory corpus. Documents are validated on New.
func WithDocuments(docs ...Document) Option {
	return optionFunc(func(c *clientConfig) {
		c.documents = append(c.documents, docs...)
	})
}

// WithCorpusFiles loads the corpus from JSON or YAML files.
// Patterns may use doublestar globs ("data/**/*.json").
func WithCorpusFiles(patterns ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.files = append(c.files, patterns...)
	})
}

// WithEmbedder sets the embedding provider and the model name used in
// cache keys. Without it the client retrieves by keyword only.
func WithEmbedder(e Embedder, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
		c.model = model
	})
}

// WithInstructions sets prefixes prepended to document and query texts
// before embedding, for instruction-tuned models.
func WithInstructions(document, query string) Option {
	return optionFunc(func(c *clientConfig) {
		c.documentInstruction = document
		c.queryInstruction = query
	})
}

// WithBatchSize caps the number of texts per provider request. Default: 64.
func WithBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.batchSize = n
	})
}

// WithValkey caches embeddings in a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "valkey"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithRedis caches embeddings in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "redis"
		c.cacheAddrs = []string{addr}
		c.cachePassword = password
	})
}

// WithBolt caches embeddings in a local bbolt file.
func WithBolt(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheDriver = "bolt"
		c.cachePath = path
	})
}

// WithCacheKeyPrefix namespaces cache keys. Default: "ctxdex:".
func WithCacheKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cachePrefix = prefix
	})
}

// WithTopK sets the number of documents returned per request. Default: 3.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithSimilarityThreshold sets the similarity threshold passed with every
// request. It is accepted for compatibility and does not filter results.
func WithSimilarityThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
