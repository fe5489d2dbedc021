package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/config"
	"github.com/kailas-cloud/ctxdex/internal/db"
	dbBolt "github.com/kailas-cloud/ctxdex/internal/db/bolt"
	dbRedis "github.com/kailas-cloud/ctxdex/internal/db/redis"
	"github.com/kailas-cloud/ctxdex/internal/domain"
	logpkg "github.com/kailas-cloud/ctxdex/internal/logger"
	"github.com/kailas-cloud/ctxdex/internal/metrics"
	"github.com/kailas-cloud/ctxdex/internal/repository/embcache"
	"github.com/kailas-cloud/ctxdex/internal/repository/source"
	"github.com/kailas-cloud/ctxdex/internal/transport/local"
	openaiEmb "github.com/kailas-cloud/ctxdex/internal/transport/openai"
	"github.com/kailas-cloud/ctxdex/internal/usecase/companydata"
	"github.com/kailas-cloud/ctxdex/internal/usecase/corpus"
	embeddinguc "github.com/kailas-cloud/ctxdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/ctxdex/internal/usecase/health"
	"github.com/kailas-cloud/ctxdex/internal/usecase/retrieval"
)

// app is the composition root shared by the subcommands.
type app struct {
	cfg    config.Config
	env    string
	logger *zap.Logger
	cache  db.Store // nil when no cache driver is configured or it is unreachable

	docEmbedder   domain.Embedder // nil for provider "none"
	queryEmbedder domain.Embedder
}

// newApp loads config, builds the logger and opens the embedding cache.
// With requireCache an unreachable cache is an error, otherwise it is logged
// and the embedders run uncached.
func newApp(ctx context.Context, opts *rootOptions, requireCache bool) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	a := &app{cfg: cfg, env: opts.env, logger: logger}

	a.cache, err = openCache(ctx, cfg.Cache)
	switch {
	case err != nil && requireCache:
		return nil, err
	case err != nil:
		logger.Warn("Embedding cache unavailable, continuing without it",
			zap.String("driver", cfg.Cache.Driver),
			zap.Error(err),
		)
	case a.cache != nil:
		logger.Info("Connected to embedding cache", zap.String("driver", cfg.Cache.Driver))
	}

	a.docEmbedder, a.queryEmbedder = buildEmbedders(cfg.Embedding, cfg.Cache.KeyPrefix, a.cache, logger)
	return a, nil
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
	_ = a.logger.Sync()
}

// loadCorpus reads and embeds the configured corpus. Never fails.
func (a *app) loadCorpus(ctx context.Context) *corpus.Store {
	return corpus.Load(ctx, source.NewFiles(a.cfg.Corpus.Paths...), a.docEmbedder, a.logger)
}

// setup wires the façade over a loaded corpus.
func (a *app) setup(store *corpus.Store, topK int) (*companydata.Client, *companydata.Server) {
	rc := companydata.Config{
		TopK:                a.cfg.Retrieve.TopK,
		SimilarityThreshold: a.cfg.Retrieve.Threshold(),
	}
	if topK > 0 {
		rc.TopK = topK
	}

	var opts []retrieval.Option
	if a.queryEmbedder != nil {
		opts = append(opts, retrieval.WithQueryEmbedder(a.queryEmbedder))
	}
	return companydata.Setup(store, rc, a.logger, opts...)
}

// healthService builds the health checks. Nil interfaces, not typed nil
// pointers, are passed for absent components.
func (a *app) healthService(store *corpus.Store) *healthuc.Service {
	var embedding healthuc.EmbeddingChecker
	if a.cfg.Embedding.HealthCheck && a.docEmbedder != nil {
		embedding = newEmbeddingHealthChecker(a.docEmbedder)
	}
	var cache healthuc.CachePinger
	if a.cache != nil {
		cache = a.cache
	}
	return healthuc.New(store, embedding, cache)
}

func openCache(ctx context.Context, c config.CacheConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch c.Driver {
	case config.CacheRedis, config.CacheValkey:
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    c.Addrs,
			Password: c.Password,
		})
	case config.CacheBolt:
		store, err = dbBolt.NewStore(c.Path)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Driver, err)
	}

	if err := store.WaitForReady(ctx, time.Duration(c.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s cache not ready: %w", c.Driver, err)
	}
	return store, nil
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedders returns the document and query chains over one provider.
// Both are nil for provider "none".
func buildEmbedders(
	cfg config.EmbeddingConfig, keyPrefix string, cache db.Store, logger *zap.Logger,
) (doc, query domain.Embedder) {
	var base domain.Embedder
	switch cfg.Provider {
	case config.ProviderOpenAI:
		base = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
	case config.ProviderLocal:
		base = local.New(cfg.Dimensions)
	default:
		return nil, nil
	}

	doc = buildEmbedder(base, cfg, cfg.DocumentInstruction, keyPrefix, cache, logger)
	query = buildEmbedder(base, cfg, cfg.QueryInstruction, keyPrefix, cache, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
	)
	return doc, query
}

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	base domain.Embedder,
	cfg config.EmbeddingConfig,
	instruction, keyPrefix string,
	cache db.Store,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		embedder = embcache.New(embedder, cache, cfg.Model, cfg.Dimensions, keyPrefix, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Provider, cfg.Model, logger,
		embeddinguc.WithBatchSize(cfg.BatchSize),
		embeddinguc.WithDimensions(cfg.Dimensions),
	)

	// Instruction prefix (outermost, so the cache key includes it)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}
