package ctxdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/db"
	dbBolt "github.com/kailas-cloud/ctxdex/internal/db/bolt"
	dbRedis "github.com/kailas-cloud/ctxdex/internal/db/redis"
	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/domain/document"
	"github.com/kailas-cloud/ctxdex/internal/domain/query"
	"github.com/kailas-cloud/ctxdex/internal/metrics"
	"github.com/kailas-cloud/ctxdex/internal/repository/embcache"
	"github.com/kailas-cloud/ctxdex/internal/repository/source"
	"github.com/kailas-cloud/ctxdex/internal/usecase/companydata"
	"github.com/kailas-cloud/ctxdex/internal/usecase/corpus"
	embeddinguc "github.com/kailas-cloud/ctxdex/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/ctxdex/internal/usecase/health"
	"github.com/kailas-cloud/ctxdex/internal/usecase/retrieval"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultCachePrefix      = "ctxdex:"
)

// Client is the ctxdex entry point.
type Client struct {
	store     db.Store // embedding cache, nil when not configured
	corpus    *corpus.Store
	client    *companydata.Client
	server    *companydata.Server
	healthSvc healthUseCase
	obs       *observer
}

// New loads and embeds the corpus and returns a ready Client.
// The provided context bounds the cache readiness check and corpus embedding.
// A corpus that cannot be read yields an empty client, and a corpus that
// cannot be embedded yields a keyword-mode client; neither is an error.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		topK:        query.DefaultTopK,
		threshold:   query.DefaultSimilarityThreshold,
		cachePrefix: defaultCachePrefix,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.documents) == 0 && len(cfg.files) == 0 {
		return nil, errors.New("ctxdex: corpus required (use WithDocuments or WithCorpusFiles)")
	}
	if _, err := query.New("", cfg.topK, cfg.threshold); err != nil {
		return nil, fmt.Errorf("ctxdex: %w", err)
	}
	src := corpusSource(cfg)

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.cacheDriver != "" {
		store, err = createStore(cfg)
		if err != nil {
			return nil, err
		}
		if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			store.Close()
			return nil, fmt.Errorf("ctxdex: cache not ready: %w", err)
		}
	}

	return wireClient(ctx, cfg, src, store, obs), nil
}

func corpusSource(cfg *clientConfig) corpus.Source {
	if len(cfg.files) > 0 {
		return source.NewFiles(cfg.files...)
	}
	docs := make([]document.Document, 0, len(cfg.documents))
	for _, d := range cfg.documents {
		docs = append(docs, document.Reconstruct(d.ID, d.Title, d.Content))
	}
	return staticSource(docs)
}

// staticSource serves documents passed with WithDocuments.
type staticSource []document.Document

func (s staticSource) Load(context.Context) ([]document.Document, error) { return s, nil }

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.cacheDriver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.cacheAddrs,
			Password: cfg.cachePassword,
		})
		if err != nil {
			return nil, fmt.Errorf("ctxdex: create %s store: %w", cfg.cacheDriver, err)
		}
		return s, nil
	case "bolt":
		s, err := dbBolt.NewStore(cfg.cachePath)
		if err != nil {
			return nil, fmt.Errorf("ctxdex: create bolt store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("ctxdex: unknown cache driver %q", cfg.cacheDriver)
	}
}

func wireClient(ctx context.Context, cfg *clientConfig, src corpus.Source, store db.Store, obs *observer) *Client {
	logger := zap.NewNop()

	var docEmb, queryEmb domain.Embedder
	if cfg.embedder != nil {
		var base domain.Embedder = &embedderAdapter{inner: cfg.embedder}
		docEmb = buildEmbedder(base, cfg, cfg.documentInstruction, store, logger)
		queryEmb = buildEmbedder(base, cfg, cfg.queryInstruction, store, logger)
	}

	start := time.Now()
	cs := corpus.Load(ctx, src, docEmb, logger)
	obs.observe(op{name: "load", mode: Mode(cs.Mode()), start: start, results: cs.Len()})

	var ropts []retrieval.Option
	if queryEmb != nil {
		ropts = append(ropts, retrieval.WithQueryEmbedder(queryEmb))
	}
	client, server := companydata.Setup(cs, companydata.Config{
		TopK:                cfg.topK,
		SimilarityThreshold: cfg.threshold,
	}, logger, ropts...)

	var pinger healthuc.CachePinger
	if store != nil {
		pinger = store
	}

	return &Client{
		store:     store,
		corpus:    cs,
		client:    client,
		server:    server,
		healthSvc: healthuc.New(cs, nil, pinger),
		obs:       obs,
	}
}

// buildEmbedder assembles the decorator chain: adapter -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	base domain.Embedder, cfg *clientConfig, instruction string, store db.Store, logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if store != nil {
		embedder = embcache.New(embedder, store, cfg.model, 0, cfg.cachePrefix, metrics.EmbeddingCacheTotal, logger)
	}
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, "sdk", cfg.model, logger,
		embeddinguc.WithBatchSize(cfg.batchSize),
	)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

// Close releases the embedding cache.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks embedding-cache connectivity. Always nil without a cache.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe(op{name: "ping", mode: c.Mode(), start: start, err: err}) }()

	if c.store == nil {
		return nil
	}
	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Mode reports the retrieval mode chosen when the corpus was loaded.
func (c *Client) Mode() Mode { return Mode(c.corpus.Mode()) }

// Len returns the number of loaded documents.
func (c *Client) Len() int { return c.corpus.Len() }

// RequestCompanyData retrieves the documents most relevant to q using the
// client's top_k. Only context cancellation is reported as an error.
func (c *Client) RequestCompanyData(ctx context.Context, q string) (resp Response, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(op{name: "request", mode: c.Mode(), start: start, results: resp.TotalResults, err: err})
	}()

	r, err := c.client.RequestCompanyData(ctx, q)
	if err != nil {
		return Response{}, fmt.Errorf("request company data: %w", err)
	}
	return responseFromExchange(&r), nil
}

// Search retrieves with an explicit top_k. topK <= 0 uses the default.
// Keyword retrieval ignores topK and returns every match.
func (c *Client) Search(ctx context.Context, q string, topK int) (results []Result, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe(op{name: "search", mode: c.Mode(), start: start, results: len(results), err: err})
	}()

	qq, err := query.New(q, topK, c.server.Config().SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	docs, err := c.server.Search(ctx, qq)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resultsFromDomain(docs), nil
}

// Format renders resp as the context block inserted into LLM prompts.
func (c *Client) Format(resp Response) string {
	r := resp.toExchange()
	return c.client.FormatForLLM(&r)
}

// AugmentPrompt appends the formatted context for resp to prompt.
func (c *Client) AugmentPrompt(prompt string, resp Response) string {
	return companydata.AugmentPrompt(prompt, c.Format(resp))
}
