package main

import (
	"errors"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ctxdex/internal/domain"
	"github.com/kailas-cloud/ctxdex/internal/repository/source"
)

func newWarmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "warm",
		Short: "Pre-compute document embeddings into the embedding cache",
		Long: `Embed every corpus document through the configured provider and store
the vectors in the embedding cache, so the next serve starts without
provider calls for unchanged documents.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWarm(cmd, opts)
		},
	}
}

func runWarm(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, opts, true)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cache == nil {
		return errors.New("warm requires a cache driver (cache.driver is none)")
	}
	if a.docEmbedder == nil {
		return errors.New("warm requires an embedding provider (embedding.provider is none)")
	}

	docs, err := source.NewFiles(a.cfg.Corpus.Paths...).Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("Embedding documents"),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		}),
	)

	batch := a.cfg.Embedding.BatchSize
	tokens := 0
	for start := 0; start < len(docs); start += batch {
		end := min(start+batch, len(docs))
		texts := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			texts = append(texts, docs[i].EmbeddingText())
		}

		res, err := domain.EmbedTexts(ctx, a.docEmbedder, texts)
		if err != nil {
			return fmt.Errorf("embed documents %d-%d: %w", start, end, err)
		}
		tokens += res.TotalTokens
		_ = bar.Add(len(texts))
	}
	_ = bar.Finish()

	a.logger.Info("Embedding cache warmed",
		zap.Int("documents", len(docs)),
		zap.Int("tokens", tokens),
		zap.String("driver", a.cfg.Cache.Driver),
	)
	return nil
}
