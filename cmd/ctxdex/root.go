package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ctxdex/internal/config"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	env        string
}

func (o *rootOptions) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ctxdex",
		Short: "Company context retrieval for LLM prompts",
		Long: `ctxdex loads a small corpus of company documents, embeds it once and
serves the most relevant documents for a query as a formatted context block.

Example usage:
  ctxdex serve                              # Start the HTTP API
  ctxdex query -q "When was TechCorp founded?"
  ctxdex warm                               # Fill the embedding cache`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is config/<env>.yaml)")
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment: local, dev, docker, prod")

	cmd.AddCommand(
		newServeCmd(opts),
		newQueryCmd(opts),
		newWarmCmd(opts),
		newVersionCmd(),
	)
	return cmd
}
