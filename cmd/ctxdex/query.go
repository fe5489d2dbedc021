package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type queryOptions struct {
	text string
	topK int
	json bool
}

func newQueryCmd(opts *rootOptions) *cobra.Command {
	qo := &queryOptions{}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Retrieve company context for a query",
		Long: `Load the corpus in-process and print the context block for a query.

Examples:
  ctxdex query -q "When was TechCorp founded?"
  ctxdex query -q "products" --top-k 5 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts, qo)
		},
	}

	cmd.Flags().StringVarP(&qo.text, "query", "q", "", "search query (required)")
	cmd.Flags().IntVarP(&qo.topK, "top-k", "k", 0, "number of results (default from config)")
	cmd.Flags().BoolVar(&qo.json, "json", false, "print the response envelope as JSON")
	_ = cmd.MarkFlagRequired("query")
	return cmd
}

func runQuery(cmd *cobra.Command, opts *rootOptions, qo *queryOptions) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, opts, false)
	if err != nil {
		return err
	}
	defer a.close()

	client, _ := a.setup(a.loadCorpus(ctx), qo.topK)

	resp, err := client.RequestCompanyData(ctx, qo.text)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if qo.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		return nil
	}

	_, err = fmt.Fprintln(out, client.FormatForLLM(&resp))
	return err //nolint:wrapcheck // terminal write
}
