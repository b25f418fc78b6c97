package main

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/bullbear/config"
	srv "github.com/mohammad-safakhou/bullbear/internal/server"
)

func searchCMD() *cobra.Command {
	var cfgPath string
	var collection string
	var ticker string
	var limit int

	cmd := &cobra.Command{
		Use:   "search QUERY...",
		Short: "Run a free-text search over indexed research documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()
			researchProvider, err := srv.BuildResearchProvider(ctx, cfg)
			if err != nil {
				return err
			}
			hits, err := researchProvider.Search(ctx, collection, strings.Join(args, " "), strings.ToUpper(ticker), limit)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(hits)
		},
	}
	cmd.Flags().StringVar(&collection, "collection", "", "restrict to a collection (analyst_reports, earnings_transcripts, filings)")
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "restrict to a ticker")
	cmd.Flags().IntVarP(&limit, "limit", "n", 5, "maximum hits")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cmd
}
