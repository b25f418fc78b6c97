package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/bullbear/config"
	"github.com/mohammad-safakhou/bullbear/internal/research"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var collection string
	var ticker string

	cmd := &cobra.Command{
		Use:   "ingest SOURCE...",
		Short: "Index research documents from URLs or local text files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			if cfg.Research.IndexPath == "" {
				return fmt.Errorf("research.index_path not configured")
			}
			if ticker == "" {
				return fmt.Errorf("--ticker is required")
			}
			idx, err := research.OpenIndex(cfg.Research.IndexPath)
			if err != nil {
				return err
			}
			defer idx.Close()
			ing := research.NewIngestor(idx)

			ctx := context.Background()
			var failures int
			for _, src := range args {
				var doc research.Document
				var err error
				if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
					doc, err = ing.IngestURL(ctx, src, collection, strings.ToUpper(ticker))
				} else {
					doc, err = ing.IngestFile(src, collection, strings.ToUpper(ticker))
				}
				if err != nil {
					failures++
					fmt.Printf("FAILED %s: %v\n", src, err)
					continue
				}
				fmt.Printf("indexed %s (%s)\n", doc.Title, src)
			}
			count, _ := idx.Count()
			fmt.Printf("index now holds %d documents\n", count)
			if failures > 0 {
				return fmt.Errorf("%d source(s) failed", failures)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&collection, "collection", research.CollectionAnalystReports, "target collection")
	cmd.Flags().StringVarP(&ticker, "ticker", "t", "", "ticker the documents belong to")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cmd
}
