package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/bullbear/config"
	"github.com/mohammad-safakhou/bullbear/internal/debate"
	srv "github.com/mohammad-safakhou/bullbear/internal/server"
)

func researchCMD() *cobra.Command {
	var cfgPath string
	var question string

	cmd := &cobra.Command{
		Use:   "research TICKER",
		Short: "Run only the research stage and dump the evidence bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ticker := strings.ToUpper(strings.TrimSpace(args[0]))

			ctx := context.Background()
			researchProvider, err := srv.BuildResearchProvider(ctx, cfg)
			if err != nil {
				return err
			}
			stage := debate.NewResearch(researchProvider, debate.Limits{
				Earnings:    cfg.Debate.EarningsLimit,
				Insider:     cfg.Debate.InsiderLimit,
				Holdings:    cfg.Debate.HoldingsLimit,
				Reports:     cfg.Debate.ReportsLimit,
				Transcripts: cfg.Debate.TranscriptsLimit,
				Filings:     cfg.Debate.FilingsLimit,
			})

			st := debate.New(ticker, question, 1)
			d, err := stage.Act(ctx, st)
			if err != nil {
				return err
			}
			for _, e := range d.Errors {
				fmt.Fprintln(os.Stderr, e)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(d.Research)
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question biasing document search")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cmd
}
