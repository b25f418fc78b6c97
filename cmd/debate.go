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
	"github.com/mohammad-safakhou/bullbear/provider"
)

// debateResult is the JSON export written with --output: the flat session
// record plus a preview of the evidence the debate ran on.
type debateResult struct {
	debate.ExportRecord
	ResearchSummary string `json:"research_summary,omitempty"`
}

func debateCMD() *cobra.Command {
	var cfgPath string
	var question string
	var rounds int
	var output string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "debate TICKER",
		Short: "Run one full debate session on a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)
			ticker := strings.ToUpper(strings.TrimSpace(args[0]))
			if rounds <= 0 {
				rounds = cfg.Debate.MaxRounds
			}

			ctx := context.Background()
			oracle, err := provider.NewProvider(cfg.LLM)
			if err != nil {
				return err
			}
			researchProvider, err := srv.BuildResearchProvider(ctx, cfg)
			if err != nil {
				return err
			}

			orch := debate.NewOrchestrator(debate.Options{
				Oracle:   oracle,
				Research: researchProvider,
				Limits: debate.Limits{
					Earnings:    cfg.Debate.EarningsLimit,
					Insider:     cfg.Debate.InsiderLimit,
					Holdings:    cfg.Debate.HoldingsLimit,
					Reports:     cfg.Debate.ReportsLimit,
					Transcripts: cfg.Debate.TranscriptsLimit,
					Filings:     cfg.Debate.FilingsLimit,
				},
				HistoryPreviewLen: cfg.Debate.HistoryPreviewLen,
				Diagnostics:       debate.NewDiagnostics(),
			})

			st := debate.New(ticker, question, rounds)
			var sink func(debate.TurnEvent)
			if !quiet {
				fmt.Printf("Debating %s over %d round(s)...\n\n", ticker, rounds)
				sink = func(ev debate.TurnEvent) { printTurn(ev) }
			}
			if err := orch.RunStream(ctx, st, sink); err != nil {
				return err
			}
			if !quiet {
				printVerdict(st)
			}

			if output != "" {
				result := debateResult{
					ExportRecord:    st.Export(),
					ResearchSummary: debate.Truncate(debate.RenderResearch(st.Research), 2000),
				}
				data, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				fmt.Printf("Results saved to %s\n", output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to debate")
	cmd.Flags().IntVarP(&rounds, "rounds", "r", 0, "debate rounds (default from config)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result as JSON to this file")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "suppress progress output")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")
	return cmd
}

func printTurn(ev debate.TurnEvent) {
	switch ev.Actor {
	case debate.ActorResearch:
		fmt.Printf("== RESEARCH complete")
		if n := len(ev.Delta.Errors); n > 0 {
			fmt.Printf(" (%d categories unavailable)", n)
		}
		fmt.Println()
	case debate.ActorJudge:
		// verdict is printed separately
	default:
		for _, a := range ev.Delta.Arguments {
			fmt.Printf("== %s (confidence %.2f)\n%s\n\n",
				strings.ToUpper(string(a.Speaker)), a.Confidence, debate.Truncate(a.Content, 800))
		}
		for _, fc := range ev.Delta.FactChecks {
			fmt.Printf("-- fact-check %s: accuracy %.2f\n", fc.Subject, fc.AccuracyScore)
		}
	}
}

func printVerdict(st *debate.State) {
	v := st.Verdict
	if v == nil {
		fmt.Println("No verdict was reached.")
		return
	}
	fmt.Printf("\n========================================\n")
	fmt.Printf("VERDICT: %s (confidence %.2f)\n", v.Recommendation, v.Confidence)
	fmt.Printf("Bull score: %.0f   Bear score: %.0f\n", v.BullScore, v.BearScore)
	fmt.Printf("\n%s\n", v.Summary)
	fmt.Println("\nKey factors:")
	for _, f := range v.KeyFactors {
		fmt.Printf("  - %s\n", f)
	}
	fmt.Println("Risks:")
	for _, r := range v.Risks {
		fmt.Printf("  - %s\n", r)
	}
}
