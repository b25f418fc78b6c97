package debate

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/mohammad-safakhou/bullbear/internal/telemetry"
)

// Research is the opening stage: it fans out one fetch per category, each
// isolated so a failing category degrades to an empty one, and merges the
// results into a single bundle once every fetch has resolved.
type Research struct {
	provider ResearchProvider
	limits   Limits
	logger   *log.Logger
}

func NewResearch(provider ResearchProvider, limits Limits) *Research {
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}
	return &Research{
		provider: provider,
		limits:   limits,
		logger:   log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags),
	}
}

func (r *Research) Name() string { return string(ActorResearch) }

func (r *Research) Act(ctx context.Context, st *State) (Delta, error) {
	ticker := st.Ticker
	rd := &ResearchData{Ticker: ticker}

	var (
		mu   sync.Mutex
		errs []string
		wg   sync.WaitGroup
	)
	fetch := func(category string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				telemetry.ResearchFetchFailures.WithLabelValues(category).Inc()
				r.logger.Printf("%s fetch for %s failed: %v", category, ticker, err)
				mu.Lock()
				errs = append(errs, fmt.Sprintf("research %s: %v", category, err))
				mu.Unlock()
			}
		}()
	}

	fetch("metrics", func() error {
		m, err := r.provider.Metrics(ctx, ticker)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.Metrics = m
		if name, ok := m["company_name"].(string); ok {
			rd.CompanyName = name
		}
		mu.Unlock()
		return nil
	})
	fetch("earnings_history", func() error {
		rows, err := r.provider.EarningsHistory(ctx, ticker, r.limits.Earnings)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.EarningsHistory = rows
		mu.Unlock()
		return nil
	})
	fetch("technical_indicators", func() error {
		m, err := r.provider.TechnicalIndicators(ctx, ticker)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.TechnicalIndicators = m
		mu.Unlock()
		return nil
	})
	fetch("sentiment", func() error {
		m, err := r.provider.Sentiment(ctx, ticker)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.Sentiment = m
		mu.Unlock()
		return nil
	})
	fetch("insider_activity", func() error {
		rows, err := r.provider.InsiderActivity(ctx, ticker, r.limits.Insider)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.InsiderActivity = rows
		mu.Unlock()
		return nil
	})
	fetch("institutional_holdings", func() error {
		rows, err := r.provider.InstitutionalHoldings(ctx, ticker, r.limits.Holdings)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.InstitutionalHoldings = rows
		mu.Unlock()
		return nil
	})
	fetch("analyst_reports", func() error {
		docs, err := r.provider.AnalystReports(ctx, r.docQuery(st, "analyst outlook and price targets"), ticker, r.limits.Reports)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.AnalystReports = docs
		mu.Unlock()
		return nil
	})
	fetch("earnings_transcripts", func() error {
		docs, err := r.provider.EarningsTranscripts(ctx, r.docQuery(st, "management guidance and outlook"), ticker, r.limits.Transcripts)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.EarningsTranscripts = docs
		mu.Unlock()
		return nil
	})
	fetch("sec_filings", func() error {
		docs, err := r.provider.Filings(ctx, r.docQuery(st, "risk factors and material changes"), ticker, r.limits.Filings)
		if err != nil {
			return err
		}
		mu.Lock()
		rd.Filings = docs
		mu.Unlock()
		return nil
	})

	wg.Wait()
	sort.Strings(errs)
	r.logger.Printf("research for %s complete (%d fetch failures)", ticker, len(errs))
	return Delta{
		Research: rd,
		Errors:   errs,
		Next:     ActorBull,
		Round:    st.Round,
	}, nil
}

// docQuery biases document search toward the session question when one is set.
func (r *Research) docQuery(st *State, fallback string) string {
	if st.Question != "" {
		return st.Question
	}
	return fallback
}
