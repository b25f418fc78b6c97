package research

import (
	"context"
	"errors"

	"github.com/mohammad-safakhou/bullbear/internal/debate"
)

// ErrNotConfigured signals that a research backend was not wired; the research
// stage degrades the affected categories to empty.
var ErrNotConfigured = errors.New("research backend not configured")

// Provider combines the warehouse (structured categories) and the document
// index (unstructured categories) into one research capability. Either side
// may be nil; its accessors then fail individually.
type Provider struct {
	warehouse *Warehouse
	index     *DocumentIndex
}

func NewProvider(warehouse *Warehouse, index *DocumentIndex) *Provider {
	return &Provider{warehouse: warehouse, index: index}
}

func (p *Provider) Metrics(ctx context.Context, ticker string) (map[string]interface{}, error) {
	if p.warehouse == nil {
		return nil, ErrNotConfigured
	}
	return p.warehouse.Metrics(ctx, ticker)
}

func (p *Provider) EarningsHistory(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	if p.warehouse == nil {
		return nil, ErrNotConfigured
	}
	return p.warehouse.EarningsHistory(ctx, ticker, limit)
}

func (p *Provider) TechnicalIndicators(ctx context.Context, ticker string) (map[string]interface{}, error) {
	if p.warehouse == nil {
		return nil, ErrNotConfigured
	}
	return p.warehouse.TechnicalIndicators(ctx, ticker)
}

func (p *Provider) Sentiment(ctx context.Context, ticker string) (map[string]interface{}, error) {
	if p.warehouse == nil {
		return nil, ErrNotConfigured
	}
	return p.warehouse.Sentiment(ctx, ticker)
}

func (p *Provider) InsiderActivity(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	if p.warehouse == nil {
		return nil, ErrNotConfigured
	}
	return p.warehouse.InsiderActivity(ctx, ticker, limit)
}

func (p *Provider) InstitutionalHoldings(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error) {
	if p.warehouse == nil {
		return nil, ErrNotConfigured
	}
	return p.warehouse.InstitutionalHoldings(ctx, ticker, limit)
}

func (p *Provider) AnalystReports(ctx context.Context, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return p.Search(ctx, CollectionAnalystReports, query, ticker, limit)
}

func (p *Provider) EarningsTranscripts(ctx context.Context, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return p.Search(ctx, CollectionEarningsTranscripts, query, ticker, limit)
}

func (p *Provider) Filings(ctx context.Context, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	return p.Search(ctx, CollectionFilings, query, ticker, limit)
}

func (p *Provider) Search(_ context.Context, collection, query, ticker string, limit int) ([]debate.DocumentExcerpt, error) {
	if p.index == nil {
		return nil, ErrNotConfigured
	}
	return p.index.Search(collection, query, ticker, limit)
}

// QueryLog merges the logs of both backends.
func (p *Provider) QueryLog() []debate.QueryLogEntry {
	var out []debate.QueryLogEntry
	if p.warehouse != nil {
		out = append(out, p.warehouse.log.snapshot()...)
	}
	if p.index != nil {
		out = append(out, p.index.log.snapshot()...)
	}
	return out
}

// Noop is the provider used when no research backend is configured at all:
// every accessor fails, which the research stage turns into empty categories.
type Noop struct{}

func (Noop) Metrics(context.Context, string) (map[string]interface{}, error) {
	return nil, ErrNotConfigured
}
func (Noop) EarningsHistory(context.Context, string, int) ([]map[string]interface{}, error) {
	return nil, ErrNotConfigured
}
func (Noop) TechnicalIndicators(context.Context, string) (map[string]interface{}, error) {
	return nil, ErrNotConfigured
}
func (Noop) Sentiment(context.Context, string) (map[string]interface{}, error) {
	return nil, ErrNotConfigured
}
func (Noop) InsiderActivity(context.Context, string, int) ([]map[string]interface{}, error) {
	return nil, ErrNotConfigured
}
func (Noop) InstitutionalHoldings(context.Context, string, int) ([]map[string]interface{}, error) {
	return nil, ErrNotConfigured
}
func (Noop) AnalystReports(context.Context, string, string, int) ([]debate.DocumentExcerpt, error) {
	return nil, ErrNotConfigured
}
func (Noop) EarningsTranscripts(context.Context, string, string, int) ([]debate.DocumentExcerpt, error) {
	return nil, ErrNotConfigured
}
func (Noop) Filings(context.Context, string, string, int) ([]debate.DocumentExcerpt, error) {
	return nil, ErrNotConfigured
}
func (Noop) Search(context.Context, string, string, string, int) ([]debate.DocumentExcerpt, error) {
	return nil, ErrNotConfigured
}
func (Noop) QueryLog() []debate.QueryLogEntry { return nil }
