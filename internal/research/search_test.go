package research

import (
	"context"
	"testing"
)

func seedIndex(t *testing.T) *DocumentIndex {
	t.Helper()
	idx, err := NewMemoryIndex()
	if err != nil {
		t.Fatalf("memory index: %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	docs := []Document{
		{Collection: CollectionAnalystReports, Ticker: "NVDA", Title: "Initiation", Source: "BigBank",
			Content: "We initiate NVDA at overweight on datacenter demand."},
		{Collection: CollectionAnalystReports, Ticker: "AMD", Title: "Downgrade", Source: "BigBank",
			Content: "We downgrade AMD on datacenter share loss."},
		{Collection: CollectionFilings, Ticker: "NVDA", Title: "10-K", Source: "SEC",
			Content: "Risk factors include customer concentration in datacenter."},
	}
	for _, d := range docs {
		if err := idx.Index(d); err != nil {
			t.Fatalf("index: %v", err)
		}
	}
	return idx
}

func TestSearchFiltersByTickerAndCollection(t *testing.T) {
	idx := seedIndex(t)

	hits, err := idx.Search(CollectionAnalystReports, "datacenter", "NVDA", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %d, want the one NVDA report", len(hits))
	}
	h := hits[0]
	if h.Title != "Initiation" || h.Ticker != "NVDA" || h.Collection != CollectionAnalystReports {
		t.Fatalf("hit = %+v", h)
	}
	if h.Score <= 0 {
		t.Fatalf("score = %v, want positive", h.Score)
	}
	if h.Content == "" || h.Source != "BigBank" {
		t.Fatalf("provenance missing: %+v", h)
	}
}

func TestSearchAcrossTickers(t *testing.T) {
	idx := seedIndex(t)
	hits, err := idx.Search(CollectionAnalystReports, "datacenter", "", 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("hits = %d, want both reports", len(hits))
	}
}

func TestSearchRecordsQueryLog(t *testing.T) {
	idx := seedIndex(t)
	if _, err := idx.Search(CollectionFilings, "risk factors", "NVDA", 3); err != nil {
		t.Fatalf("search: %v", err)
	}
	entries := idx.log.snapshot()
	if len(entries) == 0 {
		t.Fatal("no query log entries recorded")
	}
	last := entries[len(entries)-1]
	if last.Kind != "search" || last.Query != "risk factors" {
		t.Fatalf("entry = %+v", last)
	}
}

func TestProviderCollectionHelpers(t *testing.T) {
	idx := seedIndex(t)
	p := NewProvider(nil, idx)
	ctx := context.Background()

	hits, err := p.Filings(ctx, "risk factors", "NVDA", 3)
	if err != nil {
		t.Fatalf("filings: %v", err)
	}
	if len(hits) != 1 || hits[0].Title != "10-K" {
		t.Fatalf("filings = %+v", hits)
	}

	// warehouse side is absent, structured accessors must fail individually
	if _, err := p.Metrics(ctx, "NVDA"); err == nil {
		t.Fatal("metrics without a warehouse must error")
	}
}

func TestNoopProviderAlwaysErrors(t *testing.T) {
	var n Noop
	ctx := context.Background()
	if _, err := n.Sentiment(ctx, "NVDA"); err == nil {
		t.Fatal("noop must error")
	}
	if _, err := n.Search(ctx, CollectionFilings, "q", "NVDA", 1); err == nil {
		t.Fatal("noop must error")
	}
	if got := n.QueryLog(); len(got) != 0 {
		t.Fatalf("noop query log = %v", got)
	}
}
