package debate

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := Truncate("abcdefghij", 4); got != "abcd..." {
		t.Fatalf("got %q", got)
	}
	// rune-safe, not byte-safe
	if got := Truncate("ααααα", 3); got != "ααα..." {
		t.Fatalf("got %q", got)
	}
}

func TestRenderHistoryTruncatesEntries(t *testing.T) {
	long := strings.Repeat("x", 600)
	out := RenderHistory([]Argument{
		{Speaker: SpeakerBull, Content: long},
		{Speaker: SpeakerBear, Content: "short rebuttal"},
	}, 500)
	if !strings.Contains(out, "[BULL] ") || !strings.Contains(out, "[BEAR] short rebuttal") {
		t.Fatalf("output missing entries:\n%s", out)
	}
	if strings.Contains(out, strings.Repeat("x", 501)) {
		t.Fatal("long entry was not truncated")
	}
	if !strings.Contains(out, "...") {
		t.Fatal("truncation marker missing")
	}
}

func TestRenderHistoryEmpty(t *testing.T) {
	if out := RenderHistory(nil, 500); out != "No arguments yet." {
		t.Fatalf("got %q", out)
	}
}

func TestRenderResearchSkipsEmptyCategories(t *testing.T) {
	rd := &ResearchData{
		Ticker:  "NVDA",
		Metrics: map[string]interface{}{"pe_ratio": 65.2, "market_cap": "3.1T"},
		AnalystReports: []DocumentExcerpt{
			{Collection: "analyst_reports", Title: "Initiation", Content: "We initiate at overweight."},
		},
	}
	out := RenderResearch(rd)
	if !strings.Contains(out, "RESEARCH DATA FOR NVDA") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "pe_ratio: 65.2") {
		t.Fatalf("missing metric:\n%s", out)
	}
	if !strings.Contains(out, "[Initiation] We initiate at overweight.") {
		t.Fatalf("missing report:\n%s", out)
	}
	if strings.Contains(out, "SENTIMENT") || strings.Contains(out, "EARNINGS HISTORY") {
		t.Fatalf("empty categories should be skipped:\n%s", out)
	}
}

func TestRenderResearchNil(t *testing.T) {
	if out := RenderResearch(nil); out != "No research data available." {
		t.Fatalf("got %q", out)
	}
}

func TestRenderResearchDeterministicKeyOrder(t *testing.T) {
	rd := &ResearchData{Ticker: "T", Metrics: map[string]interface{}{"b": 2, "a": 1, "c": 3}}
	out := RenderResearch(rd)
	ai := strings.Index(out, "- a:")
	bi := strings.Index(out, "- b:")
	ci := strings.Index(out, "- c:")
	if ai < 0 || bi < 0 || ci < 0 || !(ai < bi && bi < ci) {
		t.Fatalf("keys not sorted:\n%s", out)
	}
}
