package debate

import (
	"context"
	"strings"
	"testing"
)

func TestResearchFetchFailuresAreIsolated(t *testing.T) {
	provider := &fakeProvider{fail: map[string]bool{
		"sentiment":   true,
		"sec_filings": true,
	}}
	r := NewResearch(provider, Limits{})
	st := New("NVDA", "", 1)

	d, err := r.Act(context.Background(), st)
	if err != nil {
		t.Fatalf("research stage must not fail on category errors: %v", err)
	}
	if d.Next != ActorBull {
		t.Fatalf("next = %q, want bull", d.Next)
	}
	if d.Research == nil {
		t.Fatal("research bundle missing")
	}
	if d.Research.Metrics["pe_ratio"] != 31.5 {
		t.Fatal("healthy category lost")
	}
	if d.Research.CompanyName != "NVIDIA Corporation" {
		t.Fatalf("company name = %q, want it lifted from the metrics row", d.Research.CompanyName)
	}
	if d.Research.Sentiment != nil {
		t.Fatal("failed category must stay empty")
	}
	if len(d.Errors) != 2 {
		t.Fatalf("errors = %v, want exactly the two failed categories", d.Errors)
	}
	for _, e := range d.Errors {
		if !strings.HasPrefix(e, "research ") {
			t.Fatalf("error %q missing category prefix", e)
		}
	}
}

func TestResearchUsesQuestionAsDocumentQuery(t *testing.T) {
	r := NewResearch(&fakeProvider{}, Limits{})
	st := New("NVDA", "what about datacenter demand", 1)
	if q := r.docQuery(st, "fallback"); q != "what about datacenter demand" {
		t.Fatalf("query = %q", q)
	}
	st.Question = ""
	if q := r.docQuery(st, "fallback"); q != "fallback" {
		t.Fatalf("query = %q", q)
	}
}

func TestResearchDefaultLimits(t *testing.T) {
	r := NewResearch(&fakeProvider{}, Limits{})
	if r.limits != DefaultLimits() {
		t.Fatalf("limits = %+v", r.limits)
	}
	custom := Limits{Earnings: 1, Insider: 1, Holdings: 1, Reports: 1, Transcripts: 1, Filings: 1}
	if r := NewResearch(&fakeProvider{}, custom); r.limits != custom {
		t.Fatalf("custom limits dropped: %+v", r.limits)
	}
}
