package debate

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultHistoryPreviewLen bounds each replayed transcript entry in prompts.
const DefaultHistoryPreviewLen = 500

// RenderResearch flattens the evidence bundle into a prompt section. Empty
// categories are skipped so degraded research produces a shorter prompt, not
// a noisier one.
func RenderResearch(rd *ResearchData) string {
	if rd == nil {
		return "No research data available."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "RESEARCH DATA FOR %s", rd.Ticker)
	if rd.CompanyName != "" {
		fmt.Fprintf(&b, " (%s)", rd.CompanyName)
	}
	b.WriteString("\n")

	writeMap(&b, "FINANCIAL METRICS", rd.Metrics)
	writeRows(&b, "EARNINGS HISTORY", rd.EarningsHistory)
	writeMap(&b, "TECHNICAL INDICATORS", rd.TechnicalIndicators)
	writeMap(&b, "SENTIMENT", rd.Sentiment)
	writeRows(&b, "INSIDER ACTIVITY", rd.InsiderActivity)
	writeRows(&b, "INSTITUTIONAL HOLDINGS", rd.InstitutionalHoldings)
	writeDocs(&b, "ANALYST REPORTS", rd.AnalystReports)
	writeDocs(&b, "EARNINGS CALL EXCERPTS", rd.EarningsTranscripts)
	writeDocs(&b, "SEC FILING EXCERPTS", rd.Filings)

	out := strings.TrimRight(b.String(), "\n")
	return out
}

func writeMap(b *strings.Builder, title string, m map[string]interface{}) {
	if len(m) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "- %s: %v\n", k, m[k])
	}
}

func writeRows(b *strings.Builder, title string, rows []map[string]interface{}) {
	if len(rows) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, row := range rows {
		keys := make([]string, 0, len(row))
		for k := range row {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, row[k]))
		}
		fmt.Fprintf(b, "- %s\n", strings.Join(parts, " "))
	}
}

func writeDocs(b *strings.Builder, title string, docs []DocumentExcerpt) {
	if len(docs) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, d := range docs {
		label := d.Title
		if label == "" {
			label = d.Source
		}
		if label != "" {
			fmt.Fprintf(b, "- [%s] %s\n", label, Truncate(d.Content, DefaultHistoryPreviewLen))
		} else {
			fmt.Fprintf(b, "- %s\n", Truncate(d.Content, DefaultHistoryPreviewLen))
		}
	}
}

// RenderHistory replays the transcript for a prompt, truncating each entry to
// previewLen runes. The current opposing argument should be rendered in full
// separately, not through this.
func RenderHistory(args []Argument, previewLen int) string {
	if len(args) == 0 {
		return "No arguments yet."
	}
	if previewLen <= 0 {
		previewLen = DefaultHistoryPreviewLen
	}
	var b strings.Builder
	for _, a := range args {
		fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(a.Speaker)), Truncate(a.Content, previewLen))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderFactChecks replays moderator feedback for a prompt.
func RenderFactChecks(checks []FactCheck) string {
	if len(checks) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range checks {
		fmt.Fprintf(&b, "[%s accuracy %.2f] %s\n", strings.ToUpper(string(c.Subject)), c.AccuracyScore, Truncate(c.Feedback, DefaultHistoryPreviewLen))
	}
	return strings.TrimRight(b.String(), "\n")
}

// Truncate cuts s to at most n runes, appending an ellipsis marker when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
