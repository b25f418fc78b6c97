package debate

import (
	"strconv"
	"strings"
	"time"
)

// Parsing is two-stage: a tokenizer that never fails splits the raw oracle text
// into labeled values and bullet sections, then per-message validators clamp and
// default. A malformed response degrades to defaults, it never aborts a turn.

const (
	defaultArgumentConfidence  = 0.7
	defaultFactCheckConfidence = 0.7
	defaultVerdictConfidence   = 0.5
	defaultScore               = 50.0

	maxKeyFactors = 5
	maxRisks      = 3
)

type doc struct {
	values map[string][]string // inline remainders per label, in order
	items  map[string][]string // bullet items in the section a label opens
}

func (d *doc) first(label string) (string, bool) {
	vs := d.values[label]
	for _, v := range vs {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v), true
		}
	}
	return "", len(vs) > 0
}

func (d *doc) all(label string) []string {
	var out []string
	for _, v := range d.values[label] {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	out = append(out, d.items[label]...)
	return out
}

// tokenize scans raw line by line. A line beginning with a known label (case
// insensitive, tolerating bullets, whitespace and markdown bold) records its
// inline remainder and opens a section; bullet lines inside a section become
// its items. Unlabeled text is ignored here since callers keep the raw text.
func tokenize(raw string, labels []string) *doc {
	d := &doc{values: map[string][]string{}, items: map[string][]string{}}
	section := ""
	for _, line := range strings.Split(raw, "\n") {
		clean := strings.TrimSpace(line)
		clean = strings.TrimLeft(clean, "-*• \t")
		clean = strings.ReplaceAll(clean, "**", "")
		clean = strings.TrimSpace(clean)
		if clean == "" {
			continue
		}
		matched := false
		upper := strings.ToUpper(clean)
		for _, label := range labels {
			if !strings.HasPrefix(upper, label) {
				continue
			}
			rest := clean[len(label):]
			rest = strings.TrimLeft(rest, ": \t")
			d.values[label] = append(d.values[label], rest)
			section = label
			matched = true
			break
		}
		if matched {
			continue
		}
		if section != "" && isBullet(line) {
			item := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*•0123456789. \t"))
			if item != "" {
				d.items[section] = append(d.items[section], item)
			}
		}
	}
	return d
}

func isBullet(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	switch t[0] {
	case '-', '*':
		return true
	}
	if strings.HasPrefix(t, "•") {
		return true
	}
	if t[0] >= '0' && t[0] <= '9' {
		rest := strings.TrimLeft(t, "0123456789")
		return strings.HasPrefix(rest, ".") || strings.HasPrefix(rest, ")")
	}
	return false
}

func parseFloat(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	// keep the leading numeric token only ("0.8 based on..." parses as 0.8)
	if i := strings.IndexAny(s, " \t("); i > 0 {
		s = s[:i]
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s, "."), 64)
	if err != nil {
		return def
	}
	return f
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

var argumentLabels = []string{"ARGUMENT", "EVIDENCE", "CONFIDENCE"}

// ParseArgument extracts evidence lines and a confidence from the raw oracle
// text. The full raw text is always kept as the argument content.
func ParseArgument(raw string, speaker Speaker) Argument {
	d := tokenize(raw, argumentLabels)
	conf := defaultArgumentConfidence
	if v, ok := d.first("CONFIDENCE"); ok {
		conf = parseFloat(v, defaultArgumentConfidence)
	}
	return Argument{
		Speaker:    speaker,
		Content:    raw,
		Evidence:   d.all("EVIDENCE"),
		Confidence: clamp(conf, 0, 1),
		CreatedAt:  time.Now().UTC(),
	}
}

var factCheckLabels = []string{"ACCURACY SCORE", "ACCURACY", "FEEDBACK"}

// ParseFactCheck extracts an accuracy score and feedback for one advocate
// argument. Missing feedback falls back to the raw text.
func ParseFactCheck(raw string, subject Speaker) FactCheck {
	d := tokenize(raw, factCheckLabels)
	score := defaultFactCheckConfidence
	if v, ok := d.first("ACCURACY SCORE"); ok {
		score = parseFloat(v, defaultFactCheckConfidence)
	} else if v, ok := d.first("ACCURACY"); ok {
		score = parseFloat(v, defaultFactCheckConfidence)
	}
	feedback, _ := d.first("FEEDBACK")
	if feedback == "" {
		feedback = strings.TrimSpace(raw)
	}
	return FactCheck{
		Subject:       subject,
		AccuracyScore: clamp(score, 0, 1),
		Feedback:      feedback,
		CreatedAt:     time.Now().UTC(),
	}
}

var verdictLabels = []string{
	"RECOMMENDATION", "CONFIDENCE", "SUMMARY",
	"BULL SCORE", "BEAR SCORE", "KEY FACTORS", "RISKS",
}

// recommendation matching is substring based, longest label first so that
// STRONG BUY never degrades to BUY.
var recommendationOrder = []Recommendation{StrongBuy, StrongSell, Buy, Sell, Hold}

func parseRecommendation(s string) Recommendation {
	upper := strings.ToUpper(s)
	for _, r := range recommendationOrder {
		if strings.Contains(upper, string(r)) {
			return r
		}
	}
	return Hold
}

// ParseVerdict extracts the judge's decision. Every field has a deterministic
// default so even an empty response yields a usable HOLD verdict.
func ParseVerdict(raw string) Verdict {
	d := tokenize(raw, verdictLabels)

	rec := Hold
	if v, ok := d.first("RECOMMENDATION"); ok {
		rec = parseRecommendation(v)
	}

	conf := defaultVerdictConfidence
	if v, ok := d.first("CONFIDENCE"); ok {
		conf = parseFloat(v, defaultVerdictConfidence)
	}

	bull := defaultScore
	if v, ok := d.first("BULL SCORE"); ok {
		bull = parseFloat(v, defaultScore)
	}
	bear := defaultScore
	if v, ok := d.first("BEAR SCORE"); ok {
		bear = parseFloat(v, defaultScore)
	}

	summary, _ := d.first("SUMMARY")
	if summary == "" {
		summary = strings.TrimSpace(raw)
	}

	factors := d.all("KEY FACTORS")
	if len(factors) > maxKeyFactors {
		factors = factors[:maxKeyFactors]
	}
	if len(factors) == 0 {
		factors = []string{"No key factors identified"}
	}
	risks := d.all("RISKS")
	if len(risks) > maxRisks {
		risks = risks[:maxRisks]
	}
	if len(risks) == 0 {
		risks = []string{"No risks identified"}
	}

	return Verdict{
		Recommendation: rec,
		Confidence:     clamp(conf, 0, 1),
		Summary:        summary,
		BullScore:      clamp(bull, 0, 100),
		BearScore:      clamp(bear, 0, 100),
		KeyFactors:     factors,
		Risks:          risks,
		CreatedAt:      time.Now().UTC(),
	}
}
