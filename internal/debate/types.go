package debate

import (
	"context"
	"time"
)

// Speaker identifies who produced an argument.
type Speaker string

const (
	SpeakerBull      Speaker = "bull"
	SpeakerBear      Speaker = "bear"
	SpeakerModerator Speaker = "moderator"
	SpeakerJudge     Speaker = "judge"
)

// Actor is the routing cursor: who acts next.
type Actor string

const (
	ActorResearch  Actor = "research"
	ActorBull      Actor = "bull"
	ActorBear      Actor = "bear"
	ActorModerator Actor = "moderator"
	ActorJudge     Actor = "judge"
	ActorEnd       Actor = "end"
)

// Recommendation is the judge's terminal call.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG SELL"
)

// Argument represents a single utterance in the debate. Created once per
// participant invocation and immutable afterwards.
type Argument struct {
	Speaker    Speaker   `json:"speaker"`
	Content    string    `json:"content"`
	Evidence   []string  `json:"evidence,omitempty"`
	Confidence float64   `json:"confidence"` // clamped to [0,1] at construction
	CreatedAt  time.Time `json:"created_at"`
}

// FactCheck is the moderator's assessment of one prior advocate argument.
type FactCheck struct {
	Subject       Speaker   `json:"subject"`
	AccuracyScore float64   `json:"accuracy_score"` // clamped to [0,1]
	Feedback      string    `json:"feedback"`
	CreatedAt     time.Time `json:"created_at"`
}

// Verdict is the judge's final decision.
type Verdict struct {
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"` // [0,1]
	Summary        string         `json:"summary"`
	BullScore      float64        `json:"bull_score"` // [0,100]
	BearScore      float64        `json:"bear_score"` // [0,100]
	KeyFactors     []string       `json:"key_factors"` // at most 5
	Risks          []string       `json:"risks"`       // at most 3
	CreatedAt      time.Time      `json:"created_at"`
}

// DocumentExcerpt is one ranked unstructured research hit with provenance.
type DocumentExcerpt struct {
	Collection string                 `json:"collection"` // analyst_reports, earnings_transcripts, filings
	Ticker     string                 `json:"ticker"`
	Title      string                 `json:"title,omitempty"`
	Source     string                 `json:"source,omitempty"` // firm, exchange, filer
	Content    string                 `json:"content"`
	Score      float64                `json:"score"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// ResearchData is the aggregated research snapshot for a ticker. Built once by
// the research stage; partial population is legal, missing categories stay empty.
type ResearchData struct {
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name,omitempty"`

	// Structured categories
	Metrics               map[string]interface{}   `json:"metrics,omitempty"`
	EarningsHistory       []map[string]interface{} `json:"earnings_history,omitempty"`
	TechnicalIndicators   map[string]interface{}   `json:"technical_indicators,omitempty"`
	Sentiment             map[string]interface{}   `json:"sentiment,omitempty"`
	InsiderActivity       []map[string]interface{} `json:"insider_activity,omitempty"`
	InstitutionalHoldings []map[string]interface{} `json:"institutional_holdings,omitempty"`

	// Unstructured categories
	AnalystReports      []DocumentExcerpt `json:"analyst_reports,omitempty"`
	EarningsTranscripts []DocumentExcerpt `json:"earnings_transcripts,omitempty"`
	Filings             []DocumentExcerpt `json:"filings,omitempty"`
}

// Delta is what a participant returns from one turn: records to append plus the
// new values for the scalar routing fields. The orchestrator merges it; a
// participant never mutates session state directly.
type Delta struct {
	Arguments  []Argument
	FactChecks []FactCheck
	Research   *ResearchData
	Verdict    *Verdict
	Errors     []string

	Next  Actor
	Round int
}

// TurnEvent is emitted by the streaming runner after each completed turn.
type TurnEvent struct {
	Actor       Actor
	Participant string
	Delta       Delta
}

// Participant is one of the debate roles. Act receives a snapshot of the
// session state and returns a delta; it must not retain the snapshot.
type Participant interface {
	Name() string
	Act(ctx context.Context, st *State) (Delta, error)
}

// Oracle is the external text-generation capability. Implementations raise on
// transport or service errors; the engine does not retry.
type Oracle interface {
	Complete(ctx context.Context, prompt string, systemPrompt string) (string, error)
}

// QueryLogEntry records one research provider call for diagnostics. The engine
// passes these through opaquely.
type QueryLogEntry struct {
	Kind      string                 `json:"kind"`
	Query     string                 `json:"query"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ResearchProvider is the external research capability: structured accessors
// over warehouse data plus ranked document search. Each accessor is independent
// and may fail in isolation.
type ResearchProvider interface {
	Metrics(ctx context.Context, ticker string) (map[string]interface{}, error)
	EarningsHistory(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error)
	TechnicalIndicators(ctx context.Context, ticker string) (map[string]interface{}, error)
	Sentiment(ctx context.Context, ticker string) (map[string]interface{}, error)
	InsiderActivity(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error)
	InstitutionalHoldings(ctx context.Context, ticker string, limit int) ([]map[string]interface{}, error)

	AnalystReports(ctx context.Context, query, ticker string, limit int) ([]DocumentExcerpt, error)
	EarningsTranscripts(ctx context.Context, query, ticker string, limit int) ([]DocumentExcerpt, error)
	Filings(ctx context.Context, query, ticker string, limit int) ([]DocumentExcerpt, error)

	// Search performs free-text semantic search over a document collection,
	// filterable by ticker, returning ranked excerpts with provenance.
	Search(ctx context.Context, collection, query, ticker string, limit int) ([]DocumentExcerpt, error)

	// QueryLog returns the accumulated diagnostic query log.
	QueryLog() []QueryLogEntry
}

// Limits caps how much of each research category is fetched.
type Limits struct {
	Earnings    int
	Insider     int
	Holdings    int
	Reports     int
	Transcripts int
	Filings     int
}

// DefaultLimits mirrors the per-category defaults used by the research stage.
func DefaultLimits() Limits {
	return Limits{Earnings: 4, Insider: 5, Holdings: 5, Reports: 5, Transcripts: 3, Filings: 3}
}
