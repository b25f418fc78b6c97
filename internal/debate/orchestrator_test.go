package debate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"testing"

	"go.opentelemetry.io/otel"
)

// scriptedOracle answers by role, keyed off the system prompt, and can be told
// to fail for one role.
type scriptedOracle struct {
	mu      sync.Mutex
	calls   []string
	prompts []string
	failOn  string
}

func (o *scriptedOracle) Complete(_ context.Context, prompt string, system string) (string, error) {
	o.mu.Lock()
	o.calls = append(o.calls, system)
	o.prompts = append(o.prompts, prompt)
	o.mu.Unlock()
	if o.failOn != "" && strings.Contains(system, o.failOn) {
		return "", errors.New("oracle unavailable")
	}
	switch {
	case strings.Contains(system, "bull advocate"):
		return "ARGUMENT: Growth is accelerating.\nEVIDENCE: revenue up 20%\nCONFIDENCE: 0.8", nil
	case strings.Contains(system, "bear advocate"):
		return "ARGUMENT: The stock is overvalued.\nEVIDENCE: forward P/E at 60\nCONFIDENCE: 0.75", nil
	case strings.Contains(system, "Fact-check"):
		return "ACCURACY SCORE: 0.6\nFEEDBACK: partially supported by the data", nil
	case strings.Contains(system, "Summarize the round"):
		return "Both sides clashed on valuation versus growth.", nil
	case strings.Contains(system, "judge"):
		return "RECOMMENDATION: BUY\nCONFIDENCE: 0.7\nBULL SCORE: 70\nBEAR SCORE: 55\nSUMMARY: the bull case held up better\nKEY FACTORS:\n- growth\nRISKS:\n- valuation", nil
	}
	return "unscripted", nil
}

// fakeProvider serves canned research and can fail selected categories.
type fakeProvider struct {
	fail map[string]bool
	qlog []QueryLogEntry
}

func (p *fakeProvider) failing(cat string) bool { return p.fail[cat] }

func (p *fakeProvider) Metrics(context.Context, string) (map[string]interface{}, error) {
	if p.failing("metrics") {
		return nil, errors.New("warehouse down")
	}
	return map[string]interface{}{"pe_ratio": 31.5, "company_name": "NVIDIA Corporation"}, nil
}
func (p *fakeProvider) EarningsHistory(context.Context, string, int) ([]map[string]interface{}, error) {
	if p.failing("earnings_history") {
		return nil, errors.New("warehouse down")
	}
	return []map[string]interface{}{{"quarter": "Q2", "eps": 1.4}}, nil
}
func (p *fakeProvider) TechnicalIndicators(context.Context, string) (map[string]interface{}, error) {
	if p.failing("technical_indicators") {
		return nil, errors.New("warehouse down")
	}
	return map[string]interface{}{"rsi": 58.0}, nil
}
func (p *fakeProvider) Sentiment(context.Context, string) (map[string]interface{}, error) {
	if p.failing("sentiment") {
		return nil, errors.New("warehouse down")
	}
	return map[string]interface{}{"score": 0.3}, nil
}
func (p *fakeProvider) InsiderActivity(context.Context, string, int) ([]map[string]interface{}, error) {
	if p.failing("insider_activity") {
		return nil, errors.New("warehouse down")
	}
	return nil, nil
}
func (p *fakeProvider) InstitutionalHoldings(context.Context, string, int) ([]map[string]interface{}, error) {
	if p.failing("institutional_holdings") {
		return nil, errors.New("warehouse down")
	}
	return nil, nil
}
func (p *fakeProvider) AnalystReports(_ context.Context, _, ticker string, _ int) ([]DocumentExcerpt, error) {
	if p.failing("analyst_reports") {
		return nil, errors.New("index down")
	}
	return []DocumentExcerpt{{Collection: "analyst_reports", Ticker: ticker, Content: "overweight"}}, nil
}
func (p *fakeProvider) EarningsTranscripts(_ context.Context, _, ticker string, _ int) ([]DocumentExcerpt, error) {
	if p.failing("earnings_transcripts") {
		return nil, errors.New("index down")
	}
	return nil, nil
}
func (p *fakeProvider) Filings(_ context.Context, _, ticker string, _ int) ([]DocumentExcerpt, error) {
	if p.failing("sec_filings") {
		return nil, errors.New("index down")
	}
	return nil, nil
}
func (p *fakeProvider) Search(_ context.Context, collection, _, ticker string, _ int) ([]DocumentExcerpt, error) {
	return []DocumentExcerpt{{Collection: collection, Ticker: ticker, Content: "hit"}}, nil
}
func (p *fakeProvider) QueryLog() []QueryLogEntry { return p.qlog }

func newTestOrchestrator(oracle Oracle, provider ResearchProvider) *Orchestrator {
	return NewOrchestrator(Options{
		Oracle:      oracle,
		Research:    provider,
		Diagnostics: NewDiagnostics(),
	})
}

func TestFullDebateOneRound(t *testing.T) {
	oracle := &scriptedOracle{}
	o := newTestOrchestrator(oracle, &fakeProvider{})
	st := New("NVDA", "is the rally durable", 1)
	if err := o.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	if st.Next != ActorEnd {
		t.Fatalf("next = %q, want end", st.Next)
	}
	if st.Round != 1 {
		t.Fatalf("round = %d, want 1", st.Round)
	}
	if st.Research == nil || st.Research.Metrics["pe_ratio"] != 31.5 {
		t.Fatal("research bundle missing")
	}
	// one round: bull, bear, moderator summary. The judge adds no argument.
	if len(st.Arguments) != 3 {
		t.Fatalf("arguments = %d, want 3", len(st.Arguments))
	}
	want := []Speaker{SpeakerBull, SpeakerBear, SpeakerModerator}
	for i, sp := range want {
		if st.Arguments[i].Speaker != sp {
			t.Fatalf("argument[%d].speaker = %q, want %q", i, st.Arguments[i].Speaker, sp)
		}
	}
	if st.Arguments[2].Confidence != 0.9 {
		t.Fatalf("moderator summary confidence = %v, want fixed 0.9", st.Arguments[2].Confidence)
	}
	if len(st.FactChecks) != 2 {
		t.Fatalf("fact checks = %d, want 2", len(st.FactChecks))
	}
	if st.FactChecks[0].Subject != SpeakerBull || st.FactChecks[1].Subject != SpeakerBear {
		t.Fatalf("fact check subjects = %q, %q", st.FactChecks[0].Subject, st.FactChecks[1].Subject)
	}
	if st.Verdict == nil || st.Verdict.Recommendation != Buy {
		t.Fatalf("verdict = %+v", st.Verdict)
	}
}

func TestFullDebateTwoRoundsActorSequence(t *testing.T) {
	oracle := &scriptedOracle{}
	o := newTestOrchestrator(oracle, &fakeProvider{})
	st := New("AAPL", "", 2)
	var seq []Actor
	err := o.RunStream(context.Background(), st, func(ev TurnEvent) {
		seq = append(seq, ev.Actor)
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []Actor{ActorResearch, ActorBull, ActorBear, ActorModerator, ActorBull, ActorBear, ActorModerator, ActorJudge}
	if len(seq) != len(want) {
		t.Fatalf("turns = %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("turn %d = %q, want %q (full: %v)", i, seq[i], want[i], seq)
		}
	}
	if len(st.Arguments) != 6 || len(st.FactChecks) != 4 {
		t.Fatalf("records = %d args, %d checks", len(st.Arguments), len(st.FactChecks))
	}
	if st.Round != 2 {
		t.Fatalf("round = %d, want 2", st.Round)
	}
}

func TestOracleFailureAbortsSession(t *testing.T) {
	oracle := &scriptedOracle{failOn: "judge"}
	o := newTestOrchestrator(oracle, &fakeProvider{})
	st := New("TSLA", "", 1)
	err := o.Run(context.Background(), st)
	var te *TurnError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TurnError", err)
	}
	if te.Actor != ActorJudge {
		t.Fatalf("failing actor = %q, want judge", te.Actor)
	}
	if st.Verdict != nil {
		t.Fatal("aborted session must not carry a verdict")
	}
	// everything up to the failure is retained
	if len(st.Arguments) != 3 {
		t.Fatalf("arguments = %d, want transcript preserved", len(st.Arguments))
	}
}

// stuckParticipant never routes forward, exercising the step ceiling.
type stuckParticipant struct{}

func (stuckParticipant) Name() string { return "stuck" }
func (stuckParticipant) Act(_ context.Context, st *State) (Delta, error) {
	return Delta{Next: ActorResearch, Round: st.Round}, nil
}

func TestRoutingExhaustionIsDistinctError(t *testing.T) {
	o := &Orchestrator{
		participants: map[Actor]Participant{ActorResearch: stuckParticipant{}},
		logger:       log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
		tracer:       otel.Tracer("test"),
	}
	st := New("GME", "", 1)
	err := o.Run(context.Background(), st)
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("err = %v, want ExhaustedError", err)
	}
	if ex.Steps != 3*1+4 {
		t.Fatalf("steps = %d, want ceiling 7", ex.Steps)
	}
	var te *TurnError
	if errors.As(err, &te) {
		t.Fatal("exhaustion must not look like a turn failure")
	}
}

func TestAdvocateRoundLimitBypass(t *testing.T) {
	oracle := &scriptedOracle{}
	bull := NewBull(oracle, 500)
	st := New("AMD", "", 1)
	st.Round = 1 // limit already reached
	d, err := bull.Act(context.Background(), st)
	if err != nil {
		t.Fatalf("act: %v", err)
	}
	if d.Next != ActorJudge {
		t.Fatalf("next = %q, want judge", d.Next)
	}
	// the advocate still argues before deferring to the judge
	if len(d.Arguments) != 1 || d.Arguments[0].Speaker != SpeakerBull {
		t.Fatalf("arguments = %+v, want one bull argument", d.Arguments)
	}
	if len(oracle.calls) != 1 {
		t.Fatalf("oracle calls = %d, want 1", len(oracle.calls))
	}
}

func TestDefaultQuestionReachesAdvocatePrompt(t *testing.T) {
	oracle := &scriptedOracle{}
	bull := NewBull(oracle, 500)
	st := New("XYZ", "", 1)
	if _, err := bull.Act(context.Background(), st); err != nil {
		t.Fatalf("act: %v", err)
	}
	if len(oracle.prompts) != 1 {
		t.Fatalf("prompts = %d, want 1", len(oracle.prompts))
	}
	if !strings.Contains(oracle.prompts[0], "Should we buy or sell XYZ?") {
		t.Fatalf("prompt missing default objective:\n%s", oracle.prompts[0])
	}
}

func TestModeratorRoutesByRound(t *testing.T) {
	oracle := &scriptedOracle{}
	mod := NewModerator(oracle, 500)
	st := New("INTC", "", 2)
	st.Apply(Delta{Arguments: []Argument{
		{Speaker: SpeakerBull, Content: "for"},
		{Speaker: SpeakerBear, Content: "against"},
	}, Next: ActorModerator, Round: 0})

	d, err := mod.Act(context.Background(), st)
	if err != nil {
		t.Fatalf("act: %v", err)
	}
	if d.Round != 1 || d.Next != ActorBull {
		t.Fatalf("round=%d next=%q, want 1/bull", d.Round, d.Next)
	}

	st.Apply(d)
	st.Apply(Delta{Arguments: []Argument{
		{Speaker: SpeakerBull, Content: "for 2"},
		{Speaker: SpeakerBear, Content: "against 2"},
	}, Next: ActorModerator, Round: 1})
	d, err = mod.Act(context.Background(), st)
	if err != nil {
		t.Fatalf("act: %v", err)
	}
	if d.Round != 2 || d.Next != ActorJudge {
		t.Fatalf("round=%d next=%q, want 2/judge", d.Round, d.Next)
	}
}

func TestQueryLogReachesDiagnostics(t *testing.T) {
	oracle := &scriptedOracle{}
	provider := &fakeProvider{qlog: []QueryLogEntry{{Kind: "sql", Query: "select 1"}}}
	diag := NewDiagnostics()
	o := NewOrchestrator(Options{Oracle: oracle, Research: provider, Diagnostics: diag})
	st := New("NVDA", "", 1)
	if err := o.Run(context.Background(), st); err != nil {
		t.Fatalf("run: %v", err)
	}
	var found bool
	for _, ev := range diag.Events() {
		if ev.Kind == "query" && ev.Message == "select 1" {
			found = true
		}
	}
	if !found {
		t.Fatal("provider query log not recorded in diagnostics")
	}
}
