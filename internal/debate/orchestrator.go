package debate

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/mohammad-safakhou/bullbear/internal/telemetry"
)

// TurnError is a participant failure: the turn could not complete, so the
// session aborts. The failing actor travels with the error.
type TurnError struct {
	Actor Actor
	Err   error
}

func (e *TurnError) Error() string { return fmt.Sprintf("turn failed (%s): %v", e.Actor, e.Err) }
func (e *TurnError) Unwrap() error { return e.Err }

// ExhaustedError means the routing machine hit the hard step ceiling without
// reaching the terminal state. It is distinct from a turn failure: no
// participant errored, the topology just never converged.
type ExhaustedError struct {
	Steps int
	Stuck Actor
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("debate exhausted after %d steps without terminating (stuck at %s)", e.Steps, e.Stuck)
}

// Options wires an orchestrator. Diagnostics may be nil.
type Options struct {
	Oracle            Oracle
	Research          ResearchProvider
	Limits            Limits
	HistoryPreviewLen int
	Diagnostics       *Diagnostics
}

// Orchestrator drives the routing machine: research, then bull/bear/moderator
// rounds, then the judge. A single logical thread of turns; only the research
// stage fans out internally.
type Orchestrator struct {
	participants map[Actor]Participant
	research     ResearchProvider
	diag         *Diagnostics
	logger       *log.Logger
	tracer       trace.Tracer
}

func NewOrchestrator(opts Options) *Orchestrator {
	if opts.HistoryPreviewLen <= 0 {
		opts.HistoryPreviewLen = DefaultHistoryPreviewLen
	}
	return &Orchestrator{
		participants: map[Actor]Participant{
			ActorResearch:  NewResearch(opts.Research, opts.Limits),
			ActorBull:      NewBull(opts.Oracle, opts.HistoryPreviewLen),
			ActorBear:      NewBear(opts.Oracle, opts.HistoryPreviewLen),
			ActorModerator: NewModerator(opts.Oracle, opts.HistoryPreviewLen),
			ActorJudge:     NewJudge(opts.Oracle, opts.HistoryPreviewLen),
		},
		research: opts.Research,
		diag:     opts.Diagnostics,
		logger:   log.New(log.Writer(), "[ORCH] ", log.LstdFlags),
		tracer:   otel.Tracer("bullbear/debate"),
	}
}

// Diagnostics returns the sink the orchestrator records into (nil if none was
// provided).
func (o *Orchestrator) Diagnostics() *Diagnostics { return o.diag }

// Run drives the session to its terminal state, mutating st in place.
func (o *Orchestrator) Run(ctx context.Context, st *State) error {
	return o.RunStream(ctx, st, nil)
}

// RunStream is Run with a per-turn event callback. The callback is invoked
// synchronously after each delta is merged; a nil sink disables it.
func (o *Orchestrator) RunStream(ctx context.Context, st *State, sink func(TurnEvent)) error {
	ctx, span := o.tracer.Start(ctx, "debate.session", trace.WithAttributes(
		attribute.String("debate.ticker", st.Ticker),
		attribute.Int("debate.max_rounds", st.MaxRounds),
	))
	defer span.End()

	// a round is three turns (bull, bear, moderator); research, judge and
	// slack for the advocate bypass make up the constant
	maxSteps := 3*st.MaxRounds + 4

	for step := 0; step < maxSteps; step++ {
		if st.Next == ActorEnd {
			return o.finish(st)
		}
		if err := ctx.Err(); err != nil {
			telemetry.SessionsTotal.WithLabelValues("canceled").Inc()
			return err
		}
		actor := st.Next
		p, ok := o.participants[actor]
		if !ok {
			err := fmt.Errorf("no participant registered for actor %q", actor)
			span.SetStatus(codes.Error, err.Error())
			telemetry.SessionsTotal.WithLabelValues("error").Inc()
			return err
		}

		tctx, tspan := o.tracer.Start(ctx, "debate.turn", trace.WithAttributes(
			attribute.String("debate.actor", string(actor)),
			attribute.Int("debate.round", st.Round),
			attribute.Int("debate.step", step),
		))
		start := time.Now()
		delta, err := p.Act(tctx, st.Snapshot())
		dur := time.Since(start)
		telemetry.TurnDuration.WithLabelValues(string(actor)).Observe(dur.Seconds())
		if err != nil {
			tspan.RecordError(err)
			tspan.SetStatus(codes.Error, err.Error())
			tspan.End()
			telemetry.DebateTurns.WithLabelValues(string(actor), "error").Inc()
			telemetry.SessionsTotal.WithLabelValues("error").Inc()
			o.diag.Record(DiagEvent{Kind: "turn_error", Actor: actor, Message: err.Error()})
			o.logger.Printf("session %s aborted at %s: %v", st.ID, actor, err)
			return &TurnError{Actor: actor, Err: err}
		}
		tspan.End()
		telemetry.DebateTurns.WithLabelValues(string(actor), "ok").Inc()

		st.Apply(delta)
		o.diag.Record(DiagEvent{Kind: "turn", Actor: actor, Message: p.Name(), Fields: map[string]interface{}{
			"round":       st.Round,
			"next":        string(st.Next),
			"duration_ms": dur.Milliseconds(),
			"arguments":   len(delta.Arguments),
			"fact_checks": len(delta.FactChecks),
		}})
		o.logger.Printf("session %s: %s turn done in %s, round %d, next %s", st.ID, actor, dur.Round(time.Millisecond), st.Round, st.Next)
		if sink != nil {
			sink(TurnEvent{Actor: actor, Participant: p.Name(), Delta: delta})
		}
	}

	if st.Next != ActorEnd {
		telemetry.SessionsTotal.WithLabelValues("exhausted").Inc()
		span.SetStatus(codes.Error, "step ceiling reached")
		return &ExhaustedError{Steps: maxSteps, Stuck: st.Next}
	}
	return o.finish(st)
}

func (o *Orchestrator) finish(st *State) error {
	if o.research != nil {
		o.diag.RecordQueryLog(o.research.QueryLog())
	}
	telemetry.SessionsTotal.WithLabelValues("ok").Inc()
	if st.Verdict != nil {
		telemetry.VerdictsTotal.WithLabelValues(string(st.Verdict.Recommendation)).Inc()
	}
	o.logger.Printf("session %s finished: %d arguments, %d fact-checks, verdict=%v",
		st.ID, len(st.Arguments), len(st.FactChecks), st.Verdict != nil)
	return nil
}
