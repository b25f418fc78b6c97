package debate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// State is the full session record. It is owned by the orchestrator; participants
// only ever see snapshots and communicate changes back through deltas.
type State struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Question  string    `json:"question"`
	CreatedAt time.Time `json:"created_at"`

	Research   *ResearchData `json:"research,omitempty"`
	Arguments  []Argument    `json:"arguments"`
	FactChecks []FactCheck   `json:"fact_checks"`
	Verdict    *Verdict      `json:"verdict,omitempty"`
	Errors     []string      `json:"errors,omitempty"`

	Round     int   `json:"round"`
	MaxRounds int   `json:"max_rounds"`
	Next      Actor `json:"next"`
}

// DefaultQuestion is the objective of a session started without one.
func DefaultQuestion(ticker string) string {
	return fmt.Sprintf("Should we buy or sell %s?", strings.ToUpper(ticker))
}

// New creates a fresh session positioned at the research stage. An empty
// question gets the default buy-or-sell objective.
func New(ticker, question string, maxRounds int) *State {
	if maxRounds <= 0 {
		maxRounds = 1
	}
	if strings.TrimSpace(question) == "" {
		question = DefaultQuestion(ticker)
	}
	return &State{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Question:  question,
		CreatedAt: time.Now().UTC(),
		MaxRounds: maxRounds,
		Next:      ActorResearch,
	}
}

// Apply merges a turn delta: record slices append, scalar routing fields
// overwrite, one-shot pointers set only when present in the delta.
func (s *State) Apply(d Delta) {
	s.Arguments = append(s.Arguments, d.Arguments...)
	s.FactChecks = append(s.FactChecks, d.FactChecks...)
	s.Errors = append(s.Errors, d.Errors...)
	if d.Research != nil {
		s.Research = d.Research
	}
	if d.Verdict != nil {
		s.Verdict = d.Verdict
	}
	s.Round = d.Round
	s.Next = d.Next
}

// Snapshot returns a copy of the state safe to hand to a participant. Slices
// are copied; the research and verdict records are treated as immutable once
// set so sharing the pointers is fine.
func (s *State) Snapshot() *State {
	cp := *s
	cp.Arguments = append([]Argument(nil), s.Arguments...)
	cp.FactChecks = append([]FactCheck(nil), s.FactChecks...)
	cp.Errors = append([]string(nil), s.Errors...)
	return &cp
}

// LastArguments returns up to n most recent arguments, oldest first.
func (s *State) LastArguments(n int) []Argument {
	if n <= 0 || len(s.Arguments) == 0 {
		return nil
	}
	if n > len(s.Arguments) {
		n = len(s.Arguments)
	}
	return s.Arguments[len(s.Arguments)-n:]
}

// LastBySpeaker returns the most recent argument by the given speaker, or nil.
func (s *State) LastBySpeaker(sp Speaker) *Argument {
	for i := len(s.Arguments) - 1; i >= 0; i-- {
		if s.Arguments[i].Speaker == sp {
			return &s.Arguments[i]
		}
	}
	return nil
}

// ExportedArgument is the reduced transcript entry in an export record.
type ExportedArgument struct {
	Speaker Speaker `json:"speaker"`
	Content string  `json:"content"`
}

// ExportRecord is the flat result shape handed to persistence and API clients.
type ExportRecord struct {
	ID        string             `json:"id"`
	Ticker    string             `json:"ticker"`
	Question  string             `json:"question"`
	Verdict   *Verdict           `json:"verdict,omitempty"`
	Arguments []ExportedArgument `json:"arguments"`
	Errors    []string           `json:"errors,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// Export reduces the session to the flat record shape: the verdict plus the
// transcript stripped down to speaker and content.
func (s *State) Export() ExportRecord {
	args := make([]ExportedArgument, 0, len(s.Arguments))
	for _, a := range s.Arguments {
		args = append(args, ExportedArgument{Speaker: a.Speaker, Content: a.Content})
	}
	return ExportRecord{
		ID:        s.ID,
		Ticker:    s.Ticker,
		Question:  s.Question,
		Verdict:   s.Verdict,
		Arguments: args,
		Errors:    append([]string(nil), s.Errors...),
		CreatedAt: s.CreatedAt,
	}
}
