package debate

import (
	"sync"
	"time"
)

// DiagEvent is one structured diagnostic record. Diagnostics live beside the
// session state, never inside it: they are operator-facing and carry no domain
// meaning.
type DiagEvent struct {
	Time    time.Time              `json:"time"`
	Kind    string                 `json:"kind"` // turn, turn_error, query, note
	Actor   Actor                  `json:"actor,omitempty"`
	Message string                 `json:"message,omitempty"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Diagnostics is a concurrency-safe append-only event sink.
type Diagnostics struct {
	mu     sync.Mutex
	events []DiagEvent
}

func NewDiagnostics() *Diagnostics { return &Diagnostics{} }

func (d *Diagnostics) Record(ev DiagEvent) {
	if d == nil {
		return
	}
	if ev.Time.IsZero() {
		ev.Time = time.Now().UTC()
	}
	d.mu.Lock()
	d.events = append(d.events, ev)
	d.mu.Unlock()
}

// RecordQueryLog copies a research provider query log into the sink. Entries
// pass through opaquely.
func (d *Diagnostics) RecordQueryLog(entries []QueryLogEntry) {
	for _, e := range entries {
		d.Record(DiagEvent{
			Time:    e.Timestamp,
			Kind:    "query",
			Actor:   ActorResearch,
			Message: e.Query,
			Fields:  map[string]interface{}{"kind": e.Kind, "detail": e.Detail},
		})
	}
}

// Events returns a copy of everything recorded so far.
func (d *Diagnostics) Events() []DiagEvent {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]DiagEvent(nil), d.events...)
}
