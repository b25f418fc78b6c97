package research

import (
	"sync"
	"time"

	"github.com/mohammad-safakhou/bullbear/internal/debate"
)

// queryLog accumulates diagnostic records of every provider call. Entries are
// opaque to the engine; they surface through the diagnostics sink.
type queryLog struct {
	mu      sync.Mutex
	entries []debate.QueryLogEntry
}

func (l *queryLog) add(kind, query string, detail map[string]interface{}) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.entries = append(l.entries, debate.QueryLogEntry{
		Kind:      kind,
		Query:     query,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
	l.mu.Unlock()
}

func (l *queryLog) snapshot() []debate.QueryLogEntry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]debate.QueryLogEntry(nil), l.entries...)
}
