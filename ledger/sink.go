package ledger

import (
	"context"
	"sync"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/sink"
)

// Sink forwards units to another sink and records each written unit under a
// run.
type Sink struct {
	store *Store
	runID string
	next  sink.Sink

	mu  sync.Mutex
	seq int
}

// Sink returns a recording sink for runID in front of next.
func (s *Store) Sink(runID string, next sink.Sink) *Sink {
	return &Sink{store: s, runID: runID, next: next}
}

// Write writes unit to the next sink, then records it.
func (ls *Sink) Write(ctx context.Context, unit *emit.Unit) error {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := ls.next.Write(ctx, unit); err != nil {
		return err
	}
	ls.seq++
	return ls.store.RecordUnit(ctx, ls.runID, ls.seq, unit)
}

var _ sink.Sink = (*Sink)(nil)
