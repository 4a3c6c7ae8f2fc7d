// Package sink receives emitted units. Every sink treats a second unit with an
// already-written key as a collision and never overwrites the first.
package sink

import (
	"context"
	"sync"

	"github.com/teranos/namedargs/emit"
	"github.com/teranos/namedargs/errors"
)

// Sink consumes generated units. Write is synchronous; a returned error is
// fatal for the run.
type Sink interface {
	Write(ctx context.Context, unit *emit.Unit) error
}

// Func adapts a function to the Sink interface.
type Func func(ctx context.Context, unit *emit.Unit) error

// Write calls f.
func (f Func) Write(ctx context.Context, unit *emit.Unit) error {
	return f(ctx, unit)
}

// Memory keeps units in write order.
type Memory struct {
	mu    sync.Mutex
	units []*emit.Unit
	index map[emit.Key]int
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{index: make(map[emit.Key]int)}
}

// Write stores unit, or fails with ErrCollision when its key was seen before.
func (m *Memory) Write(ctx context.Context, unit *emit.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if unit == nil {
		return errors.AssertionFailedf("sink: nil unit")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if i, ok := m.index[unit.Key]; ok {
		return collision(unit, m.units[i].Origin)
	}
	m.index[unit.Key] = len(m.units)
	m.units = append(m.units, unit)
	return nil
}

// Units returns the stored units in write order.
func (m *Memory) Units() []*emit.Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*emit.Unit(nil), m.units...)
}

// Get returns the unit stored under key.
func (m *Memory) Get(key emit.Key) (*emit.Unit, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.units[i], true
}

// Len returns the number of stored units.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.units)
}

// Tee writes each unit to every sink in order and stops at the first error.
type Tee []Sink

// Write fans unit out.
func (t Tee) Write(ctx context.Context, unit *emit.Unit) error {
	for _, s := range t {
		if err := s.Write(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

func collision(unit *emit.Unit, firstOrigin string) error {
	return errors.WithHintf(
		errors.NewCollision("%s from %s was already written by %s", unit.Key, unit.Origin, firstOrigin),
		"rename one of the declarations; receivers that share a simple name in one package produce the same carrier name")
}
