package statemachine

import (
	"context"
	"fmt"
	"sync"
)

// Guard evaluates whether a transition may proceed.
type Guard[S, E comparable] func(ctx context.Context, from S, event E) bool

// Transition moves From to To when Event fires and every guard passes.
type Transition[S, E comparable] struct {
	From   S
	Event  E
	To     S
	Guards []Guard[S, E]
}

// Machine is an immutable transition table. It holds no current state, which
// makes it safe to share between goroutines and convenient for entities whose
// state lives in a database row.
type Machine[S, E comparable] struct {
	table map[S]map[E][]Transition[S, E]
}

// New builds a Machine from the given transitions. Transitions sharing the
// same From and Event are tried in order; the first whose guards pass wins.
func New[S, E comparable](transitions ...Transition[S, E]) *Machine[S, E] {
	m := &Machine[S, E]{table: make(map[S]map[E][]Transition[S, E])}
	for _, t := range transitions {
		if m.table[t.From] == nil {
			m.table[t.From] = make(map[E][]Transition[S, E])
		}
		m.table[t.From][t.Event] = append(m.table[t.From][t.Event], t)
	}
	return m
}

// Next returns the state reached from `from` when event fires.
func (m *Machine[S, E]) Next(ctx context.Context, from S, event E) (S, error) {
	transitions := m.table[from][event]
	if len(transitions) == 0 {
		return from, &ErrNoTransitionAvailable{StateName: fmt.Sprint(from), EventName: fmt.Sprint(event)}
	}

	for _, t := range transitions {
		if guardsPass(ctx, t.Guards, from, event) {
			return t.To, nil
		}
	}
	return from, &ErrTransitionRejected{StateName: fmt.Sprint(from), EventName: fmt.Sprint(event)}
}

// Can reports whether event may fire from `from`.
func (m *Machine[S, E]) Can(ctx context.Context, from S, event E) bool {
	_, err := m.Next(ctx, from, event)
	return err == nil
}

// Events lists the events defined for `from`, regardless of guards.
func (m *Machine[S, E]) Events(from S) []E {
	events := make([]E, 0, len(m.table[from]))
	for e := range m.table[from] {
		events = append(events, e)
	}
	return events
}

// Start returns an Instance positioned at initial.
func (m *Machine[S, E]) Start(initial S) *Instance[S, E] {
	return &Instance[S, E]{machine: m, current: initial}
}

// Instance tracks the current state of one entity. It is safe for concurrent use.
type Instance[S, E comparable] struct {
	machine *Machine[S, E]
	mu      sync.RWMutex
	current S
}

// Current returns the current state.
func (i *Instance[S, E]) Current() S {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.current
}

// Fire applies event and returns the new state. On error the state is unchanged.
func (i *Instance[S, E]) Fire(ctx context.Context, event E) (S, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	next, err := i.machine.Next(ctx, i.current, event)
	if err != nil {
		return i.current, err
	}
	i.current = next
	return next, nil
}

func guardsPass[S, E comparable](ctx context.Context, guards []Guard[S, E], from S, event E) bool {
	for _, g := range guards {
		if g != nil && !g(ctx, from, event) {
			return false
		}
	}
	return true
}
