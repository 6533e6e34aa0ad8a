// Package fsm provides explicit transition tables for document status machines.
package fsm

import (
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/apperror"
)

// Edge is one legal transition: in state From, event On moves to state To.
type Edge[S ~string, E ~string] struct {
	From S
	On   E
	To   S
}

// Table holds the legal transitions of one aggregate. Anything not listed is rejected.
type Table[S ~string, E ~string] struct {
	entity string
	edges  map[S]map[E]S
}

// NewTable builds a table for entity from edges.
func NewTable[S ~string, E ~string](entity string, edges ...Edge[S, E]) *Table[S, E] {
	t := &Table[S, E]{entity: entity, edges: make(map[S]map[E]S)}
	for _, e := range edges {
		if t.edges[e.From] == nil {
			t.edges[e.From] = make(map[E]S)
		}
		t.edges[e.From][e.On] = e.To
	}
	return t
}

// Next returns the target state for event on from, or an InvalidState error.
func (t *Table[S, E]) Next(from S, on E) (S, error) {
	if to, ok := t.edges[from][on]; ok {
		return to, nil
	}
	var zero S
	return zero, apperror.NewInvalidState(t.entity, string(from), string(on))
}

// Can reports whether event on is legal in state from.
func (t *Table[S, E]) Can(from S, on E) bool {
	_, ok := t.edges[from][on]
	return ok
}

// Terminal reports whether no event leaves state s.
func (t *Table[S, E]) Terminal(s S) bool {
	return len(t.edges[s]) == 0
}
