// Package memory is a process-local storage backend.
//
// A Store keeps every aggregate in maps guarded by one lock. Transactions take
// the write lock, work on a copy of the state and swap it in on commit, so a
// failed use case leaves nothing behind. Nested transactions reuse the copy.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/harpreet-2146/FM-demo-sub001/internal/core/id"
	"github.com/harpreet-2146/FM-demo-sub001/internal/core/tx"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/audit"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/auth"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/catalog/material"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/dispatch"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/grn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/invoice"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/returns"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/sale"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/documents/srn"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/inventory"
	"github.com/harpreet-2146/FM-demo-sub001/internal/domain/notification"
)

var _ tx.ReadOnlyManager = (*Store)(nil)

type stockKey struct {
	material id.ID
	owner    id.ID
}

type seqKey struct {
	prefix string
	day    string
}

type outboxRow struct {
	event    notification.Event
	attempts int
	lastErr  string
}

// state is one consistent snapshot of everything.
// Values stored in maps are never mutated in place; writers replace them.
type state struct {
	users       map[id.ID]auth.User
	materials   map[id.ID]material.Material
	mfgStock    map[stockKey]inventory.ManufacturerStock
	retStock    map[stockKey]inventory.RetailerStock
	ledger      []inventory.Transaction
	srns        map[id.ID]srn.SRN
	dispatches  map[id.ID]dispatch.Order
	grns        map[id.ID]grn.GRN
	invoices    map[id.ID]invoice.Invoice
	sales       map[id.ID]sale.Sale
	commissions map[id.ID]sale.Commission
	returns     map[id.ID]returns.Return
	inbox       []notification.Notification
	audit       []audit.Entry
	outbox      []outboxRow
	deadLetters []outboxRow
	sequences   map[seqKey]int64
}

func newState() *state {
	return &state{
		users:       make(map[id.ID]auth.User),
		materials:   make(map[id.ID]material.Material),
		mfgStock:    make(map[stockKey]inventory.ManufacturerStock),
		retStock:    make(map[stockKey]inventory.RetailerStock),
		srns:        make(map[id.ID]srn.SRN),
		dispatches:  make(map[id.ID]dispatch.Order),
		grns:        make(map[id.ID]grn.GRN),
		invoices:    make(map[id.ID]invoice.Invoice),
		sales:       make(map[id.ID]sale.Sale),
		commissions: make(map[id.ID]sale.Commission),
		returns:     make(map[id.ID]returns.Return),
		sequences:   make(map[seqKey]int64),
	}
}

// clone copies the containers. Append-only slices are clipped so appends in a
// discarded transaction never write into the committed backing array.
func (s *state) clone() *state {
	return &state{
		users:       maps.Clone(s.users),
		materials:   maps.Clone(s.materials),
		mfgStock:    maps.Clone(s.mfgStock),
		retStock:    maps.Clone(s.retStock),
		ledger:      slices.Clip(s.ledger),
		srns:        maps.Clone(s.srns),
		dispatches:  maps.Clone(s.dispatches),
		grns:        maps.Clone(s.grns),
		invoices:    maps.Clone(s.invoices),
		sales:       maps.Clone(s.sales),
		commissions: maps.Clone(s.commissions),
		returns:     maps.Clone(s.returns),
		inbox:       slices.Clone(s.inbox),
		audit:       slices.Clip(s.audit),
		outbox:      slices.Clone(s.outbox),
		deadLetters: slices.Clip(s.deadLetters),
		sequences:   maps.Clone(s.sequences),
	}
}

// Store is the in-memory database. The zero value is not usable; call New.
type Store struct {
	mu sync.RWMutex
	st *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: newState()}
}

type txKey struct{}

func current(ctx context.Context) (*state, bool) {
	st, ok := ctx.Value(txKey{}).(*state)
	return st, ok
}

// RunInTransaction implements tx.Manager.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := current(ctx); ok {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(context.WithValue(ctx, txKey{}, work)); err != nil {
		return err
	}
	s.st = work
	return nil
}

// ReadOnly implements tx.ReadOnlyManager. Writes inside fn are discarded.
func (s *Store) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := current(ctx); ok {
		return fn(ctx)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(context.WithValue(ctx, txKey{}, s.st.clone()))
}

// read runs fn against the transaction state or a read-locked snapshot.
func (s *Store) read(ctx context.Context, fn func(st *state) error) error {
	if st, ok := current(ctx); ok {
		return fn(st)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// write runs fn inside the caller's transaction or a fresh one.
func (s *Store) write(ctx context.Context, fn func(st *state) error) error {
	return s.RunInTransaction(ctx, func(ctx context.Context) error {
		st, _ := current(ctx)
		return fn(st)
	})
}

// sortedValues returns the values of m accepted by keep, ordered by cmp.
func sortedValues[K comparable, V any](m map[K]V, keep func(V) bool, cmp func(a, b V) int) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, cmp)
	return out
}

func matchID(filter *id.ID, v id.ID) bool {
	return filter == nil || *filter == v
}
