// Package memstore is an in-memory ledger.Store. Update runs against a copy
// of the data and publishes it only when the function succeeds.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/shunichi-ikebuchi/pocketr/pkg/ledger"
)

type pairKey struct {
	householdID string
	otherID     string
}

type state struct {
	currencies   map[string]ledger.Currency
	users        map[string]ledger.User
	accounts     map[string]ledger.Account
	tags         map[string]ledger.CategoryTag
	households   map[string]ledger.HouseholdInfo
	members      map[pairKey]ledger.Member
	shares       map[pairKey]time.Time
	transactions []ledger.Transaction
}

func newState() *state {
	return &state{
		currencies: make(map[string]ledger.Currency),
		users:      make(map[string]ledger.User),
		accounts:   make(map[string]ledger.Account),
		tags:       make(map[string]ledger.CategoryTag),
		households: make(map[string]ledger.HouseholdInfo),
		members:    make(map[pairKey]ledger.Member),
		shares:     make(map[pairKey]time.Time),
	}
}

// clone copies every table. Rows are values and split slices are never
// modified after insert, so a shallow copy per table is enough.
func (s *state) clone() *state {
	c := newState()
	for k, v := range s.currencies {
		c.currencies[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	for k, v := range s.tags {
		c.tags[k] = v
	}
	for k, v := range s.households {
		c.households[k] = v
	}
	for k, v := range s.members {
		c.members[k] = v
	}
	for k, v := range s.shares {
		c.shares[k] = v
	}
	c.transactions = append(c.transactions, s.transactions...)
	return c
}

// Store is a thread-safe in-memory ledger.Store. Writers are serialized.
type Store struct {
	mu   sync.RWMutex
	data *state
}

// New creates an empty Store holding the given currencies.
func New(currencies ...ledger.Currency) *Store {
	data := newState()
	for _, c := range currencies {
		data.currencies[c.Code] = c
	}
	return &Store{data: data}
}

// Update implements ledger.Store.
func (s *Store) Update(ctx context.Context, fn func(ledger.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(&repository{data: working}); err != nil {
		return err
	}
	s.data = working
	return nil
}

// View implements ledger.Store.
func (s *Store) View(ctx context.Context, fn func(ledger.Repository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(&repository{data: s.data, readOnly: true})
}

// Compile-time check: ensure Store implements ledger.Store
var _ ledger.Store = (*Store)(nil)
