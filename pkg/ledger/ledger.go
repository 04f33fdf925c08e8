// Package ledger implements a household double-entry bookkeeping core:
// validation, access control, posting and balance queries over a
// transactional Store.
package ledger

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/pocketr/pkg/date"
)

// OpeningEquityName is the fixed name of the per-owner, per-currency EQUITY
// account that balances opening balances.
const OpeningEquityName = "Opening Equity"

// Ledger runs ledger operations against a Store.
type Ledger struct {
	store  Store
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used for timestamps and default dates.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
	}
}

// WithIDGenerator replaces the UUID generator, mainly for deterministic tests.
func WithIDGenerator(newID func() string) Option {
	return func(l *Ledger) {
		l.newID = newID
	}
}

// New creates a new Ledger.
func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:  store,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Ledger) timestamp() time.Time {
	return l.now().UTC()
}

func (l *Ledger) today() date.Date {
	return date.Of(l.now())
}
