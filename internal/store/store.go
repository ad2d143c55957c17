// Package store holds the finance state: every entity collection, the UI
// selection, and the mutations the app performs on them.
//
// The store never rejects input and never fails a mutation. Updates and
// deletes addressed to unknown ids are silently ignored. When a Persister is
// configured every mutation hands a snapshot to a background autosaver; the
// caller does not wait for the write.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dvloznov/finance-copilot/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the in-memory finance state container. It is safe for concurrent
// use; readers always observe the latest in-memory state regardless of
// whether it has been persisted yet.
type Store struct {
	mu    sync.RWMutex
	state Snapshot

	newID func() string
	now   func() time.Time
	log   zerolog.Logger
	saver *autosaver
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides the id source (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithClock overrides the time source used for LastUpdated stamps.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) { s.now = fn }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithPersister enables autosave through p.
func WithPersister(p Persister) Option {
	return func(s *Store) {
		if p != nil {
			s.saver = newAutosaver(p)
		}
	}
}

// WithInsights seeds the insight collection of a fresh store.
func WithInsights(insights []domain.FinancialInsight) Option {
	return func(s *Store) { s.state.Insights = append([]domain.FinancialInsight{}, insights...) }
}

// WithForecast seeds the forecast series of a fresh store.
func WithForecast(points []domain.BalanceForecast) Option {
	return func(s *Store) { s.state.Forecast = append([]domain.BalanceForecast{}, points...) }
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		newID: uuid.NewString,
		now:   time.Now,
		log:   zerolog.Nop(),
	}
	s.state.SelectedYear = time.Now().Year()
	for _, opt := range opts {
		opt(s)
	}
	s.state.normalize()
	if s.saver != nil {
		s.saver.log = s.log
		s.saver.start()
	}
	return s
}

// Open creates a store backed by p and restores the last saved snapshot.
// A missing snapshot yields a fresh store.
func Open(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	snap, err := p.Load(ctx)
	if err != nil && !errors.Is(err, ErrNoSnapshot) {
		return nil, fmt.Errorf("Open: load snapshot: %w", err)
	}

	s := New(append(opts, WithPersister(p))...)
	if err == nil {
		s.mu.Lock()
		s.state = snap.Clone()
		s.state.normalize()
		s.mu.Unlock()
		s.log.Info().
			Int("accounts", len(snap.Accounts)).
			Int("transactions", len(snap.Transactions)).
			Msg("Restored finance state")
	}
	return s, nil
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Restore replaces the whole state with snap and persists it.
func (s *Store) Restore(snap Snapshot) {
	s.mutate(func(st *Snapshot) {
		*st = snap.Clone()
		st.normalize()
	})
}

// Flush synchronously writes any snapshot the autosaver has not written yet.
func (s *Store) Flush(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.flush(ctx)
}

// Reload writes out pending local changes, then replaces the in-memory state
// with the persisted snapshot so writes made by other processes become
// visible. The loaded state is not saved back. Without a persister, or when
// nothing is persisted yet, the state is kept.
func (s *Store) Reload(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	if err := s.saver.flush(ctx); err != nil {
		return fmt.Errorf("Reload: %w", err)
	}

	snap, err := s.saver.persister.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("Reload: load snapshot: %w", err)
	}
	snap.normalize()

	s.mu.Lock()
	s.state = snap
	s.mu.Unlock()
	return nil
}

// Close flushes pending state and stops the autosaver.
func (s *Store) Close(ctx context.Context) error {
	if s.saver == nil {
		return nil
	}
	return s.saver.close(ctx)
}

// mutate applies fn under the write lock and schedules persistence of the
// resulting state. Enqueueing happens under the lock so snapshots reach the
// saver in mutation order.
func (s *Store) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	if s.saver != nil {
		s.saver.enqueue(s.state.Clone())
	}
}

// view runs fn under the read lock.
func (s *Store) view(fn func(*Snapshot)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&s.state)
}
