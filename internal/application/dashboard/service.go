// Package dashboard manages dashboard sessions: each session owns a query
// store, fetches the matching page of publications and drops responses that
// arrive after the query has moved on.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eshaffer321/edition-dashboard/internal/adapters/editions"
	"github.com/eshaffer321/edition-dashboard/internal/domain/query"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/metrics"
	"github.com/eshaffer321/edition-dashboard/internal/infrastructure/storage"
)

// DefaultIdleTTL is how long an untouched session survives background cleanup.
const DefaultIdleTTL = time.Hour

// Publications is the editions API as the service uses it.
type Publications interface {
	List(ctx context.Context, params query.Parameters) (*editions.Page, error)
	Get(ctx context.Context, id string) (*editions.Publication, error)
}

// Service manages dashboard sessions.
type Service struct {
	api     Publications
	runs    storage.FetchRunRepository
	metrics *metrics.Metrics
	logger  *slog.Logger

	defaultLimit int
	idleTTL      time.Duration
	now          func() time.Time

	sessions   map[string]*session
	sessionsMu sync.RWMutex

	// Background cleanup
	cleanupStop chan struct{}
	cleanupDone chan struct{}
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithDefaultLimit sets the page size new sessions start with.
func WithDefaultLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.defaultLimit = limit
		}
	}
}

func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a dashboard service. runs may be nil, in which case
// fetches are not recorded.
func NewService(api Publications, runs storage.FetchRunRepository, opts ...Option) *Service {
	s := &Service{
		api:          api,
		runs:         runs,
		logger:       slog.Default(),
		defaultLimit: query.DefaultLimit,
		idleTTL:      DefaultIdleTTL,
		now:          time.Now,
		sessions:     make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens a session at page 1 with the default page size.
func (s *Service) Create() Snapshot {
	now := s.now()
	sess := &session{
		id: uuid.NewString(),
		store: query.NewStore(
			query.WithFilterFields(query.FilterFields...),
			query.WithSortFields(query.SortFields...),
			query.WithLimit(s.defaultLimit),
		),
		createdAt: now,
		touchedAt: now,
	}

	s.sessionsMu.Lock()
	s.sessions[sess.id] = sess
	count := len(s.sessions)
	s.sessionsMu.Unlock()

	s.metrics.SetActiveSessions(count)
	s.logger.Debug("session created", "session_id", sess.id)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot()
}

// Get returns the session's current state.
func (s *Service) Get(id string) (Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot(), nil
}

// Delete closes a session.
func (s *Service) Delete(id string) error {
	s.sessionsMu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	count := len(s.sessions)
	s.sessionsMu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.metrics.SetActiveSessions(count)
	return nil
}

// Count returns the number of open sessions.
func (s *Service) Count() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// AddFilter applies a filter. A field can carry only one filter at a time;
// remove the existing one first.
func (s *Service) AddFilter(id string, f query.Filter) (Snapshot, error) {
	f.Field = strings.TrimSpace(f.Field)
	return s.mutate(id, func(sess *session) error {
		if sess.store.Current().HasFilterOn(f.Field) {
			return fmt.Errorf("%w: %s", ErrFieldAlreadyFiltered, f.Field)
		}
		_, err := sess.store.AddFilter(f)
		return err
	})
}

func (s *Service) RemoveFilter(id string, f query.Filter) (Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		sess.store.RemoveFilter(f)
		return nil
	})
}

func (s *Service) AddSortClause(id, field string, dir query.Direction) (Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		_, err := sess.store.AddSortClause(field, dir)
		return err
	})
}

func (s *Service) RemoveSortClause(id, field string, dir query.Direction) (Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		sess.store.RemoveSortClause(field, dir)
		return nil
	})
}

// SetPage moves to page n, clamped to the page count of the last result.
func (s *Service) SetPage(id string, n int) (Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		_, err := sess.store.SetPage(n)
		return err
	})
}

// SetLimit changes the page size and returns to page 1.
func (s *Service) SetLimit(id string, n int) (Snapshot, error) {
	return s.mutate(id, func(sess *session) error {
		_, err := sess.store.SetLimit(n)
		return err
	})
}

// mutate runs fn under the session lock. Any change to the query makes
// in-flight fetches for the session stale.
func (s *Service) mutate(id string, fn func(*session) error) (Snapshot, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	before := sess.store.Current()
	if err := fn(sess); err != nil {
		return Snapshot{}, err
	}
	if !before.Equal(sess.store.Current()) {
		sess.tracker.Invalidate()
		s.logger.Debug("session query changed",
			"session_id", id,
			"params", sess.store.Current().String())
	}
	sess.touchedAt = s.now()
	return sess.snapshot(), nil
}

func (s *Service) lookup(id string) (*session, error) {
	s.sessionsMu.RLock()
	sess, ok := s.sessions[id]
	s.sessionsMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}
