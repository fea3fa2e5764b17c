package session

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/goliatone/go-careerpath/pkg/form"
)

// DefaultCapacity bounds the number of live sessions kept in memory.
const DefaultCapacity = 4096

// State is the data guarded by an Entry: the form session and the last
// submission failure message shown on the final page.
type State struct {
	Session form.Session
	Notice  string
}

// Entry owns one visitor's state. All reads and writes go through its mutex
// so each transition is applied atomically.
type Entry struct {
	id      string
	created time.Time

	mu    sync.Mutex
	state State
}

// ID returns the session identifier.
func (e *Entry) ID() string {
	return e.id
}

// Created reports when the entry was issued.
func (e *Entry) Created() time.Time {
	return e.created
}

// Snapshot returns a deep copy of the current state.
func (e *Entry) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{Session: e.state.Session.Clone(), Notice: e.state.Notice}
}

// Update runs fn with exclusive access to the state. fn must not block on
// network I/O; submissions snapshot under Update and report back with a
// second Update once the exchange finishes.
func (e *Entry) Update(fn func(*State) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.state)
}

// Option configures the Store.
type Option func(*Store)

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for identifiers.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store keeps sessions in a bounded LRU keyed by ULID. Sessions are memory
// only; a restart or eviction discards them.
type Store struct {
	cache  *lru.Cache[string, *Entry]
	logger *zap.Logger
	now    func() time.Time
}

// New creates a store holding at most capacity sessions.
func New(capacity int, options ...Option) (*Store, error) {
	if capacity <= 0 {
		return nil, errors.New("session: capacity must be positive")
	}
	s := &Store{
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	cache, err := lru.NewWithEvict[string, *Entry](capacity, func(id string, _ *Entry) {
		s.logger.Debug("session evicted", zap.String("session", id))
	})
	if err != nil {
		return nil, fmt.Errorf("session: create cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Create issues a new entry holding a fresh form session.
func (s *Store) Create() *Entry {
	now := s.now()
	entry := &Entry{
		id:      ulid.MustNew(ulid.Timestamp(now), rand.Reader).String(),
		created: now,
		state:   State{Session: form.NewSession()},
	}
	s.cache.Add(entry.id, entry)
	return entry
}

// Get returns the entry for id.
func (s *Store) Get(id string) (*Entry, bool) {
	if id == "" {
		return nil, false
	}
	return s.cache.Get(id)
}

// GetOrCreate returns the entry for id, creating a new one when missing.
// The boolean reports whether a new entry was issued.
func (s *Store) GetOrCreate(id string) (*Entry, bool) {
	if entry, ok := s.Get(id); ok {
		return entry, false
	}
	return s.Create(), true
}

// Delete discards a session.
func (s *Store) Delete(id string) {
	s.cache.Remove(id)
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	return s.cache.Len()
}
