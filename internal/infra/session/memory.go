package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	domsession "example.com/storefront/internal/domain/session"
)

type entry struct {
	data    *domsession.Context
	expires time.Time
	lock    chan struct{}
}

// MemoryStore keeps sessions in process memory. Open holds the session for the
// caller until Release.
type MemoryStore struct {
	ttl         time.Duration
	lockTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger

	mu      sync.Mutex
	entries map[string]*entry
}

func NewMemoryStore(ttl, lockTimeout time.Duration, logger *slog.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if lockTimeout <= 0 {
		lockTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryStore{
		ttl:         ttl,
		lockTimeout: lockTimeout,
		now:         time.Now,
		logger:      logger,
		entries:     make(map[string]*entry),
	}
}

// Open locks the session id and returns a private copy of its state. Unknown or
// expired ids start an empty session.
func (s *MemoryStore) Open(ctx context.Context, id string) (*domsession.Context, error) {
	if id == "" {
		return nil, domsession.ErrSessionNotFound
	}
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()

	for {
		e := s.entry(id)
		select {
		case e.lock <- struct{}{}:
		case <-timer.C:
			return nil, domsession.ErrSessionBusy
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		s.mu.Lock()
		current := s.entries[id] == e
		if current {
			now := s.now()
			if e.data == nil || now.After(e.expires) {
				e.data = &domsession.Context{ID: id, CreatedAt: now, UpdatedAt: now}
				e.expires = now.Add(s.ttl)
			}
		}
		s.mu.Unlock()

		if current {
			return e.data.Clone(), nil
		}
		// swept while waiting
		<-e.lock
	}
}

// Save must be called between Open and Release for the same id.
func (s *MemoryStore) Save(ctx context.Context, sess *domsession.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[sess.ID]
	if !ok {
		return domsession.ErrSessionNotFound
	}
	now := s.now()
	stored := sess.Clone()
	stored.UpdatedAt = now
	e.data = stored
	e.expires = now.Add(s.ttl)
	return nil
}

func (s *MemoryStore) Release(id string) {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	if !ok {
		return
	}
	select {
	case <-e.lock:
	default:
	}
}

// Sweep drops expired sessions nobody holds and reports how many went.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if now.Before(e.expires) {
			continue
		}
		select {
		case e.lock <- struct{}{}:
			delete(s.entries, id)
			removed++
		default:
		}
	}
	return removed
}

// Run sweeps on every interval until ctx ends.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug("expired sessions swept", slog.Int("count", n))
			}
		}
	}
}

func (s *MemoryStore) entry(id string) *entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		e = &entry{lock: make(chan struct{}, 1)}
		s.entries[id] = e
	}
	return e
}
