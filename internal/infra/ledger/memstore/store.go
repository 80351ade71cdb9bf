package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/storefront/internal/domain/record"
)

// Store keeps collections in process memory. It backs LEDGER_DRIVER=memory and tests.
type Store struct {
	mu          sync.Mutex
	collections map[string]*record.Collection
	now         func() time.Time
}

func New() *Store {
	return &Store{
		collections: make(map[string]*record.Collection),
		now:         time.Now,
	}
}

// WithClock replaces the clock used for created_at and sequence periods.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Append(ctx context.Context, collection string, rec record.Record) (string, error) {
	var id string
	err := s.with(ctx, collection, func(c *record.Collection) error {
		id = rec.ID()
		if id == "" {
			id = uuid.NewString()
		}
		if c.Has(id) {
			return fmt.Errorf("%w: %s/%s", record.ErrDuplicateID, collection, id)
		}
		c.Add(rec, id, s.now())
		return nil
	})
	return id, err
}

func (s *Store) AppendSequenced(ctx context.Context, collection string, rec record.Record, seq record.Sequence) (string, error) {
	var id string
	err := s.with(ctx, collection, func(c *record.Collection) error {
		now := s.now()
		next, err := c.Allocate(seq, now)
		if err != nil {
			return err
		}
		out := rec.Clone()
		out[record.FieldID] = next
		c.Add(out, next, now)
		id = next
		return nil
	})
	return id, err
}

func (s *Store) Update(ctx context.Context, collection string, match func(record.Record) bool, mutate func(record.Record) error) (bool, error) {
	var found bool
	err := s.with(ctx, collection, func(c *record.Collection) error {
		var err error
		found, err = c.Apply(match, mutate)
		return err
	})
	return found, err
}

func (s *Store) ReadAll(ctx context.Context, collection string) ([]record.Record, error) {
	var out []record.Record
	err := s.with(ctx, collection, func(c *record.Collection) error {
		out = c.Snapshot()
		return nil
	})
	return out, err
}

func (s *Store) with(ctx context.Context, collection string, fn func(*record.Collection) error) error {
	if err := record.ValidateCollection(collection); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[collection]
	if !ok {
		c = &record.Collection{}
		s.collections[collection] = c
	}
	return fn(c)
}
