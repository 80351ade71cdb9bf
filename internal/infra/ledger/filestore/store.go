package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"example.com/storefront/internal/domain/record"
)

const (
	defaultLockTimeout  = 2 * time.Second
	defaultPollInterval = 10 * time.Millisecond
)

type Options struct {
	LockTimeout  time.Duration
	PollInterval time.Duration
	Clock        func() time.Time
	Logger       *slog.Logger
}

// Store keeps each collection in <dir>/<collection>.json. Writers hold an
// exclusive flock on <dir>/<collection>.lock for the whole read-modify-write,
// so separate processes sharing dir are serialised too.
type Store struct {
	dir          string
	lockTimeout  time.Duration
	pollInterval time.Duration
	now          func() time.Time
	logger       *slog.Logger

	mu    sync.Mutex
	gates map[string]chan struct{}
}

func New(dir string, opts Options) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", record.ErrUnwritable, dir, err)
	}
	s := &Store{
		dir:          dir,
		lockTimeout:  opts.LockTimeout,
		pollInterval: opts.PollInterval,
		now:          opts.Clock,
		logger:       opts.Logger,
		gates:        make(map[string]chan struct{}),
	}
	if s.lockTimeout <= 0 {
		s.lockTimeout = defaultLockTimeout
	}
	if s.pollInterval <= 0 {
		s.pollInterval = defaultPollInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

func (s *Store) Append(ctx context.Context, collection string, rec record.Record) (string, error) {
	var id string
	err := s.write(ctx, collection, func(c *record.Collection) (bool, error) {
		id = rec.ID()
		if id == "" {
			id = uuid.NewString()
		}
		if c.Has(id) {
			return false, fmt.Errorf("%w: %s/%s", record.ErrDuplicateID, collection, id)
		}
		c.Add(rec, id, s.now())
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) AppendSequenced(ctx context.Context, collection string, rec record.Record, seq record.Sequence) (string, error) {
	var id string
	err := s.write(ctx, collection, func(c *record.Collection) (bool, error) {
		now := s.now()
		next, err := c.Allocate(seq, now)
		if err != nil {
			return false, err
		}
		out := rec.Clone()
		out[record.FieldID] = next
		c.Add(out, next, now)
		id = next
		return true, nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection string, match func(record.Record) bool, mutate func(record.Record) error) (bool, error) {
	var found bool
	err := s.write(ctx, collection, func(c *record.Collection) (bool, error) {
		var err error
		found, err = c.Apply(match, mutate)
		return found, err
	})
	return found, err
}

// ReadAll takes the same lock as writers so it never observes a half-applied update.
func (s *Store) ReadAll(ctx context.Context, collection string) ([]record.Record, error) {
	if err := record.ValidateCollection(collection); err != nil {
		return nil, err
	}
	unlock, err := s.lock(ctx, collection)
	if err != nil {
		return nil, err
	}
	defer unlock()

	c, err := s.load(collection)
	if err != nil {
		return nil, err
	}
	return c.Records, nil
}

// write runs fn under the collection lock and persists the collection when fn reports a change.
func (s *Store) write(ctx context.Context, collection string, fn func(*record.Collection) (bool, error)) error {
	if err := record.ValidateCollection(collection); err != nil {
		return err
	}
	unlock, err := s.lock(ctx, collection)
	if err != nil {
		return err
	}
	defer unlock()

	c, err := s.load(collection)
	if err != nil {
		return err
	}
	changed, err := fn(c)
	if err != nil || !changed {
		return err
	}
	if err := s.save(collection, c); err != nil {
		s.logger.Error("ledger write failed",
			slog.String("collection", collection),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// lock serialises goroutines of this process on a per-collection gate, then
// takes the cross-process file lock. Both waits share one deadline.
func (s *Store) lock(ctx context.Context, collection string) (func(), error) {
	deadline := time.Now().Add(s.lockTimeout)
	gate := s.gate(collection)

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case gate <- struct{}{}:
	case <-timer.C:
		return nil, fmt.Errorf("%w: %s lock wait exceeded %s", record.ErrBusy, collection, s.lockTimeout)
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", record.ErrBusy, ctx.Err())
	}

	release, err := lockFile(ctx, s.path(collection, ".lock"), deadline, s.pollInterval)
	if err != nil {
		<-gate
		return nil, err
	}
	return func() {
		release()
		<-gate
	}, nil
}

func (s *Store) gate(collection string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gates[collection]
	if !ok {
		g = make(chan struct{}, 1)
		s.gates[collection] = g
	}
	return g
}

func (s *Store) path(collection, ext string) string {
	return filepath.Join(s.dir, collection+ext)
}

func (s *Store) load(collection string) (*record.Collection, error) {
	raw, err := os.ReadFile(s.path(collection, ".json"))
	if errors.Is(err, fs.ErrNotExist) {
		return &record.Collection{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", record.ErrUnwritable, collection, err)
	}
	return decode(collection, raw)
}

func decode(collection string, raw []byte) (*record.Collection, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &record.Collection{}, nil
	}

	c := &record.Collection{}
	if trimmed[0] == '[' {
		// bare array written by older deployments
		if err := record.Unmarshal(trimmed, &c.Records); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", record.ErrCorrupt, collection, err)
		}
		return c, nil
	}
	if err := record.Unmarshal(trimmed, c); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", record.ErrCorrupt, collection, err)
	}
	for i, r := range c.Records {
		if r == nil {
			return nil, fmt.Errorf("%w: %s: record %d is null", record.ErrCorrupt, collection, i)
		}
	}
	return c, nil
}

// save writes a sibling temp file, fsyncs it, renames it over the collection
// and fsyncs the directory so the rename itself is durable.
func (s *Store) save(collection string, c *record.Collection) error {
	if c.Records == nil {
		c.Records = []record.Record{}
	}
	raw, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %v", record.ErrUnwritable, collection, err)
	}

	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", record.ErrUnwritable, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %v", record.ErrUnwritable, collection, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %v", record.ErrUnwritable, collection, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %v", record.ErrUnwritable, collection, err)
	}
	if err := os.Rename(tmpName, s.path(collection, ".json")); err != nil {
		return fmt.Errorf("%w: rename %s: %v", record.ErrUnwritable, collection, err)
	}
	committed = true

	if err := syncDir(s.dir); err != nil {
		return fmt.Errorf("%w: sync dir: %v", record.ErrUnwritable, err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
