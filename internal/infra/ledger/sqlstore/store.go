package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"

	"example.com/storefront/internal/domain/record"
)

// errAborted rolls back a transaction on a caller's request without logging.
var errAborted = errors.New("ledger update aborted")

type Options struct {
	LockTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Clock           func() time.Time
	Logger          *slog.Logger
}

// Store keeps every collection in three shared tables. A write locks the
// collection's row in ledger_collections for the length of its transaction.
type Store struct {
	db          *sql.DB
	dialect     dialect
	lockTimeout time.Duration
	now         func() time.Time
	logger      *slog.Logger
}

func Open(driver, dsn string, opts Options) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unknown ledger driver %q", driver)
	}
	db, err := sql.Open(d.driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return New(db, driver, opts)
}

// New wraps an existing handle; driver selects the SQL dialect.
func New(db *sql.DB, driver string, opts Options) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unknown ledger driver %q", driver)
	}
	s := &Store{
		db:          db,
		dialect:     d,
		lockTimeout: opts.LockTimeout,
		now:         opts.Clock,
		logger:      opts.Logger,
	}
	if s.lockTimeout <= 0 {
		s.lockTimeout = 2 * time.Second
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate creates the ledger tables when they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate ledger: %w", err)
		}
	}
	return nil
}

func (s *Store) Append(ctx context.Context, collection string, rec record.Record) (string, error) {
	id := rec.ID()
	if id == "" {
		id = uuid.NewString()
	}
	err := s.withCollection(ctx, "append", collection, func(tx *sql.Tx) error {
		return s.insert(ctx, tx, collection, record.Stamp(rec, id, s.now()))
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) AppendSequenced(ctx context.Context, collection string, rec record.Record, seq record.Sequence) (string, error) {
	var id string
	err := s.withCollection(ctx, "append", collection, func(tx *sql.Tx) error {
		now := s.now()
		period := seq.Period(now)

		var last int64
		err := tx.QueryRowContext(ctx, s.q(`SELECT last_value FROM ledger_sequences WHERE collection = ? AND period = ?`),
			collection, period).Scan(&last)
		if err != nil && err != sql.ErrNoRows {
			return err
		}

		var lookupErr error
		next, n, err := record.NextFree(seq, period, last, func(candidate string) bool {
			var one int
			err := tx.QueryRowContext(ctx, s.q(`SELECT 1 FROM ledger_records WHERE collection = ? AND id = ?`),
				collection, candidate).Scan(&one)
			if err != nil && err != sql.ErrNoRows {
				lookupErr = err
				return false
			}
			return err == nil
		})
		if lookupErr != nil {
			return lookupErr
		}
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, s.q(s.dialect.upsertSequence), collection, period, n); err != nil {
			return err
		}

		out := rec.Clone()
		out[record.FieldID] = next
		if err := s.insert(ctx, tx, collection, record.Stamp(out, next, now)); err != nil {
			return err
		}
		id = next
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Update(ctx context.Context, collection string, match func(record.Record) bool, mutate func(record.Record) error) (bool, error) {
	var (
		found     bool
		mutateErr error
	)
	err := s.withCollection(ctx, "update", collection, func(tx *sql.Tx) error {
		rows, err := s.load(ctx, tx, collection)
		if err != nil {
			return err
		}

		var changed []storedRecord
		for _, row := range rows {
			if !match(row.rec) {
				continue
			}
			cp := row.rec.Clone()
			if err := mutate(cp); err != nil {
				mutateErr = err
				return errAborted
			}
			changed = append(changed, storedRecord{position: row.position, rec: cp})
		}

		for _, row := range changed {
			body, err := json.Marshal(row.rec)
			if err != nil {
				return fmt.Errorf("%w: encode record: %v", record.ErrUnwritable, err)
			}
			if _, err := tx.ExecContext(ctx, s.q(`UPDATE ledger_records SET body = ? WHERE position = ?`),
				string(body), row.position); err != nil {
				return err
			}
		}
		found = len(changed) > 0
		return nil
	})
	if mutateErr != nil {
		return false, mutateErr
	}
	if err != nil {
		return false, err
	}
	return found, nil
}

// ReadAll relies on the database's statement-level consistency instead of the collection lock.
func (s *Store) ReadAll(ctx context.Context, collection string) ([]record.Record, error) {
	if err := record.ValidateCollection(collection); err != nil {
		return nil, err
	}
	rows, err := s.load(ctx, s.db, collection)
	if err != nil {
		return nil, translate("read", collection, err)
	}
	out := make([]record.Record, len(rows))
	for i, r := range rows {
		out[i] = r.rec
	}
	return out, nil
}

type storedRecord struct {
	position int64
	rec      record.Record
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) load(ctx context.Context, q queryer, collection string) ([]storedRecord, error) {
	rows, err := q.QueryContext(ctx, s.q(`SELECT position, body FROM ledger_records WHERE collection = ? ORDER BY position`), collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storedRecord
	for rows.Next() {
		var (
			position int64
			body     string
		)
		if err := rows.Scan(&position, &body); err != nil {
			return nil, err
		}
		var rec record.Record
		if err := record.Unmarshal([]byte(body), &rec); err != nil || rec == nil {
			return nil, fmt.Errorf("%w: %s position %d", record.ErrCorrupt, collection, position)
		}
		out = append(out, storedRecord{position: position, rec: rec})
	}
	return out, rows.Err()
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, collection string, rec record.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode record: %v", record.ErrUnwritable, err)
	}
	_, err = tx.ExecContext(ctx, s.q(`INSERT INTO ledger_records (collection, id, body) VALUES (?, ?, ?)`),
		collection, rec.ID(), string(body))
	return err
}

// withCollection runs fn in a transaction holding the collection row lock.
func (s *Store) withCollection(ctx context.Context, op, collection string, fn func(*sql.Tx) error) error {
	if err := record.ValidateCollection(collection); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.q(s.dialect.ensureCollection), collection); err != nil {
		return s.fail(op, collection, err)
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return s.fail(op, collection, fmt.Errorf("begin transaction: %w", err))
	}

	err = func() error {
		if _, err := tx.ExecContext(ctx, s.dialect.lockWait(s.lockTimeout)); err != nil {
			return err
		}
		var name string
		if err := tx.QueryRowContext(ctx, s.q(`SELECT name FROM ledger_collections WHERE name = ? FOR UPDATE`),
			collection).Scan(&name); err != nil {
			return err
		}
		return fn(tx)
	}()
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			s.logger.Warn("ledger rollback failed", slog.String("collection", collection), slog.Any("error", rbErr))
		}
		if errors.Is(err, errAborted) {
			return err
		}
		return s.fail(op, collection, err)
	}
	if err := tx.Commit(); err != nil {
		return s.fail(op, collection, fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func (s *Store) fail(op, collection string, err error) error {
	out := translate(op, collection, err)
	s.logger.Error("ledger operation failed",
		slog.String("op", op),
		slog.String("collection", collection),
		slog.Any("error", err),
	)
	return out
}

func (s *Store) q(query string) string {
	return s.dialect.rebind(query)
}
