package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"example.com/storefront/internal/domain/record"
)

type ErrorClass int

const (
	ErrorClassPermanent ErrorClass = iota
	ErrorClassLockTimeout
	ErrorClassDeadlock
	ErrorClassSerialization
)

func ClassifyError(err error) ErrorClass {
	if err == nil {
		return ErrorClassPermanent
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1205:
			return ErrorClassLockTimeout
		case 1213:
			return ErrorClassDeadlock
		}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "55P03":
			return ErrorClassLockTimeout
		case "40P01":
			return ErrorClassDeadlock
		case "40001":
			return ErrorClassSerialization
		}
	}

	return ErrorClassPermanent
}

// isDuplicateKey reports a unique key violation on either driver.
func isDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// translate maps driver errors onto the ledger sentinels. Sentinels already
// produced by this package pass through untouched.
func translate(op, collection string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, record.ErrBusy) || errors.Is(err, record.ErrCorrupt) ||
		errors.Is(err, record.ErrUnwritable) || errors.Is(err, record.ErrSequenceExhausted) ||
		errors.Is(err, record.ErrInvalidCollection) || errors.Is(err, record.ErrDuplicateID) {
		return err
	}
	if isDuplicateKey(err) {
		return fmt.Errorf("%w: %s %s: %v", record.ErrDuplicateID, op, collection, err)
	}
	if ClassifyError(err) != ErrorClassPermanent {
		return fmt.Errorf("%w: %s %s: %v", record.ErrBusy, op, collection, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s %s: %w", record.ErrBusy, op, collection, err)
	}
	return fmt.Errorf("%w: %s %s: %v", record.ErrUnwritable, op, collection, err)
}
