package record

import (
	"context"
	"errors"
	"time"
)

// WithBusyRetry runs fn and retries it up to retries more times while it fails with ErrBusy.
func WithBusyRetry(ctx context.Context, retries int, backoff time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, ErrBusy) {
			return err
		}
		if attempt == retries {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return err
}
