//go:build unix

package filestore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"example.com/storefront/internal/domain/record"
)

// lockFile polls a non-blocking flock until it is granted, the deadline passes or ctx ends.
func lockFile(ctx context.Context, path string, deadline time.Time, poll time.Duration) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o640)
	if err != nil {
		return nil, fmt.Errorf("%w: open lock: %v", record.ErrUnwritable, err)
	}
	fd := int(f.Fd())

	for {
		err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return func() {
				_ = unix.Flock(fd, unix.LOCK_UN)
				_ = f.Close()
			}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			return nil, fmt.Errorf("%w: flock %s: %v", record.ErrUnwritable, path, err)
		}

		wait := time.Until(deadline)
		if wait <= 0 {
			f.Close()
			return nil, fmt.Errorf("%w: %s held by another writer", record.ErrBusy, path)
		}
		if wait > poll {
			wait = poll
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			f.Close()
			return nil, fmt.Errorf("%w: %w", record.ErrBusy, ctx.Err())
		}
	}
}
