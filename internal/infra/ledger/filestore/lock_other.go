//go:build !unix

package filestore

import (
	"context"
	"time"
)

// Without flock only the in-process gate serialises writers; do not share dir
// between processes on these platforms.
func lockFile(ctx context.Context, path string, deadline time.Time, poll time.Duration) (func(), error) {
	return func() {}, nil
}
