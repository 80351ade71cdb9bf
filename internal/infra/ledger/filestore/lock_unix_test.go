//go:build unix

package filestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/storefront/internal/domain/record"
)

func TestAppend_BusyWhenAnotherProcessHoldsLock(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, Options{LockTimeout: 50 * time.Millisecond, PollInterval: 5 * time.Millisecond})
	require.NoError(t, err)

	release, err := lockFile(context.Background(), filepath.Join(dir, "orders.lock"), time.Now().Add(time.Second), time.Millisecond)
	require.NoError(t, err)

	_, err = s.Append(context.Background(), "orders", record.Record{"a": 1})
	require.ErrorIs(t, err, record.ErrBusy)

	_, err = s.Append(context.Background(), "contacts", record.Record{"a": 1})
	require.NoError(t, err)

	release()
	_, err = s.Append(context.Background(), "orders", record.Record{"a": 1})
	require.NoError(t, err)
}

func TestAppend_CancelledWhileWaiting(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, Options{LockTimeout: 5 * time.Second})
	require.NoError(t, err)

	release, err := lockFile(context.Background(), filepath.Join(dir, "orders.lock"), time.Now().Add(time.Second), time.Millisecond)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = s.Append(ctx, "orders", record.Record{"a": 1})
	require.ErrorIs(t, err, record.ErrBusy)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
