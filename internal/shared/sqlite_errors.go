// Package shared provides common utilities used across the codebase.
//
//nolint:revive // "shared" is an intentional package name for cross-cutting helpers.
package shared

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// resultCoder is satisfied by *sqlite.Error.
type resultCoder interface {
	Code() int
}

var _ resultCoder = (*sqlite.Error)(nil)

// primaryCode returns the primary SQLite result code carried by err, or -1.
func primaryCode(err error) int {
	var ce resultCoder
	if !errors.As(err, &ce) {
		return -1
	}
	return ce.Code() & 0xff
}

// IsSQLiteBusyError checks if the error is a SQLITE_BUSY error.
// This occurs when the database is locked by another connection.
func IsSQLiteBusyError(err error) bool {
	return primaryCode(err) == sqlite3.SQLITE_BUSY
}

// IsSQLiteLockedError checks if the error is a SQLITE_LOCKED error, a
// conflict inside the same connection or shared cache.
func IsSQLiteLockedError(err error) bool {
	return primaryCode(err) == sqlite3.SQLITE_LOCKED
}

// IsSQLiteConflictError reports either form of SQLite lock contention.
func IsSQLiteConflictError(err error) bool {
	return IsSQLiteBusyError(err) || IsSQLiteLockedError(err)
}

// RetryAttempts and RetryBaseDelay bound RetryOnConflict.
const (
	RetryAttempts  = 3
	RetryBaseDelay = 50 * time.Millisecond
)

// RetryOnConflict runs fn, retrying with exponential backoff (50ms, 100ms)
// while it fails with a SQLite lock error. Other errors return immediately.
func RetryOnConflict(ctx context.Context, op string, fn func() error) error {
	var err error
	for i := 0; i < RetryAttempts; i++ {
		err = fn()
		if err == nil || !IsSQLiteConflictError(err) {
			return err
		}
		if i == RetryAttempts-1 {
			break
		}
		delay := RetryBaseDelay * time.Duration(1<<i)
		slog.Debug("SQLite busy, retrying", "op", op, "attempt", i+1, "delay", delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}
