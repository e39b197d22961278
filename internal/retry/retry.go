// Package retry re-runs storage operations that failed for transient reasons
// (lost connections, timeouts). Business-rule failures are never retried.
package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"time"

	"gorm.io/gorm"
)

const DefaultAttempts = 3

// Permanent marks an error as not worth retrying regardless of its cause.
type Permanent struct {
	Err error
}

func (p Permanent) Error() string { return p.Err.Error() }
func (p Permanent) Unwrap() error { return p.Err }

// IsRetryable reports whether err looks like a transient storage failure.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var perm Permanent
	if errors.As(err, &perm) {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return true
	}
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return false
}

// Do runs fn up to attempts times with increasing backoff, stopping early on
// success, on a non-retryable error, or when ctx is done.
func Do(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	backoff := 50 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			var perm Permanent
			if errors.As(err, &perm) {
				return perm.Err
			}
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
