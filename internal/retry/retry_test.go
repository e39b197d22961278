package retry

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"
	"time"
)

func TestDoStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestDoRetriesTransient(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return driver.ErrBadConn
		}
		return nil
	})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if calls != 3 {
		t.Fatalf("calls=%d want 3", calls)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 2, func() error {
		calls++
		return driver.ErrBadConn
	})
	if !errors.Is(err, driver.ErrBadConn) {
		t.Fatalf("err=%v", err)
	}
	if calls != 2 {
		t.Fatalf("calls=%d want 2", calls)
	}
}

func TestDoDoesNotRetryBusinessErrors(t *testing.T) {
	sentinel := errors.New("insufficient balance")
	calls := 0
	err := Do(context.Background(), 3, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestDoUnwrapsPermanent(t *testing.T) {
	sentinel := errors.New("not pending")
	calls := 0
	err := Do(context.Background(), 3, func() error {
		calls++
		return Permanent{Err: sentinel}
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err=%v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d want 1", calls)
	}
}

func TestDoHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, 3, func() error {
		return driver.ErrBadConn
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
}

func TestPermanentWrapsTransient(t *testing.T) {
	// Even a transient-looking cause is terminal once marked Permanent.
	err := Permanent{Err: driver.ErrBadConn}
	if IsRetryable(err) {
		t.Fatal("Permanent must not be retryable")
	}
}

func TestDoBackoffIsBounded(t *testing.T) {
	start := time.Now()
	_ = Do(context.Background(), 3, func() error {
		return driver.ErrBadConn
	})
	// 50ms + 100ms of backoff, with headroom.
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("elapsed=%v", elapsed)
	}
}
