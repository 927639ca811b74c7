package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func failing(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		if err := b.Call(context.Background(), failing(boom)); !errors.Is(err, boom) {
			t.Fatalf("call %d: expected boom, got %v", i, err)
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
	if err := b.Call(context.Background(), failing(nil)); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker should reject, got %v", err)
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: 10 * time.Second})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	b.Call(context.Background(), failing(errors.New("x")))
	if b.State() != StateOpen {
		t.Fatal("expected open after one failure")
	}

	clock = clock.Add(11 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatal("expected half-open after timeout")
	}

	if err := b.Call(context.Background(), failing(nil)); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("state = %v, want closed after successful probe", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 5, Timeout: 10 * time.Second})
	clock := time.Now()
	b.now = func() time.Time { return clock }

	for i := 0; i < 5; i++ {
		b.Call(context.Background(), failing(errors.New("x")))
	}
	clock = clock.Add(11 * time.Second)

	// A single failure in half-open trips it again immediately.
	b.Call(context.Background(), failing(errors.New("x")))
	if b.State() != StateOpen {
		t.Fatalf("state = %v, want open", b.State())
	}
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	b.Call(context.Background(), failing(errors.New("x")))
	b.Call(context.Background(), failing(nil))
	b.Call(context.Background(), failing(errors.New("x")))
	if b.State() != StateClosed {
		t.Fatal("interleaved success should reset the failure count")
	}
}

func TestStateString(t *testing.T) {
	if StateClosed.String() != "closed" || StateOpen.String() != "open" ||
		StateHalfOpen.String() != "half-open" || State(99).String() != "unknown" {
		t.Error("unexpected state names")
	}
}

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 1, Burst: 2})
	if !l.Allow() || !l.Allow() {
		t.Fatal("burst of 2 should allow two calls")
	}
	if l.Allow() {
		t.Fatal("third call should be limited")
	}
}

func TestLimiterCall(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0, Burst: 1})
	called := 0
	f := func(context.Context) error { called++; return nil }

	if err := l.Call(context.Background(), f); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if err := l.Call(context.Background(), f); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if called != 1 {
		t.Fatalf("f ran %d times, want 1", called)
	}
}

func TestLimiterCallWaitCancelled(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	l.Allow() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.CallWait(ctx, func(context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected context error while waiting")
	}
}
