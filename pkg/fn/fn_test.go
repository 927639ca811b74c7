package fn

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	if !ok.IsOk() || ok.IsErr() {
		t.Error("Ok should be ok")
	}
	if v, _ := ok.Unwrap(); v != 42 {
		t.Errorf("expected 42, got %d", v)
	}

	e := Err[int](errors.New("boom"))
	if e.IsOk() {
		t.Error("Err should not be ok")
	}
	if got := e.UnwrapOr(7); got != 7 {
		t.Errorf("UnwrapOr fallback: expected 7, got %d", got)
	}

	if r := FromPair(3, nil); r.IsErr() {
		t.Error("FromPair with nil error should be ok")
	}
	if r := FromPair(0, errors.New("x")); r.IsOk() {
		t.Error("FromPair with error should be err")
	}
}

func TestThen(t *testing.T) {
	double := MapStage(func(n int) int { return n * 2 })
	toStr := MapStage(strconv.Itoa)

	r := Then(double, toStr)(context.Background(), 21)
	if v, _ := r.Unwrap(); v != "42" {
		t.Errorf("expected 42, got %q", v)
	}

	fail := func(_ context.Context, n int) Result[int] { return Errf[int]("nope") }
	var called bool
	spy := TapStage(func(_ context.Context, n int) { called = true })
	r2 := Then(Stage[int, int](fail), spy)(context.Background(), 1)
	if r2.IsOk() {
		t.Error("expected error to short-circuit")
	}
	if called {
		t.Error("second stage must not run after error")
	}
}

func TestSliceHelpers(t *testing.T) {
	nums := []int{1, 2, 3, 4, 2, 1}

	doubled := Map(nums, func(n int) int { return n * 2 })
	if doubled[0] != 2 || doubled[3] != 8 {
		t.Errorf("Map wrong: %v", doubled)
	}

	even := Filter(nums, func(n int) bool { return n%2 == 0 })
	if len(even) != 3 {
		t.Errorf("Filter wrong: %v", even)
	}

	uniq := Unique(nums)
	if len(uniq) != 4 || uniq[0] != 1 || uniq[3] != 4 {
		t.Errorf("Unique wrong: %v", uniq)
	}

	counts := CountBy(nums, func(n int) int { return n })
	if counts[1] != 2 || counts[3] != 1 {
		t.Errorf("CountBy wrong: %v", counts)
	}

	if sum := SumBy(nums, func(n int) int { return n }); sum != 13 {
		t.Errorf("SumBy wrong: %d", sum)
	}
}

func TestParMapPreservesOrder(t *testing.T) {
	items := make([]int, 100)
	for i := range items {
		items[i] = i
	}
	out := ParMap(items, 8, func(n int) int { return n * n })
	for i, v := range out {
		if v != i*i {
			t.Fatalf("out[%d] = %d, want %d", i, v, i*i)
		}
	}

	if got := ParMap([]int(nil), 4, func(n int) int { return n }); len(got) != 0 {
		t.Errorf("empty input should give empty output, got %v", got)
	}
}

func TestRetry(t *testing.T) {
	var calls atomic.Int32
	opts := RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: 5 * time.Millisecond}

	r := Retry(context.Background(), opts, func(_ context.Context) Result[string] {
		if calls.Add(1) < 3 {
			return Errf[string]("transient")
		}
		return Ok("done")
	})
	if v, _ := r.Unwrap(); v != "done" {
		t.Errorf("expected success after retries, got %v", v)
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}

	calls.Store(0)
	r = Retry(context.Background(), opts, func(_ context.Context) Result[string] {
		calls.Add(1)
		return Errf[string]("permanent")
	})
	if r.IsOk() {
		t.Error("expected failure after exhausting attempts")
	}
	if calls.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", calls.Load())
	}
}
