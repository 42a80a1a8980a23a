package clock

import (
	"testing"
	"time"
)

func TestNowMonotonicNonDecreasing(t *testing.T) {
	c := New(5 * time.Millisecond)
	defer c.Close()

	prev := c.Now()
	deadline := time.Now().Add(100 * time.Millisecond)
	for time.Now().Before(deadline) {
		cur := c.Now()
		if cur < prev {
			t.Fatalf("Now() decreased: %d -> %d", prev, cur)
		}
		prev = cur
	}
}

func TestNowDoesNotBlockOrSyscallPerCall(t *testing.T) {
	c := New(time.Second)
	defer c.Close()

	const k = 1_000_000
	start := time.Now()
	for i := 0; i < k; i++ {
		_ = c.Now()
	}
	elapsed := time.Since(start)
	if elapsed > 200*time.Millisecond {
		t.Fatalf("%d calls to Now() took %v, expected a bare atomic load loop to be far faster", k, elapsed)
	}
}

func TestCloseStopsUpdaterAndIsIdempotent(t *testing.T) {
	c := New(5 * time.Millisecond)
	c.Close()
	if c.Running() {
		t.Fatalf("clock still reports running after Close")
	}
	c.Close() // must not hang or panic
}

func TestStalenessBoundAfterOneInterval(t *testing.T) {
	interval := 20 * time.Millisecond
	c := New(interval)
	defer c.Close()

	time.Sleep(3 * interval)
	drift := time.Now().UnixNano() - c.Now()
	if drift < 0 {
		drift = -drift
	}
	bound := (interval + 50*time.Millisecond).Nanoseconds()
	if drift > bound {
		t.Fatalf("drift %dns exceeds bound %dns", drift, bound)
	}
}
