package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func waitForCount(t *testing.T, n *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if n.Load() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("scan count stuck at %d, want >= %d", n.Load(), want)
}

func TestScheduler_StartupScan(t *testing.T) {
	var scans atomic.Int64
	s := NewScheduler(func(context.Context) { scans.Add(1) }, SchedulerConfig{
		DebounceWindow: 10 * time.Millisecond,
		Interval:       time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	waitForCount(t, &scans, 1)
}

func TestScheduler_SignalsCoalesceThroughDebounce(t *testing.T) {
	var scans atomic.Int64
	s := NewScheduler(func(context.Context) { scans.Add(1) }, SchedulerConfig{
		DebounceWindow: 50 * time.Millisecond,
		Interval:       time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	waitForCount(t, &scans, 1) // startup

	// A burst of signals inside one settle window yields one scan.
	for i := 0; i < 10; i++ {
		s.Signal()
		time.Sleep(2 * time.Millisecond)
	}
	waitForCount(t, &scans, 2)

	time.Sleep(150 * time.Millisecond)
	if got := scans.Load(); got != 2 {
		t.Errorf("burst triggered %d scans past startup, want 1", got-1)
	}
}

func TestScheduler_IntervalTick(t *testing.T) {
	var scans atomic.Int64
	s := NewScheduler(func(context.Context) { scans.Add(1) }, SchedulerConfig{
		DebounceWindow: time.Hour,
		Interval:       20 * time.Millisecond,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Startup plus at least two ticks.
	waitForCount(t, &scans, 3)
}

func TestScheduler_RecoversFromPanic(t *testing.T) {
	var scans atomic.Int64
	s := NewScheduler(func(context.Context) {
		if scans.Add(1) == 1 {
			panic("page went away mid-scan")
		}
	}, SchedulerConfig{
		DebounceWindow: 10 * time.Millisecond,
		Interval:       time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	waitForCount(t, &scans, 1)

	s.Signal()
	waitForCount(t, &scans, 2)
}

func TestScheduler_StopsOnCancel(t *testing.T) {
	var scans atomic.Int64
	s := NewScheduler(func(context.Context) { scans.Add(1) }, SchedulerConfig{
		DebounceWindow: time.Hour,
		Interval:       time.Hour,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	waitForCount(t, &scans, 1)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
