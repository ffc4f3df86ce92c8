package reconcile

import (
	"context"
	"log/slog"
	"time"
)

// SchedulerConfig controls scan triggering.
type SchedulerConfig struct {
	// DebounceWindow is the settle delay after a structural-change signal
	// before the scan runs. Default: 300ms.
	DebounceWindow time.Duration
	// Interval is the fixed-tick fallback for page mutations no observer
	// sees (internal virtualization). Default: 3s.
	Interval time.Duration
}

func (c *SchedulerConfig) defaults() {
	if c.DebounceWindow <= 0 {
		c.DebounceWindow = 300 * time.Millisecond
	}
	if c.Interval <= 0 {
		c.Interval = 3 * time.Second
	}
}

// Scheduler funnels two input edges, a debounced structural-change signal
// and a fixed-interval tick, into one serialized scan operation. A scan in
// progress always runs to completion before the next trigger is considered:
// everything happens on the Run goroutine, so no lock is needed.
//
// Callers deliver the structural-change edge via Signal; coalescing of
// irrelevant mutations (anything that is not an added node or a touch of a
// feed-item subtree) is the signal producer's job, not the scheduler's.
type Scheduler struct {
	scan     func(context.Context)
	cfg      SchedulerConfig
	signalCh chan struct{}
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler around a scan callback.
func NewScheduler(scan func(context.Context), cfg SchedulerConfig, logger *slog.Logger) *Scheduler {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		scan:     scan,
		cfg:      cfg,
		signalCh: make(chan struct{}, 1),
		logger:   logger,
	}
}

// Signal reports a qualifying structural change. Non-blocking; signals that
// arrive while one is pending coalesce into a single scan.
func (s *Scheduler) Signal() {
	select {
	case s.signalCh <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled. One scan fires immediately at startup,
// then scans follow signals (debounced) and the interval tick.
func (s *Scheduler) Run(ctx context.Context) {
	s.safeScan(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var debounceC <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case <-s.signalCh:
			// A batch of related insertions settles before we scan.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.NewTimer(s.cfg.DebounceWindow)
			debounceC = debounce.C

		case <-debounceC:
			debounce = nil
			debounceC = nil
			s.safeScan(ctx)

		case <-ticker.C:
			s.safeScan(ctx)
		}
	}
}

// safeScan isolates a panicking scan: it is logged and the next scheduled
// invocation proceeds untouched.
func (s *Scheduler) safeScan(ctx context.Context) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("reconcile: scan panicked", "panic", p)
		}
	}()
	s.scan(ctx)
}
