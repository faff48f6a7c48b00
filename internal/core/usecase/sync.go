package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/docassist/docchat/internal/core/domain"
	"github.com/docassist/docchat/internal/core/ports"
	"github.com/docassist/docchat/internal/observability/metrics"
)

type refreshKind int

const (
	refreshScheduled refreshKind = iota
	refreshImmediate
)

const (
	pollOutcomeSuccess = "success"
	pollOutcomeFailure = "failure"
	pollOutcomeStale   = "stale"
)

// Synchronizer keeps the registry eventually consistent with server truth:
// one immediate refresh on start, then a fixed-interval poll that backs off
// exponentially while the service stays unreachable. Workflows request
// out-of-band refreshes through RefreshNow so a fresh upload or delete shows
// up before the next tick.
//
// Every refresh is numbered when issued; a completion is applied only if no
// newer refresh has been issued since, so a slow response can never clobber
// a faster, later one.
type Synchronizer struct {
	service  ports.DocumentService
	registry *Registry
	bus      ports.EventBus
	metrics  *metrics.ClientMetrics

	interval   time.Duration
	maxBackoff time.Duration
	limiter    *rate.Limiter

	mu         sync.Mutex
	generation uint64
	inflight   int
	failures   int
	stopped    bool
	cancel     context.CancelFunc
	done       chan struct{}
}

type SynchronizerConfig struct {
	Interval      time.Duration
	MaxBackoff    time.Duration
	RefreshPerSec float64
	RefreshBurst  int
}

func NewSynchronizer(
	service ports.DocumentService,
	registry *Registry,
	bus ports.EventBus,
	m *metrics.ClientMetrics,
	cfg SynchronizerConfig,
) *Synchronizer {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.MaxBackoff < cfg.Interval {
		cfg.MaxBackoff = 8 * cfg.Interval
	}
	if cfg.RefreshPerSec <= 0 {
		cfg.RefreshPerSec = 1
	}
	if cfg.RefreshBurst <= 0 {
		cfg.RefreshBurst = 2
	}
	return &Synchronizer{
		service:    service,
		registry:   registry,
		bus:        bus,
		metrics:    m,
		interval:   cfg.Interval,
		maxBackoff: cfg.MaxBackoff,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RefreshPerSec), cfg.RefreshBurst),
	}
}

// Start launches the poll loop. Calling Start twice is a no-op.
func (s *Synchronizer) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancel != nil || s.stopped {
		s.mu.Unlock()
		cancel()
		return
	}
	s.cancel = cancel
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.run(runCtx)
}

func (s *Synchronizer) run(ctx context.Context) {
	defer close(s.done)

	s.refresh(ctx, refreshScheduled)
	for {
		timer := time.NewTimer(s.nextWait())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			s.refresh(ctx, refreshScheduled)
		}
	}
}

// Stop tears the loop down. After Stop returns, no snapshot replacement will
// occur, including from requests still in flight.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	s.stopped = true
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// RefreshNow issues an out-of-band refresh. Bursts are coalesced through a
// rate limiter; a dropped request is caught up by the next scheduled tick.
func (s *Synchronizer) RefreshNow(ctx context.Context) {
	if !s.limiter.Allow() {
		slog.Debug("refresh_coalesced")
		return
	}
	s.refresh(ctx, refreshImmediate)
}

func (s *Synchronizer) refresh(ctx context.Context, kind refreshKind) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	// Scheduled ticks never overlap an outstanding refresh. Immediate
	// refreshes may; issuing a new generation makes the older completion
	// stale.
	if kind == refreshScheduled && s.inflight > 0 {
		s.mu.Unlock()
		return
	}
	s.inflight++
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()
	docs, err := s.service.ListDocuments(ctx)
	elapsed := time.Since(start)

	s.mu.Lock()
	s.inflight--
	if s.stopped {
		s.mu.Unlock()
		return
	}
	if gen != s.generation {
		s.mu.Unlock()
		s.metrics.RecordPoll(pollOutcomeStale, elapsed)
		return
	}
	if err != nil {
		s.failures++
		failures := s.failures
		s.mu.Unlock()

		s.metrics.RecordPoll(pollOutcomeFailure, elapsed)
		slog.Warn("registry_refresh_failed", "error", err, "consecutive_failures", failures)
		// A flaky poll against a populated view stays quiet; only an empty
		// registry surfaces the outage to the user.
		if s.registry.Current().Len() == 0 {
			publishNotice(s.bus, domain.ErrorNotice("Document service unreachable. Check that the server is running."))
		}
		return
	}
	s.failures = 0
	// The apply happens under the same lock hold as the liveness check:
	// Stop sets stopped under this mutex, so once Stop returns no
	// replacement can land, including from a RefreshNow caller's goroutine.
	s.registry.Replace(domain.NewSnapshot(docs))
	s.mu.Unlock()

	s.metrics.RecordPoll(pollOutcomeSuccess, elapsed)
	slog.Debug("registry_refreshed", "documents", len(docs), "duration_ms", float64(elapsed.Microseconds())/1000.0)
}

func (s *Synchronizer) nextWait() time.Duration {
	s.mu.Lock()
	failures := s.failures
	s.mu.Unlock()

	if failures == 0 {
		return s.interval
	}
	wait := s.interval
	for i := 1; i < failures; i++ {
		wait *= 2
		if wait >= s.maxBackoff {
			return s.maxBackoff
		}
	}
	if wait > s.maxBackoff {
		wait = s.maxBackoff
	}
	return wait
}
