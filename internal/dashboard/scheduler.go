package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"civisense/internal/civic"
	"civisense/internal/model"
)

// ErrStale is returned by Refresh when a newer fetch was issued before this
// one completed. Its result was discarded.
var ErrStale = errors.New("dashboard: superseded by a newer refresh")

// Fetcher loads the raw dashboard feed
type Fetcher interface {
	GetDashboard(ctx context.Context) (*civic.DashboardResponse, error)
}

// Publisher announces accepted snapshots
type Publisher interface {
	PublishDashboard(snap *model.Snapshot) error
}

// Scheduler refreshes the dashboard on an interval and on demand.
//
// Every fetch takes the next sequence number and cancels the fetch before
// it. Periodic ticks are skipped while a fetch is still running. A result is stored only if its sequence number is still the latest
// issued, so a slow response can never overwrite a newer one.
type Scheduler struct {
	fetcher   Fetcher
	builder   *Builder
	store     *Store
	publisher Publisher
	interval  time.Duration
	logger    *zap.Logger

	seq atomic.Int64

	mu       sync.Mutex
	inFlight context.CancelFunc

	trigger chan struct{}
	wg      sync.WaitGroup
}

func NewScheduler(fetcher Fetcher, builder *Builder, store *Store, publisher Publisher, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		fetcher:   fetcher,
		builder:   builder,
		store:     store,
		publisher: publisher,
		interval:  interval,
		logger:    logger,
		trigger:   make(chan struct{}, 1),
	}
}

// Run refreshes immediately and then on every tick until ctx is done.
// It waits for in-flight fetches before returning.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer s.wg.Wait()

	s.logger.Info("Dashboard refresh started", zap.Duration("interval", s.interval))
	s.spawn(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Dashboard refresh stopped")
			return
		case <-ticker.C:
			if s.busy() {
				s.logger.Debug("Skipping dashboard tick, fetch still in flight", zap.Int64("seq", s.seq.Load()))
				continue
			}
			s.spawn(ctx)
		case <-s.trigger:
			s.spawn(ctx)
		}
	}
}

// Trigger asks Run for an immediate refresh. It never blocks; triggers that
// arrive while one is already pending are merged.
func (s *Scheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Seq returns the latest issued sequence number
func (s *Scheduler) Seq() int64 {
	return s.seq.Load()
}

func (s *Scheduler) spawn(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.Refresh(ctx)
	}()
}

// Refresh performs one fetch and waits for it. Fetch failures are logged
// and returned; the stored snapshot is left as it was.
func (s *Scheduler) Refresh(ctx context.Context) (*model.Snapshot, error) {
	seq, fetchCtx, cancel := s.begin(ctx)
	defer s.finish(seq)
	defer cancel()

	start := time.Now()
	resp, err := s.fetcher.GetDashboard(fetchCtx)
	if err != nil {
		if s.isStale(seq) {
			s.logger.Debug("Superseded dashboard fetch ended", zap.Int64("seq", seq), zap.Error(err))
			return nil, ErrStale
		}
		s.logger.Warn("Failed to refresh dashboard", zap.Int64("seq", seq), zap.Error(err))
		return nil, err
	}

	snap := s.builder.Build(resp, seq, time.Now())
	if !s.accept(seq, &snap) {
		s.logger.Debug("Discarded stale dashboard response", zap.Int64("seq", seq), zap.Int64("latest", s.seq.Load()))
		return nil, ErrStale
	}

	s.logger.Debug("Dashboard refreshed",
		zap.Int64("seq", seq),
		zap.String("snapshot", snap.ID),
		zap.Int("records", len(snap.Complaints)),
		zap.Duration("duration", time.Since(start)),
	)

	if s.publisher != nil {
		if err := s.publisher.PublishDashboard(&snap); err != nil {
			s.logger.Warn("Failed to publish dashboard refresh", zap.Int64("seq", seq), zap.Error(err))
		}
	}
	return &snap, nil
}

func (s *Scheduler) begin(ctx context.Context) (int64, context.Context, context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight != nil {
		s.inFlight()
	}
	seq := s.seq.Add(1)
	fetchCtx, cancel := context.WithCancel(ctx)
	s.inFlight = cancel
	return seq, fetchCtx, cancel
}

// finish clears the in-flight slot if seq still owns it
func (s *Scheduler) finish(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.Load() == seq {
		s.inFlight = nil
	}
}

// busy reports whether a fetch is still running. Ticks skip while busy so a
// service slower than the interval still gets to answer; Trigger and
// Refresh supersede regardless.
func (s *Scheduler) busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight != nil
}

func (s *Scheduler) accept(seq int64, snap *model.Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seq.Load() != seq {
		return false
	}
	s.store.Replace(snap)
	return true
}

func (s *Scheduler) isStale(seq int64) bool {
	return s.seq.Load() != seq
}
