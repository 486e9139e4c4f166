package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RetentionFacade exposes the subset of application functionality required by the sweeper.
type RetentionFacade interface {
	StalePendingOrders(ctx context.Context, before time.Time, limit int) ([]uuid.UUID, error)
	DiscardPendingOrder(ctx context.Context, id uuid.UUID, before time.Time) (bool, error)
}

type sweepJob struct {
	id     uuid.UUID
	cutoff time.Time
}

// PendingSweeper periodically removes gateway orders that were never paid.
// Cash on delivery orders are never selected.
type PendingSweeper struct {
	facade    RetentionFacade
	ttl       time.Duration
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger
	now       func() time.Time

	jobs   chan sweepJob
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPendingSweeper constructs the sweeper worker pool.
func NewPendingSweeper(facade RetentionFacade, ttl, interval time.Duration, batchSize, workers int, logger *slog.Logger) *PendingSweeper {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PendingSweeper{
		facade:    facade,
		ttl:       ttl,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
		now:       time.Now,
		jobs:      make(chan sweepJob, batchSize*workers),
	}
}

// Start launches background sweeping. The sweeper outlives ctx cancellation
// and runs until Stop.
func (s *PendingSweeper) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(runCtx)
	}

	s.wg.Add(1)
	go s.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (s *PendingSweeper) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *PendingSweeper) dispatch(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *PendingSweeper) sweep(ctx context.Context) {
	cutoff := s.now().Add(-s.ttl)
	ids, err := s.facade.StalePendingOrders(ctx, cutoff, s.batchSize)
	if err != nil {
		s.logger.Error("select stale pending orders failed", slog.String("error", err.Error()))
		return
	}
	for _, id := range ids {
		select {
		case <-ctx.Done():
			return
		case s.jobs <- sweepJob{id: id, cutoff: cutoff}:
		}
	}
}

func (s *PendingSweeper) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-s.jobs:
			s.discard(ctx, job)
		}
	}
}

func (s *PendingSweeper) discard(ctx context.Context, job sweepJob) {
	deleted, err := s.facade.DiscardPendingOrder(ctx, job.id, job.cutoff)
	if err != nil {
		s.logger.Error("discard pending order failed", slog.String("order_id", job.id.String()), slog.String("error", err.Error()))
		return
	}
	if deleted {
		s.logger.Info("abandoned order discarded", slog.String("order_id", job.id.String()))
	}
}
