package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	testhelpers "github.com/polkiloo/beautymart/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func waitFor(t *testing.T, facade *testhelpers.RetentionFacadeStub, cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		facade.Lock()
		done := cond()
		facade.Unlock()
		if done {
			return
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for sweeper")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewPendingSweeperDefaults(t *testing.T) {
	sweeper := NewPendingSweeper(&testhelpers.RetentionFacadeStub{}, time.Hour, time.Second, 0, 0, discardLogger())
	if sweeper.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", sweeper.batchSize)
	}
	if sweeper.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", sweeper.workers)
	}
}

func TestPendingSweeperDiscardsStaleOrders(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	facade := &testhelpers.RetentionFacadeStub{Batches: [][]uuid.UUID{ids}}
	sweeper := NewPendingSweeper(facade, 24*time.Hour, 5*time.Millisecond, 10, 2, discardLogger())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	sweeper.Start(context.Background())
	waitFor(t, facade, func() bool { return len(facade.Discarded) == len(ids) })
	sweeper.Stop()

	facade.Lock()
	defer facade.Unlock()
	seen := make(map[uuid.UUID]bool)
	for _, id := range facade.Discarded {
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			t.Fatalf("order %s was not discarded", id)
		}
	}
	if !facade.Cutoffs[0].Equal(now.Add(-24 * time.Hour)) {
		t.Fatalf("unexpected cutoff %v", facade.Cutoffs[0])
	}
}

func TestPendingSweeperDiscardsWithSelectionCutoff(t *testing.T) {
	facade := &testhelpers.RetentionFacadeStub{Batches: [][]uuid.UUID{{uuid.New()}}}
	var (
		mu      sync.Mutex
		cutoffs []time.Time
	)
	facade.DiscardFn = func(_ context.Context, _ uuid.UUID, before time.Time) (bool, error) {
		mu.Lock()
		cutoffs = append(cutoffs, before)
		mu.Unlock()
		return true, nil
	}
	sweeper := NewPendingSweeper(facade, time.Hour, 5*time.Millisecond, 1, 1, discardLogger())
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sweeper.now = func() time.Time { return now }

	sweeper.Start(context.Background())
	waitFor(t, facade, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(cutoffs) == 1
	})
	sweeper.Stop()

	if want := now.Add(-time.Hour); !cutoffs[0].Equal(want) {
		t.Fatalf("expected discard to recheck against %v, got %v", want, cutoffs[0])
	}
}

func TestPendingSweeperSurvivesErrors(t *testing.T) {
	var selects int32
	facade := &testhelpers.RetentionFacadeStub{
		StaleFn: func(context.Context, time.Time, int) ([]uuid.UUID, error) {
			if atomic.AddInt32(&selects, 1) == 1 {
				return nil, errors.New("db unavailable")
			}
			return []uuid.UUID{uuid.New()}, nil
		},
	}
	var discards int32
	facade.DiscardFn = func(context.Context, uuid.UUID, time.Time) (bool, error) {
		if atomic.AddInt32(&discards, 1) == 1 {
			return false, errors.New("delete failed")
		}
		return true, nil
	}

	sweeper := NewPendingSweeper(facade, time.Hour, 5*time.Millisecond, 1, 1, discardLogger())
	sweeper.Start(context.Background())
	waitFor(t, facade, func() bool { return atomic.LoadInt32(&discards) >= 2 })
	sweeper.Stop()
}

func TestPendingSweeperOutlivesStartContext(t *testing.T) {
	facade := &testhelpers.RetentionFacadeStub{Batches: [][]uuid.UUID{nil, {uuid.New()}}}
	sweeper := NewPendingSweeper(facade, time.Hour, 5*time.Millisecond, 1, 1, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	sweeper.Start(ctx)
	cancel()

	waitFor(t, facade, func() bool { return len(facade.Discarded) == 1 })
	sweeper.Stop()
}

func TestPendingSweeperStopIsIdempotent(t *testing.T) {
	sweeper := NewPendingSweeper(&testhelpers.RetentionFacadeStub{}, time.Hour, time.Hour, 1, 1, discardLogger())
	sweeper.Start(context.Background())
	sweeper.Start(context.Background())
	sweeper.Stop()
	sweeper.Stop()
}
