package background

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) SweepExpired(context.Context) (int64, error) {
	s.calls.Add(1)
	return 2, s.err
}

type sumObserver struct {
	mu    sync.Mutex
	total int64
}

func (o *sumObserver) ObserveSweep(removed int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.total += removed
}

func (o *sumObserver) Total() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.total
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCleanupManager_SweepsImmediatelyAndOnTick(t *testing.T) {
	sweeper := &countingSweeper{}
	obs := &sumObserver{}
	cm := NewCleanupManager(sweeper, obs, quietLogger(), 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		cm.Start(context.Background())
		close(done)
	}()

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cm.Stop()
	cm.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.GreaterOrEqual(t, obs.Total(), int64(6))
}

func TestCleanupManager_StopsOnContextCancel(t *testing.T) {
	cm := NewCleanupManager(&countingSweeper{}, nil, quietLogger(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		cm.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestCleanupManager_ErrorsAreNotObserved(t *testing.T) {
	obs := &sumObserver{}
	cm := NewCleanupManager(&countingSweeper{err: errors.New("db down")}, obs, quietLogger(), time.Hour)

	cm.runCleanup(context.Background())

	assert.Equal(t, int64(0), obs.Total())
}
