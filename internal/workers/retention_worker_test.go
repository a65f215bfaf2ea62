package workers

import (
	"context"
	"sync"
	"testing"
	"time"

	"storefront_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRetentionRepo struct {
	repositories.NotificationRepository

	mu      sync.Mutex
	cutoffs []time.Time
	deleted int64
}

func (f *fakeRetentionRepo) DeleteTerminalOlderThan(cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.deleted, nil
}

func (f *fakeRetentionRepo) sweeps() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestRetentionWorkerSweepsOnStartAndStops(t *testing.T) {
	repo := &fakeRetentionRepo{deleted: 2}
	worker := NewRetentionWorker(repo, 30)
	worker.interval = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return repo.sweeps() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancel")
	}

	repo.mu.Lock()
	defer repo.mu.Unlock()
	// Every cutoff sits about 30 days in the past.
	want := time.Now().AddDate(0, 0, -30)
	for _, cutoff := range repo.cutoffs {
		assert.WithinDuration(t, want, cutoff, time.Minute)
	}
}

func TestRetentionCutoffUsesConfiguredWindow(t *testing.T) {
	repo := &fakeRetentionRepo{}
	worker := NewRetentionWorker(repo, 7)
	worker.sweep()

	require.Equal(t, 1, repo.sweeps())
	assert.WithinDuration(t, time.Now().AddDate(0, 0, -7), repo.cutoffs[0], time.Minute)
}
