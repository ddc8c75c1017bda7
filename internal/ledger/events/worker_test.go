package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
)

type recordingSink struct {
	mu        sync.Mutex
	notarized []ledger.NotarizedEvent
	committed []ledger.CommittedEvent
	released  []ledger.ReleasedEvent
}

func (r *recordingSink) Notarized(_ context.Context, e ledger.NotarizedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notarized = append(r.notarized, e)
}

func (r *recordingSink) Committed(_ context.Context, e ledger.CommittedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, e)
}

func (r *recordingSink) Released(_ context.Context, e ledger.ReleasedEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, e)
}

func (r *recordingSink) counts() (int, int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.notarized), len(r.committed), len(r.released)
}

func TestWorkerForwardsEvents(t *testing.T) {
	buffered := NewBuffered(16, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	dest := &recordingSink{}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = NewWorker(buffered, dest).Run(ctx)
	}()

	runID := ledger.DeriveKey("run_001")
	buffered.Notarized(ctx, ledger.NotarizedEvent{
		RunID: runID, Root: fingerprint.Keccak256([]byte("root")), Publisher: "svc", BlockHeight: 1,
	})
	buffered.Committed(ctx, ledger.CommittedEvent{CommitID: ledger.DeriveKey("c"), BlockHeight: 2})
	buffered.Released(ctx, ledger.ReleasedEvent{VersionID: ledger.DeriveKey("v"), Version: "v1.0.0", BlockHeight: 3})

	require.Eventually(t, func() bool {
		n, c, r := dest.counts()
		return n == 1 && c == 1 && r == 1
	}, time.Second, 5*time.Millisecond)

	dest.mu.Lock()
	defer dest.mu.Unlock()
	assert.Equal(t, runID, dest.notarized[0].RunID)
	assert.Equal(t, "v1.0.0", dest.released[0].Version)

	cancel()
	<-done
}

func TestBufferedDropsWhenFull(t *testing.T) {
	var drops int
	buffered := NewBuffered(1, slog.New(slog.NewTextHandler(io.Discard, nil)), func() { drops++ })

	ctx := context.Background()
	// No worker draining: first enqueue fills the buffer, the rest drop.
	buffered.Notarized(ctx, ledger.NotarizedEvent{RunID: ledger.DeriveKey("a")})
	buffered.Notarized(ctx, ledger.NotarizedEvent{RunID: ledger.DeriveKey("b")})
	buffered.Committed(ctx, ledger.CommittedEvent{CommitID: ledger.DeriveKey("c")})

	assert.Equal(t, 2, drops)
}
