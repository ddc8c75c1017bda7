package events

import (
	"context"
	"log/slog"

	"lexseal/internal/ledger"
)

type envelope struct {
	notarized *ledger.NotarizedEvent
	committed *ledger.CommittedEvent
	released  *ledger.ReleasedEvent
}

// Buffered decouples event emission from the transport. Enqueueing never
// blocks: when the buffer is full the event is dropped and counted, because
// a slow event transport must not stall ledger submissions.
type Buffered struct {
	inbox   chan envelope
	logger  *slog.Logger
	dropped func()
}

// NewBuffered creates a buffered sink holding up to size events.
// onDrop is invoked for each event discarded due to a full buffer; pass nil
// to only log drops.
func NewBuffered(size int, logger *slog.Logger, onDrop func()) *Buffered {
	if size <= 0 {
		size = 256
	}
	return &Buffered{
		inbox:   make(chan envelope, size),
		logger:  logger,
		dropped: onDrop,
	}
}

func (b *Buffered) enqueue(kind string, env envelope) {
	select {
	case b.inbox <- env:
	default:
		if b.dropped != nil {
			b.dropped()
		}
		b.logger.Warn("event buffer full, dropping event", "kind", kind)
	}
}

func (b *Buffered) Notarized(_ context.Context, event ledger.NotarizedEvent) {
	b.enqueue("notarized", envelope{notarized: &event})
}

func (b *Buffered) Committed(_ context.Context, event ledger.CommittedEvent) {
	b.enqueue("committed", envelope{committed: &event})
}

func (b *Buffered) Released(_ context.Context, event ledger.ReleasedEvent) {
	b.enqueue("released", envelope{released: &event})
}

var _ ledger.Sink = (*Buffered)(nil)

// Worker drains a Buffered sink and forwards events to the transport sink.
// Run one per Buffered instance.
type Worker struct {
	source *Buffered
	dest   ledger.Sink
}

func NewWorker(source *Buffered, dest ledger.Sink) *Worker {
	return &Worker{source: source, dest: dest}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case env := <-w.source.inbox:
			switch {
			case env.notarized != nil:
				w.dest.Notarized(ctx, *env.notarized)
			case env.committed != nil:
				w.dest.Committed(ctx, *env.committed)
			case env.released != nil:
				w.dest.Released(ctx, *env.released)
			}
		}
	}
}
