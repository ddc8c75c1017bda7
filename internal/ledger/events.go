package ledger

import (
	"context"
	"time"

	"lexseal/internal/fingerprint"
)

// Events are emitted after a submission is confirmed. The Committed event
// deliberately carries only the label hash and the plaintext integrity hash,
// never the ciphertext: events are typically more widely visible than
// authenticated storage reads.

type NotarizedEvent struct {
	RunID       Key                `json:"run_id"`
	Root        fingerprint.Digest `json:"root"`
	Publisher   string             `json:"publisher"`
	BlockHeight uint64             `json:"block_height"`
	Timestamp   time.Time          `json:"timestamp"`
}

type CommittedEvent struct {
	CommitID    Key                `json:"commit_id"`
	LabelHash   fingerprint.Digest `json:"label_hash"`
	DataHash    fingerprint.Digest `json:"data_hash"`
	BlockHeight uint64             `json:"block_height"`
	Timestamp   time.Time          `json:"timestamp"`
}

type ReleasedEvent struct {
	VersionID    Key                `json:"version_id"`
	SourceHash   fingerprint.Digest `json:"source_hash"`
	ArtifactHash fingerprint.Digest `json:"artifact_hash"`
	Version      string             `json:"version"`
	BlockHeight  uint64             `json:"block_height"`
	Timestamp    time.Time          `json:"timestamp"`
}

// Sink receives confirmed-write events. Implementations must not block the
// submission path; slow transports buffer internally (see events package).
type Sink interface {
	Notarized(ctx context.Context, event NotarizedEvent)
	Committed(ctx context.Context, event CommittedEvent)
	Released(ctx context.Context, event ReleasedEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Notarized(context.Context, NotarizedEvent) {}
func (NopSink) Committed(context.Context, CommittedEvent) {}
func (NopSink) Released(context.Context, ReleasedEvent)   {}
