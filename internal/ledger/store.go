package ledger

import "context"

// Stores are interface-driven so the memory, Postgres, and LevelDB backends
// stay swappable without rewiring the client. Every *IfAbsent method is an
// insert-if-absent: it assigns the record's block height and timestamp,
// returns the stored record, and fails with sentinel.ErrConflict when the
// key already holds one. Reads fail with sentinel.ErrNotFound for absent
// keys.

type NotaryStore interface {
	PublishIfAbsent(ctx context.Context, rec NotarizationRecord) (NotarizationRecord, error)
	FindNotarization(ctx context.Context, runID Key) (NotarizationRecord, error)
}

type CommitStore interface {
	CommitIfAbsent(ctx context.Context, rec AuditCommitRecord) (AuditCommitRecord, error)
	FindCommit(ctx context.Context, commitID Key) (AuditCommitRecord, error)
	// FindCommitMetadata returns the record without its ciphertext.
	FindCommitMetadata(ctx context.Context, commitID Key) (AuditCommitRecord, error)
}

type ReleaseStore interface {
	RegisterIfAbsent(ctx context.Context, rec ReleaseRecord) (ReleaseRecord, error)
	FindRelease(ctx context.Context, versionID Key) (ReleaseRecord, error)
}

// Store is the full registry surface a backend must provide.
type Store interface {
	NotaryStore
	CommitStore
	ReleaseStore
}
