// Package memory backs the ledger with the pure in-process registry
// contracts. Intended for tests and single-node development; durability
// comes from the Postgres or LevelDB backends.
package memory

import (
	"context"
	"errors"

	registry "lexseal/contracts/registry"
	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/pkg/platform/sentinel"
)

// Store adapts contracts/registry.Ledger to the ledger.Store interface.
type Store struct {
	contracts *registry.Ledger
}

// New creates an empty in-memory ledger store.
func New(opts ...registry.Option) *Store {
	return &Store{contracts: registry.New(opts...)}
}

func (s *Store) PublishIfAbsent(_ context.Context, rec ledger.NotarizationRecord) (ledger.NotarizationRecord, error) {
	entry, err := s.contracts.Publish(registry.Key(rec.RunID), registry.Digest(rec.Root), rec.Publisher)
	if err != nil {
		if errors.Is(err, registry.ErrAlreadyExists) {
			return ledger.NotarizationRecord{}, sentinel.ErrConflict
		}
		return ledger.NotarizationRecord{}, err
	}
	rec.BlockHeight = entry.BlockHeight
	rec.Timestamp = entry.Timestamp
	return rec, nil
}

func (s *Store) FindNotarization(_ context.Context, runID ledger.Key) (ledger.NotarizationRecord, error) {
	entry, ok := s.contracts.Notarization(registry.Key(runID))
	if !ok {
		return ledger.NotarizationRecord{}, sentinel.ErrNotFound
	}
	return ledger.NotarizationRecord{
		RunID:       runID,
		Root:        fingerprint.Digest(entry.Root),
		Publisher:   entry.Publisher,
		BlockHeight: entry.BlockHeight,
		Timestamp:   entry.Timestamp,
	}, nil
}

func (s *Store) CommitIfAbsent(_ context.Context, rec ledger.AuditCommitRecord) (ledger.AuditCommitRecord, error) {
	entry, err := s.contracts.Commit(
		registry.Key(rec.CommitID),
		registry.Digest(rec.LabelHash),
		rec.Ciphertext,
		registry.Digest(rec.DataHash),
	)
	if err != nil {
		if errors.Is(err, registry.ErrAlreadyExists) {
			return ledger.AuditCommitRecord{}, sentinel.ErrConflict
		}
		return ledger.AuditCommitRecord{}, err
	}
	rec.BlockHeight = entry.BlockHeight
	rec.Timestamp = entry.Timestamp
	return rec, nil
}

func (s *Store) FindCommit(_ context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, error) {
	entry, ok := s.contracts.AuditCommit(registry.Key(commitID))
	if !ok {
		return ledger.AuditCommitRecord{}, sentinel.ErrNotFound
	}
	return ledger.AuditCommitRecord{
		CommitID:    commitID,
		LabelHash:   fingerprint.Digest(entry.LabelHash),
		Ciphertext:  entry.Ciphertext,
		DataHash:    fingerprint.Digest(entry.DataHash),
		BlockHeight: entry.BlockHeight,
		Timestamp:   entry.Timestamp,
	}, nil
}

func (s *Store) FindCommitMetadata(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, error) {
	rec, err := s.FindCommit(ctx, commitID)
	if err != nil {
		return ledger.AuditCommitRecord{}, err
	}
	rec.Ciphertext = nil
	return rec, nil
}

func (s *Store) RegisterIfAbsent(_ context.Context, rec ledger.ReleaseRecord) (ledger.ReleaseRecord, error) {
	entry, err := s.contracts.Register(
		registry.Key(rec.VersionID),
		registry.Digest(rec.SourceHash),
		registry.Digest(rec.ArtifactHash),
		rec.Version,
	)
	if err != nil {
		if errors.Is(err, registry.ErrAlreadyExists) {
			return ledger.ReleaseRecord{}, sentinel.ErrConflict
		}
		return ledger.ReleaseRecord{}, err
	}
	rec.BlockHeight = entry.BlockHeight
	rec.Timestamp = entry.Timestamp
	return rec, nil
}

func (s *Store) FindRelease(_ context.Context, versionID ledger.Key) (ledger.ReleaseRecord, error) {
	entry, ok := s.contracts.Release(registry.Key(versionID))
	if !ok {
		return ledger.ReleaseRecord{}, sentinel.ErrNotFound
	}
	return ledger.ReleaseRecord{
		VersionID:    versionID,
		SourceHash:   fingerprint.Digest(entry.SourceHash),
		ArtifactHash: fingerprint.Digest(entry.ArtifactHash),
		Version:      entry.Version,
		BlockHeight:  entry.BlockHeight,
		Timestamp:    entry.Timestamp,
	}, nil
}
