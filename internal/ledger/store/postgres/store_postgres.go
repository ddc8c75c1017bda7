// Package postgres backs the ledger with PostgreSQL. The write-once
// invariant maps onto INSERT ... ON CONFLICT DO NOTHING over primary keys,
// and block heights come from a single sequence shared by the three
// registries so heights totally order writes the way chain inclusion would.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"lexseal/internal/ledger"
	"lexseal/pkg/platform/sentinel"
)

// Schema is applied by EnsureSchema. Kept idempotent so startup can run it
// unconditionally.
const Schema = `
CREATE SEQUENCE IF NOT EXISTS ledger_height;

CREATE TABLE IF NOT EXISTS notarizations (
	run_id       BYTEA PRIMARY KEY,
	merkle_root  BYTEA NOT NULL,
	publisher    TEXT NOT NULL,
	block_height BIGINT NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS audit_commits (
	commit_id    BYTEA PRIMARY KEY,
	label_hash   BYTEA NOT NULL,
	ciphertext   BYTEA NOT NULL,
	data_hash    BYTEA NOT NULL,
	block_height BIGINT NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS releases (
	version_id    BYTEA PRIMARY KEY,
	source_hash   BYTEA NOT NULL,
	artifact_hash BYTEA NOT NULL,
	version       TEXT NOT NULL,
	block_height  BIGINT NOT NULL,
	recorded_at   TIMESTAMPTZ NOT NULL
);
`

// Store implements ledger.Store over database/sql.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL-backed ledger store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the registry tables and the shared height sequence.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure ledger schema: %w", err)
	}
	return nil
}

func (s *Store) PublishIfAbsent(ctx context.Context, rec ledger.NotarizationRecord) (ledger.NotarizationRecord, error) {
	query := `
		INSERT INTO notarizations (run_id, merkle_root, publisher, block_height, recorded_at)
		VALUES ($1, $2, $3, nextval('ledger_height'), now())
		ON CONFLICT (run_id) DO NOTHING
		RETURNING block_height, recorded_at
	`
	err := s.db.QueryRowContext(ctx, query, rec.RunID[:], rec.Root[:], rec.Publisher).
		Scan(&rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// ON CONFLICT DO NOTHING returns no row when the key is taken.
			return ledger.NotarizationRecord{}, sentinel.ErrConflict
		}
		return ledger.NotarizationRecord{}, fmt.Errorf("insert notarization: %w", err)
	}
	return rec, nil
}

func (s *Store) FindNotarization(ctx context.Context, runID ledger.Key) (ledger.NotarizationRecord, error) {
	query := `
		SELECT merkle_root, publisher, block_height, recorded_at
		FROM notarizations WHERE run_id = $1
	`
	rec := ledger.NotarizationRecord{RunID: runID}
	var root []byte
	err := s.db.QueryRowContext(ctx, query, runID[:]).
		Scan(&root, &rec.Publisher, &rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.NotarizationRecord{}, sentinel.ErrNotFound
		}
		return ledger.NotarizationRecord{}, fmt.Errorf("find notarization: %w", err)
	}
	copy(rec.Root[:], root)
	return rec, nil
}

func (s *Store) CommitIfAbsent(ctx context.Context, rec ledger.AuditCommitRecord) (ledger.AuditCommitRecord, error) {
	query := `
		INSERT INTO audit_commits (commit_id, label_hash, ciphertext, data_hash, block_height, recorded_at)
		VALUES ($1, $2, $3, $4, nextval('ledger_height'), now())
		ON CONFLICT (commit_id) DO NOTHING
		RETURNING block_height, recorded_at
	`
	err := s.db.QueryRowContext(ctx, query, rec.CommitID[:], rec.LabelHash[:], rec.Ciphertext, rec.DataHash[:]).
		Scan(&rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.AuditCommitRecord{}, sentinel.ErrConflict
		}
		return ledger.AuditCommitRecord{}, fmt.Errorf("insert audit commit: %w", err)
	}
	return rec, nil
}

func (s *Store) FindCommit(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, error) {
	query := `
		SELECT label_hash, ciphertext, data_hash, block_height, recorded_at
		FROM audit_commits WHERE commit_id = $1
	`
	rec := ledger.AuditCommitRecord{CommitID: commitID}
	var labelHash, dataHash []byte
	err := s.db.QueryRowContext(ctx, query, commitID[:]).
		Scan(&labelHash, &rec.Ciphertext, &dataHash, &rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.AuditCommitRecord{}, sentinel.ErrNotFound
		}
		return ledger.AuditCommitRecord{}, fmt.Errorf("find audit commit: %w", err)
	}
	copy(rec.LabelHash[:], labelHash)
	copy(rec.DataHash[:], dataHash)
	return rec, nil
}

func (s *Store) FindCommitMetadata(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, error) {
	query := `
		SELECT label_hash, data_hash, block_height, recorded_at
		FROM audit_commits WHERE commit_id = $1
	`
	rec := ledger.AuditCommitRecord{CommitID: commitID}
	var labelHash, dataHash []byte
	err := s.db.QueryRowContext(ctx, query, commitID[:]).
		Scan(&labelHash, &dataHash, &rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.AuditCommitRecord{}, sentinel.ErrNotFound
		}
		return ledger.AuditCommitRecord{}, fmt.Errorf("find audit commit metadata: %w", err)
	}
	copy(rec.LabelHash[:], labelHash)
	copy(rec.DataHash[:], dataHash)
	return rec, nil
}

func (s *Store) RegisterIfAbsent(ctx context.Context, rec ledger.ReleaseRecord) (ledger.ReleaseRecord, error) {
	query := `
		INSERT INTO releases (version_id, source_hash, artifact_hash, version, block_height, recorded_at)
		VALUES ($1, $2, $3, $4, nextval('ledger_height'), now())
		ON CONFLICT (version_id) DO NOTHING
		RETURNING block_height, recorded_at
	`
	err := s.db.QueryRowContext(ctx, query, rec.VersionID[:], rec.SourceHash[:], rec.ArtifactHash[:], rec.Version).
		Scan(&rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ReleaseRecord{}, sentinel.ErrConflict
		}
		return ledger.ReleaseRecord{}, fmt.Errorf("insert release: %w", err)
	}
	return rec, nil
}

func (s *Store) FindRelease(ctx context.Context, versionID ledger.Key) (ledger.ReleaseRecord, error) {
	query := `
		SELECT source_hash, artifact_hash, version, block_height, recorded_at
		FROM releases WHERE version_id = $1
	`
	rec := ledger.ReleaseRecord{VersionID: versionID}
	var src, art []byte
	err := s.db.QueryRowContext(ctx, query, versionID[:]).
		Scan(&src, &art, &rec.Version, &rec.BlockHeight, &rec.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ReleaseRecord{}, sentinel.ErrNotFound
		}
		return ledger.ReleaseRecord{}, fmt.Errorf("find release: %w", err)
	}
	copy(rec.SourceHash[:], src)
	copy(rec.ArtifactHash[:], art)
	return rec, nil
}

var _ ledger.Store = (*Store)(nil)
