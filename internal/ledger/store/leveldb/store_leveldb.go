// Package leveldb backs the ledger with an embedded LevelDB database for
// single-node deployments that need durability without PostgreSQL. Records
// are stored as JSON under prefixed keys; the shared block height lives in
// a meta key and is advanced under a mutex, keeping the single-writer
// discipline the registries require.
package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/pkg/platform/sentinel"
)

const (
	prefixNotary  = "notary:"
	prefixCommit  = "commit:"
	prefixRelease = "release:"
	metaHeightKey = "height_latest"
)

// Store implements ledger.Store over goleveldb.
type Store struct {
	mu    sync.Mutex
	db    *leveldb.DB
	clock func() time.Time
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %s: %w", path, err)
	}
	return &Store{db: db, clock: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

type notarizationRow struct {
	Root        fingerprint.Digest `json:"merkle_root"`
	Publisher   string             `json:"publisher"`
	BlockHeight uint64             `json:"block_height"`
	RecordedAt  time.Time          `json:"recorded_at"`
}

type commitRow struct {
	LabelHash   fingerprint.Digest `json:"label_hash"`
	Ciphertext  []byte             `json:"ciphertext"`
	DataHash    fingerprint.Digest `json:"data_hash"`
	BlockHeight uint64             `json:"block_height"`
	RecordedAt  time.Time          `json:"recorded_at"`
}

type releaseRow struct {
	SourceHash   fingerprint.Digest `json:"source_hash"`
	ArtifactHash fingerprint.Digest `json:"artifact_hash"`
	Version      string             `json:"version"`
	BlockHeight  uint64             `json:"block_height"`
	RecordedAt   time.Time          `json:"recorded_at"`
}

// putIfAbsent writes row under key together with the advanced height in one
// batch. Caller must hold s.mu.
func (s *Store) putIfAbsent(key []byte, row any) (uint64, time.Time, error) {
	if _, err := s.db.Get(key, nil); err == nil {
		return 0, time.Time{}, sentinel.ErrConflict
	} else if err != leveldb.ErrNotFound {
		return 0, time.Time{}, fmt.Errorf("read %s: %w", key, err)
	}

	height, err := s.nextHeight()
	if err != nil {
		return 0, time.Time{}, err
	}
	now := s.clock()

	switch r := row.(type) {
	case *notarizationRow:
		r.BlockHeight, r.RecordedAt = height, now
	case *commitRow:
		r.BlockHeight, r.RecordedAt = height, now
	case *releaseRow:
		r.BlockHeight, r.RecordedAt = height, now
	}

	data, err := json.Marshal(row)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("marshal ledger row: %w", err)
	}

	batch := new(leveldb.Batch)
	batch.Put(key, data)
	batch.Put([]byte(metaHeightKey), []byte(strconv.FormatUint(height, 10)))
	if err := s.db.Write(batch, nil); err != nil {
		return 0, time.Time{}, fmt.Errorf("write ledger batch: %w", err)
	}
	return height, now, nil
}

func (s *Store) nextHeight() (uint64, error) {
	v, err := s.db.Get([]byte(metaHeightKey), nil)
	if err == leveldb.ErrNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read height: %w", err)
	}
	h, err := strconv.ParseUint(string(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse height %q: %w", v, err)
	}
	return h + 1, nil
}

func (s *Store) get(key []byte, row any) error {
	data, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, row); err != nil {
		return fmt.Errorf("decode ledger row %s: %w", key, err)
	}
	return nil
}

func notaryKey(id ledger.Key) []byte  { return []byte(prefixNotary + id.Hex()) }
func commitKey(id ledger.Key) []byte  { return []byte(prefixCommit + id.Hex()) }
func releaseKey(id ledger.Key) []byte { return []byte(prefixRelease + id.Hex()) }

func (s *Store) PublishIfAbsent(_ context.Context, rec ledger.NotarizationRecord) (ledger.NotarizationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := &notarizationRow{Root: rec.Root, Publisher: rec.Publisher}
	height, ts, err := s.putIfAbsent(notaryKey(rec.RunID), row)
	if err != nil {
		return ledger.NotarizationRecord{}, err
	}
	rec.BlockHeight, rec.Timestamp = height, ts
	return rec, nil
}

func (s *Store) FindNotarization(_ context.Context, runID ledger.Key) (ledger.NotarizationRecord, error) {
	var row notarizationRow
	if err := s.get(notaryKey(runID), &row); err != nil {
		return ledger.NotarizationRecord{}, err
	}
	return ledger.NotarizationRecord{
		RunID:       runID,
		Root:        row.Root,
		Publisher:   row.Publisher,
		BlockHeight: row.BlockHeight,
		Timestamp:   row.RecordedAt,
	}, nil
}

func (s *Store) CommitIfAbsent(_ context.Context, rec ledger.AuditCommitRecord) (ledger.AuditCommitRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := &commitRow{LabelHash: rec.LabelHash, Ciphertext: rec.Ciphertext, DataHash: rec.DataHash}
	height, ts, err := s.putIfAbsent(commitKey(rec.CommitID), row)
	if err != nil {
		return ledger.AuditCommitRecord{}, err
	}
	rec.BlockHeight, rec.Timestamp = height, ts
	return rec, nil
}

func (s *Store) FindCommit(_ context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, error) {
	var row commitRow
	if err := s.get(commitKey(commitID), &row); err != nil {
		return ledger.AuditCommitRecord{}, err
	}
	return ledger.AuditCommitRecord{
		CommitID:    commitID,
		LabelHash:   row.LabelHash,
		Ciphertext:  row.Ciphertext,
		DataHash:    row.DataHash,
		BlockHeight: row.BlockHeight,
		Timestamp:   row.RecordedAt,
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
	s.mu.Lock()
	defer s.mu.Unlock()

	row := &releaseRow{SourceHash: rec.SourceHash, ArtifactHash: rec.ArtifactHash, Version: rec.Version}
	height, ts, err := s.putIfAbsent(releaseKey(rec.VersionID), row)
	if err != nil {
		return ledger.ReleaseRecord{}, err
	}
	rec.BlockHeight, rec.Timestamp = height, ts
	return rec, nil
}

func (s *Store) FindRelease(_ context.Context, versionID ledger.Key) (ledger.ReleaseRecord, error) {
	var row releaseRow
	if err := s.get(releaseKey(versionID), &row); err != nil {
		return ledger.ReleaseRecord{}, err
	}
	return ledger.ReleaseRecord{
		VersionID:    versionID,
		SourceHash:   row.SourceHash,
		ArtifactHash: row.ArtifactHash,
		Version:      row.Version,
		BlockHeight:  row.BlockHeight,
		Timestamp:    row.RecordedAt,
	}, nil
}

var _ ledger.Store = (*Store)(nil)
