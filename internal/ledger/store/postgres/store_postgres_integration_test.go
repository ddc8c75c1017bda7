//go:build integration

package postgres_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/internal/ledger/store/postgres"
	"lexseal/pkg/platform/sentinel"
	"lexseal/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *postgres.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = postgres.New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.postgres.TruncateTables(ctx, "notarizations", "audit_commits", "releases")
	s.Require().NoError(err)
	s.Require().NoError(s.postgres.ResetSequence(ctx, "ledger_height"))
}

func (s *PostgresStoreSuite) TestNotaryWriteOnce() {
	ctx := context.Background()
	runID := ledger.DeriveKey("run_001")
	rootX := fingerprint.Keccak256([]byte("rootX"))

	rec, err := s.store.PublishIfAbsent(ctx, ledger.NotarizationRecord{
		RunID: runID, Root: rootX, Publisher: "svc",
	})
	s.Require().NoError(err)
	s.Equal(uint64(1), rec.BlockHeight)
	s.False(rec.Timestamp.IsZero())

	_, err = s.store.PublishIfAbsent(ctx, ledger.NotarizationRecord{
		RunID: runID, Root: fingerprint.Keccak256([]byte("rootY")), Publisher: "svc",
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	got, err := s.store.FindNotarization(ctx, runID)
	s.Require().NoError(err)
	s.Equal(rootX, got.Root, "first write wins")
}

// TestConcurrentPublishSingleWinner verifies that racing publishers for the
// same run produce exactly one stored record and one success.
func (s *PostgresStoreSuite) TestConcurrentPublishSingleWinner() {
	ctx := context.Background()
	runID := ledger.DeriveKey("run_race")
	const goroutines = 50

	var wg sync.WaitGroup
	var wins, conflicts atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			root := fingerprint.Keccak256([]byte{byte(idx)})
			_, err := s.store.PublishIfAbsent(ctx, ledger.NotarizationRecord{
				RunID: runID, Root: root, Publisher: "svc",
			})
			switch {
			case err == nil:
				wins.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load(), "exactly one publisher should win")
	s.Equal(int32(goroutines-1), conflicts.Load())

	_, err := s.store.FindNotarization(ctx, runID)
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestCommitRoundTripAndMetadata() {
	ctx := context.Background()
	commitID := ledger.DeriveKey("commit_001")
	labelHash := fingerprint.Keccak256([]byte("case-42/audit"))
	dataHash := fingerprint.Keccak256([]byte("plaintext"))
	ciphertext := []byte{0xde, 0xad, 0xbe, 0xef}

	_, err := s.store.CommitIfAbsent(ctx, ledger.AuditCommitRecord{
		CommitID: commitID, LabelHash: labelHash, Ciphertext: ciphertext, DataHash: dataHash,
	})
	s.Require().NoError(err)

	_, err = s.store.CommitIfAbsent(ctx, ledger.AuditCommitRecord{
		CommitID: commitID, LabelHash: labelHash, Ciphertext: ciphertext, DataHash: dataHash,
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict, "identical payload still conflicts")

	full, err := s.store.FindCommit(ctx, commitID)
	s.Require().NoError(err)
	s.Equal(ciphertext, full.Ciphertext)
	s.Equal(labelHash, full.LabelHash)
	s.Equal(dataHash, full.DataHash)

	meta, err := s.store.FindCommitMetadata(ctx, commitID)
	s.Require().NoError(err)
	s.Nil(meta.Ciphertext)
	s.Equal(labelHash, meta.LabelHash)
}

func (s *PostgresStoreSuite) TestReleaseWriteOnceAndAbsentRead() {
	ctx := context.Background()
	versionID := ledger.DeriveKey("v2.1.0")

	_, err := s.store.FindRelease(ctx, versionID)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.RegisterIfAbsent(ctx, ledger.ReleaseRecord{
		VersionID:    versionID,
		SourceHash:   fingerprint.Keccak256([]byte("src")),
		ArtifactHash: fingerprint.Keccak256([]byte("art")),
		Version:      "v2.1.0",
	})
	s.Require().NoError(err)

	_, err = s.store.RegisterIfAbsent(ctx, ledger.ReleaseRecord{
		VersionID: versionID, Version: "v2.1.0",
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	rec, err := s.store.FindRelease(ctx, versionID)
	s.Require().NoError(err)
	s.Equal("v2.1.0", rec.Version)
}

func (s *PostgresStoreSuite) TestHeightsSpanRegistries() {
	ctx := context.Background()

	_, err := s.store.PublishIfAbsent(ctx, ledger.NotarizationRecord{
		RunID: ledger.DeriveKey("r"), Root: fingerprint.Keccak256([]byte("x")), Publisher: "svc",
	})
	s.Require().NoError(err)

	rec, err := s.store.CommitIfAbsent(ctx, ledger.AuditCommitRecord{
		CommitID: ledger.DeriveKey("c"), Ciphertext: []byte("ct"),
	})
	s.Require().NoError(err)
	s.Greater(rec.BlockHeight, uint64(1), "registries share one height sequence")
}
