package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) TestNotaryWriteOnce() {
	runID := ledger.DeriveKey("run_001")
	rootX := fingerprint.Keccak256([]byte("rootX"))
	rootY := fingerprint.Keccak256([]byte("rootY"))

	s.Run("first publish succeeds with height and timestamp", func() {
		rec, err := s.store.PublishIfAbsent(s.ctx, ledger.NotarizationRecord{
			RunID: runID, Root: rootX, Publisher: "svc",
		})
		s.Require().NoError(err)
		s.Equal(uint64(1), rec.BlockHeight)
		s.False(rec.Timestamp.IsZero())
	})

	s.Run("second publish conflicts even with a different root", func() {
		_, err := s.store.PublishIfAbsent(s.ctx, ledger.NotarizationRecord{
			RunID: runID, Root: rootY, Publisher: "svc",
		})
		s.Require().ErrorIs(err, sentinel.ErrConflict)
	})

	s.Run("lookup returns the first root only", func() {
		rec, err := s.store.FindNotarization(s.ctx, runID)
		s.Require().NoError(err)
		s.Equal(rootX, rec.Root)
		s.Equal("svc", rec.Publisher)
	})

	s.Run("unknown run returns ErrNotFound", func() {
		_, err := s.store.FindNotarization(s.ctx, ledger.DeriveKey("run_999"))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *MemoryStoreSuite) TestCommitWriteOnceAndMetadata() {
	commitID := ledger.DeriveKey("commit_001")
	labelHash := fingerprint.Keccak256([]byte("privacy-case-audit"))
	dataHash := fingerprint.Keccak256([]byte("plaintext"))
	ciphertext := []byte("sealed-bytes")

	rec, err := s.store.CommitIfAbsent(s.ctx, ledger.AuditCommitRecord{
		CommitID: commitID, LabelHash: labelHash, Ciphertext: ciphertext, DataHash: dataHash,
	})
	s.Require().NoError(err)
	s.Equal(uint64(1), rec.BlockHeight)

	_, err = s.store.CommitIfAbsent(s.ctx, ledger.AuditCommitRecord{
		CommitID: commitID, LabelHash: labelHash, Ciphertext: []byte("other"), DataHash: dataHash,
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	s.Run("full read includes ciphertext", func() {
		got, err := s.store.FindCommit(s.ctx, commitID)
		s.Require().NoError(err)
		s.Equal(ciphertext, got.Ciphertext)
		s.Equal(dataHash, got.DataHash)
	})

	s.Run("metadata read omits ciphertext", func() {
		got, err := s.store.FindCommitMetadata(s.ctx, commitID)
		s.Require().NoError(err)
		s.Nil(got.Ciphertext)
		s.Equal(labelHash, got.LabelHash)
		s.Equal(dataHash, got.DataHash)
	})
}

func (s *MemoryStoreSuite) TestReleaseWriteOnce() {
	versionID := ledger.DeriveKey("v1.0.0")
	src := fingerprint.Keccak256([]byte("source"))
	art := fingerprint.Keccak256([]byte("artifact"))

	_, err := s.store.RegisterIfAbsent(s.ctx, ledger.ReleaseRecord{
		VersionID: versionID, SourceHash: src, ArtifactHash: art, Version: "v1.0.0",
	})
	s.Require().NoError(err)

	_, err = s.store.RegisterIfAbsent(s.ctx, ledger.ReleaseRecord{
		VersionID: versionID, SourceHash: src, ArtifactHash: art, Version: "v1.0.0",
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict)

	rec, err := s.store.FindRelease(s.ctx, versionID)
	s.Require().NoError(err)
	s.Equal("v1.0.0", rec.Version)
	s.Equal(src, rec.SourceHash)
	s.Equal(art, rec.ArtifactHash)
}

func (s *MemoryStoreSuite) TestHeightsSpanRegistries() {
	_, err := s.store.PublishIfAbsent(s.ctx, ledger.NotarizationRecord{
		RunID: ledger.DeriveKey("r"), Root: fingerprint.Keccak256([]byte("x")), Publisher: "svc",
	})
	s.Require().NoError(err)

	rec, err := s.store.CommitIfAbsent(s.ctx, ledger.AuditCommitRecord{
		CommitID: ledger.DeriveKey("c"), Ciphertext: []byte("ct"),
	})
	s.Require().NoError(err)
	s.Equal(uint64(2), rec.BlockHeight, "registries share one height sequence")
}
