package verify

//go:generate mockgen -source=service.go -destination=mocks/verify-mocks.go -package=mocks

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lexseal/internal/auditvault"
	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/internal/verify/mocks"
	dErrors "lexseal/pkg/domain-errors"
)

type VerifyServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	ledger  *mocks.MockLedger
	vault   *mocks.MockVault
	service *Service
	ctx     context.Context
}

func TestVerifyServiceSuite(t *testing.T) {
	suite.Run(t, new(VerifyServiceSuite))
}

func (s *VerifyServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.vault = mocks.NewMockVault(s.ctrl)
	s.service = NewService(s.ledger, s.vault, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.ctx = context.Background()
}

func (s *VerifyServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *VerifyServiceSuite) TestCheckNotarizationMatch() {
	runID := ledger.DeriveKey("case_42_research")
	root := fingerprint.Keccak256([]byte("root"))

	s.ledger.EXPECT().GetRoot(gomock.Any(), runID).
		Return(ledger.NotarizationRecord{RunID: runID, Root: root, BlockHeight: 3}, true, nil)

	check, err := s.service.CheckNotarization(s.ctx, runID, &root)
	s.Require().NoError(err)
	s.True(check.Found)
	s.Equal(root, check.Root)
	s.Require().NotNil(check.Matches)
	s.True(*check.Matches)
}

func (s *VerifyServiceSuite) TestCheckNotarizationMismatchIsDistinctFromAbsence() {
	runID := ledger.DeriveKey("case_42_research")
	stored := fingerprint.Keccak256([]byte("stored"))
	expected := fingerprint.Keccak256([]byte("expected"))

	s.ledger.EXPECT().GetRoot(gomock.Any(), runID).
		Return(ledger.NotarizationRecord{RunID: runID, Root: stored}, true, nil)

	check, err := s.service.CheckNotarization(s.ctx, runID, &expected)
	s.Require().NoError(err)
	s.True(check.Found, "a mismatching run is still found")
	s.Require().NotNil(check.Matches)
	s.False(*check.Matches)
}

func (s *VerifyServiceSuite) TestCheckNotarizationAbsent() {
	s.ledger.EXPECT().GetRoot(gomock.Any(), gomock.Any()).
		Return(ledger.NotarizationRecord{}, false, nil)

	check, err := s.service.CheckNotarization(s.ctx, ledger.DeriveKey("unknown"), nil)
	s.Require().NoError(err)
	s.False(check.Found)
	s.Nil(check.Matches)
}

func (s *VerifyServiceSuite) TestCheckNotarizationWithoutExpectedRoot() {
	runID := ledger.DeriveKey("case_42_research")
	root := fingerprint.Keccak256([]byte("root"))

	s.ledger.EXPECT().GetRoot(gomock.Any(), runID).
		Return(ledger.NotarizationRecord{RunID: runID, Root: root}, true, nil)

	check, err := s.service.CheckNotarization(s.ctx, runID, nil)
	s.Require().NoError(err)
	s.True(check.Found)
	s.Nil(check.Matches, "no expectation, no verdict")
}

func (s *VerifyServiceSuite) TestCheckCommitMetadataOnly() {
	commitID := ledger.DeriveKey("case_42/audit")
	dataHash := fingerprint.Keccak256([]byte("payload"))

	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), commitID).
		Return(ledger.AuditCommitRecord{CommitID: commitID, DataHash: dataHash, BlockHeight: 4}, true, nil)

	check, err := s.service.CheckCommit(s.ctx, commitID, false)
	s.Require().NoError(err)
	s.True(check.Found)
	s.Equal(dataHash, check.DataHash)
	s.Nil(check.DataHashMatches, "no decryption, no integrity verdict")
}

func (s *VerifyServiceSuite) TestCheckCommitWithDecryption() {
	commitID := ledger.DeriveKey("case_42/audit")

	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), commitID).
		Return(ledger.AuditCommitRecord{CommitID: commitID, BlockHeight: 4}, true, nil)
	s.vault.EXPECT().Open(gomock.Any(), commitID).
		Return(auditvault.OpenResult{Plaintext: []byte("payload")}, true, nil)

	check, err := s.service.CheckCommit(s.ctx, commitID, true)
	s.Require().NoError(err)
	s.Require().NotNil(check.DataHashMatches)
	s.True(*check.DataHashMatches)
}

func (s *VerifyServiceSuite) TestCheckCommitTamperedPayload() {
	commitID := ledger.DeriveKey("case_42/audit")

	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), commitID).
		Return(ledger.AuditCommitRecord{CommitID: commitID}, true, nil)
	s.vault.EXPECT().Open(gomock.Any(), commitID).
		Return(auditvault.OpenResult{}, true, dErrors.New(dErrors.CodeIntegrityMismatch, "tampered"))

	check, err := s.service.CheckCommit(s.ctx, commitID, true)
	s.Require().NoError(err, "integrity failure is a verdict, not an error")
	s.True(check.Found)
	s.Require().NotNil(check.DataHashMatches)
	s.False(*check.DataHashMatches)
}

func (s *VerifyServiceSuite) TestCheckCommitAbsent() {
	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), gomock.Any()).
		Return(ledger.AuditCommitRecord{}, false, nil)

	check, err := s.service.CheckCommit(s.ctx, ledger.DeriveKey("missing"), true)
	s.Require().NoError(err)
	s.False(check.Found)
}

func (s *VerifyServiceSuite) TestCheckReleaseValid() {
	src := fingerprint.Keccak256([]byte("source"))
	art := fingerprint.Keccak256([]byte("artifact"))

	s.ledger.EXPECT().GetRelease(gomock.Any(), ledger.DeriveKey("v1.2.0")).
		Return(ledger.ReleaseRecord{Version: "v1.2.0", SourceHash: src, ArtifactHash: art, BlockHeight: 9}, true, nil)

	check, err := s.service.CheckRelease(s.ctx, "v1.2.0", src, art)
	s.Require().NoError(err)
	s.True(check.Found)
	s.True(check.Valid)
}

func (s *VerifyServiceSuite) TestCheckReleaseMismatchAndAbsence() {
	src := fingerprint.Keccak256([]byte("source"))
	art := fingerprint.Keccak256([]byte("artifact"))

	s.Run("mismatch: found but invalid", func() {
		s.ledger.EXPECT().GetRelease(gomock.Any(), gomock.Any()).
			Return(ledger.ReleaseRecord{Version: "v1.2.0", SourceHash: src, ArtifactHash: fingerprint.Keccak256([]byte("other"))}, true, nil)

		check, err := s.service.CheckRelease(s.ctx, "v1.2.0", src, art)
		s.Require().NoError(err)
		s.True(check.Found)
		s.False(check.Valid)
	})

	s.Run("absence: not found and invalid", func() {
		s.ledger.EXPECT().GetRelease(gomock.Any(), gomock.Any()).
			Return(ledger.ReleaseRecord{}, false, nil)

		check, err := s.service.CheckRelease(s.ctx, "v9.9.9", src, art)
		s.Require().NoError(err)
		s.False(check.Found)
		s.False(check.Valid)
	})
}
