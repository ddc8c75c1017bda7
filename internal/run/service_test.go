package run

//go:generate mockgen -source=service.go -destination=mocks/run-mocks.go -package=mocks

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"lexseal/internal/auditvault"
	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	"lexseal/internal/run/mocks"
	dErrors "lexseal/pkg/domain-errors"
)

type RunServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	ledger  *mocks.MockLedger
	vault   *mocks.MockVault
	service *Service
	ctx     context.Context
}

func TestRunServiceSuite(t *testing.T) {
	suite.Run(t, new(RunServiceSuite))
}

func (s *RunServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.ledger = mocks.NewMockLedger(s.ctrl)
	s.vault = mocks.NewMockVault(s.ctrl)
	s.service = NewService(s.ledger, s.vault, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.ctx = context.Background()
}

func (s *RunServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func sampleRequest() NotarizeRequest {
	return NotarizeRequest{
		RunName: "case_42_research",
		Documents: []fingerprint.Document{
			{Title: "Smith v. Jones", Content: "opinion text", Metadata: map[string]string{"court": "9th Cir."}},
		},
		EvidenceTexts: []string{"the court held that..."},
		AuditPayload:  []byte(`{"queries":["privacy precedent"]}`),
	}
}

// expectedRoot recomputes the root the service should produce: document
// leaves first, evidence leaves after, in caller order.
func expectedRoot(t *testing.T, req NotarizeRequest) fingerprint.Digest {
	t.Helper()
	var leaves []fingerprint.Digest
	for _, doc := range req.Documents {
		leaf, err := fingerprint.DocumentLeaf(doc)
		if err != nil {
			t.Fatalf("document leaf: %v", err)
		}
		leaves = append(leaves, leaf.Digest)
	}
	for _, text := range req.EvidenceTexts {
		leaf, err := fingerprint.EvidenceLeaf(text)
		if err != nil {
			t.Fatalf("evidence leaf: %v", err)
		}
		leaves = append(leaves, leaf.Digest)
	}
	root, err := fingerprint.BuildRoot(leaves)
	if err != nil {
		t.Fatalf("build root: %v", err)
	}
	return root
}

func (s *RunServiceSuite) TestNotarizeHappyPath() {
	req := sampleRequest()
	runID := ledger.DeriveKey(req.RunName)
	commitID := AuditCommitID(runID)
	root := expectedRoot(s.T(), req)

	s.ledger.EXPECT().
		PublishRoot(gomock.Any(), runID, root).
		Return(ledger.Receipt{TxID: "tx1", BlockHeight: 1, Timestamp: time.Now()}, nil)
	s.vault.EXPECT().
		SealAs(gomock.Any(), commitID, req.RunName+"/audit", req.AuditPayload).
		Return(auditvault.SealResult{CommitID: commitID, Receipt: ledger.Receipt{TxID: "tx2", BlockHeight: 2}}, nil)

	result, err := s.service.Notarize(s.ctx, req)
	s.Require().NoError(err)
	s.Equal(runID, result.RunID)
	s.Equal(commitID, result.CommitID)
	s.Equal(root, result.Root)
	s.Equal(2, result.LeafCount)
	s.True(result.Notary.Done)
	s.True(result.Audit.Done)
	s.Equal(uint64(1), result.Notary.Receipt.BlockHeight)
	s.Equal(uint64(2), result.Audit.Receipt.BlockHeight)
}

func (s *RunServiceSuite) TestNotarizeWithoutAuditPayload() {
	req := sampleRequest()
	req.AuditPayload = nil

	s.ledger.EXPECT().
		PublishRoot(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.Receipt{TxID: "tx1", BlockHeight: 1}, nil)

	result, err := s.service.Notarize(s.ctx, req)
	s.Require().NoError(err)
	s.True(result.Notary.Done)
	s.False(result.Audit.Done, "no audit leg when no payload")
}

func (s *RunServiceSuite) TestEmptyRunAbortsBeforeLedger() {
	_, err := s.service.Notarize(s.ctx, NotarizeRequest{RunName: "empty_run"})
	s.Equal(dErrors.CodeEmptyRun, dErrors.CodeOf(err))
}

func (s *RunServiceSuite) TestEncodingErrorAbortsBeforeLedger() {
	req := NotarizeRequest{
		RunName: "bad_encoding",
		Documents: []fingerprint.Document{
			{Title: string([]byte{0xff, 0xfe}), Content: "text"},
		},
	}
	_, err := s.service.Notarize(s.ctx, req)
	s.Equal(dErrors.CodeEncoding, dErrors.CodeOf(err))
}

func (s *RunServiceSuite) TestPartialFailureIsSurfacedPerLeg() {
	req := sampleRequest()

	s.ledger.EXPECT().
		PublishRoot(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ledger.Receipt{}, dErrors.New(dErrors.CodeAlreadyNotarized, "run already notarized"))
	s.vault.EXPECT().
		SealAs(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(auditvault.SealResult{Receipt: ledger.Receipt{TxID: "tx2", BlockHeight: 5}}, nil)

	result, err := s.service.Notarize(s.ctx, req)
	s.Require().NoError(err, "leg failures live inside the result")
	s.False(result.Notary.Done)
	s.Equal(dErrors.CodeAlreadyNotarized, dErrors.CodeOf(result.Notary.Err))
	s.True(result.Audit.Done, "audit leg is not rolled back")
}

func (s *RunServiceSuite) TestStatusFullyNotarized() {
	runID := ledger.DeriveKey("case_42_research")
	commitID := AuditCommitID(runID)
	root := fingerprint.Keccak256([]byte("root"))
	at := time.Now()

	s.ledger.EXPECT().GetRoot(gomock.Any(), runID).
		Return(ledger.NotarizationRecord{RunID: runID, Root: root, Publisher: "svc", BlockHeight: 3, Timestamp: at}, true, nil)
	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), commitID).
		Return(ledger.AuditCommitRecord{CommitID: commitID, BlockHeight: 4}, true, nil)

	status, err := s.service.Status(s.ctx, "case_42_research")
	s.Require().NoError(err)
	s.True(status.Notarized)
	s.Equal(root, status.Root)
	s.Equal(uint64(3), status.BlockHeight)
	s.True(status.AuditCommitted)
	s.Equal(uint64(4), status.AuditHeight)
}

func (s *RunServiceSuite) TestStatusPartialState() {
	runID := ledger.DeriveKey("half_done")

	s.ledger.EXPECT().GetRoot(gomock.Any(), runID).
		Return(ledger.NotarizationRecord{RunID: runID, BlockHeight: 9}, true, nil)
	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), gomock.Any()).
		Return(ledger.AuditCommitRecord{}, false, nil)

	status, err := s.service.Status(s.ctx, "half_done")
	s.Require().NoError(err)
	s.True(status.Notarized)
	s.False(status.AuditCommitted, "partial state is reported, not an error")
}

func (s *RunServiceSuite) TestStatusUnknownRun() {
	s.ledger.EXPECT().GetRoot(gomock.Any(), gomock.Any()).
		Return(ledger.NotarizationRecord{}, false, nil)
	s.ledger.EXPECT().GetCommitMetadata(gomock.Any(), gomock.Any()).
		Return(ledger.AuditCommitRecord{}, false, nil)

	status, err := s.service.Status(s.ctx, "never_ran")
	s.Require().NoError(err)
	s.False(status.Notarized)
	s.False(status.AuditCommitted)
}

func (s *RunServiceSuite) TestAuditCommitIDIsDerivedFromRunID() {
	runID := ledger.DeriveKey("case_42_research")
	want := ledger.Key(fingerprint.Keccak256(runID[:], []byte("/audit")))
	s.Equal(want, AuditCommitID(runID))
}
