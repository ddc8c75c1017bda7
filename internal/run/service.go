package run

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"lexseal/internal/auditvault"
	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	dErrors "lexseal/pkg/domain-errors"
)

// Ledger is the slice of the ledger client the run aggregate needs.
type Ledger interface {
	PublishRoot(ctx context.Context, runID ledger.Key, root fingerprint.Digest) (ledger.Receipt, error)
	GetRoot(ctx context.Context, runID ledger.Key) (ledger.NotarizationRecord, bool, error)
	GetCommitMetadata(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, bool, error)
}

// Vault seals audit payloads into the commit store.
type Vault interface {
	SealAs(ctx context.Context, commitID ledger.Key, label string, plaintext []byte) (auditvault.SealResult, error)
}

// Service orchestrates the run pipeline: canonicalize, hash, build the
// root, then write the notary and commit store legs.
type Service struct {
	ledger Ledger
	vault  Vault
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(ldg Ledger, vault Vault, logger *slog.Logger) *Service {
	return &Service{
		ledger: ldg,
		vault:  vault,
		logger: logger,
		tracer: otel.Tracer("lexseal/run"),
	}
}

// Notarize fingerprints the run and performs the two ledger writes as
// independent submissions. Fingerprinting errors abort before anything
// touches the ledger; leg failures are reported per leg in the result and
// never roll the other leg back.
func (s *Service) Notarize(ctx context.Context, req NotarizeRequest) (NotarizeResult, error) {
	ctx, span := s.tracer.Start(ctx, "run.Notarize",
		trace.WithAttributes(attribute.String("run_name", req.RunName)))
	defer span.End()

	if req.RunName == "" {
		return NotarizeResult{}, dErrors.New(dErrors.CodeInvalidInput, "run name must not be empty")
	}

	leaves, err := s.fingerprintAll(ctx, req)
	if err != nil {
		return NotarizeResult{}, err
	}

	root, err := fingerprint.BuildRoot(leaves)
	if err != nil {
		return NotarizeResult{}, err
	}

	runID := ledger.DeriveKey(req.RunName)
	commitID := AuditCommitID(runID)

	result := NotarizeResult{
		RunID:     runID,
		Root:      root,
		LeafCount: len(leaves),
		CommitID:  commitID,
	}

	// The two legs run in parallel and fail independently. A confirmed leg
	// stays confirmed: write-once registries have no rollback.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		receipt, err := s.ledger.PublishRoot(ctx, runID, root)
		result.Notary = LegOutcome{Done: err == nil, Receipt: receipt, Err: err}
	}()

	if len(req.AuditPayload) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sealed, err := s.vault.SealAs(ctx, commitID, req.RunName+auditSuffix, req.AuditPayload)
			result.Audit = LegOutcome{Done: err == nil, Receipt: sealed.Receipt, Err: err}
		}()
	}
	wg.Wait()

	s.logger.InfoContext(ctx, "run notarization finished",
		"run_id", runID.Hex(),
		"leaves", len(leaves),
		"notary_ok", result.Notary.Done,
		"audit_ok", result.Audit.Done,
	)
	return result, nil
}

// fingerprintAll canonicalizes and hashes every document and evidence text
// in parallel, preserving caller order: documents first, then evidence.
func (s *Service) fingerprintAll(ctx context.Context, req NotarizeRequest) ([]fingerprint.Digest, error) {
	total := len(req.Documents) + len(req.EvidenceTexts)
	if total == 0 {
		return nil, dErrors.New(dErrors.CodeEmptyRun, "run has no documents or evidence to fingerprint")
	}

	leaves := make([]fingerprint.Digest, total)
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, doc := range req.Documents {
		i, doc := i, doc
		g.Go(func() error {
			leaf, err := fingerprint.DocumentLeaf(doc)
			if err != nil {
				return err
			}
			leaves[i] = leaf.Digest
			return nil
		})
	}
	for i, text := range req.EvidenceTexts {
		i, text := i, text
		g.Go(func() error {
			leaf, err := fingerprint.EvidenceLeaf(text)
			if err != nil {
				return err
			}
			leaves[len(req.Documents)+i] = leaf.Digest
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return leaves, nil
}

// GetNotarization looks up the notary record for a run ID. found=false
// with a nil error means the run was never notarized.
func (s *Service) GetNotarization(ctx context.Context, runID ledger.Key) (ledger.NotarizationRecord, bool, error) {
	return s.ledger.GetRoot(ctx, runID)
}

// Status reports which registries hold records for the named run. Absence
// in either is a reported state, not an error.
func (s *Service) Status(ctx context.Context, runName string) (Status, error) {
	if runName == "" {
		return Status{}, dErrors.New(dErrors.CodeInvalidInput, "run name must not be empty")
	}
	status, err := s.StatusByID(ctx, ledger.DeriveKey(runName))
	if err != nil {
		return Status{}, err
	}
	status.RunName = runName
	return status, nil
}

// StatusByID is Status keyed by run ID, for callers that only hold the
// derived key.
func (s *Service) StatusByID(ctx context.Context, runID ledger.Key) (Status, error) {
	commitID := AuditCommitID(runID)
	status := Status{RunID: runID, CommitID: commitID}

	rec, found, err := s.ledger.GetRoot(ctx, runID)
	if err != nil {
		return Status{}, err
	}
	if found {
		status.Notarized = true
		status.Root = rec.Root
		status.Publisher = rec.Publisher
		status.BlockHeight = rec.BlockHeight
		status.NotarizedAt = rec.Timestamp
	}

	commit, found, err := s.ledger.GetCommitMetadata(ctx, commitID)
	if err != nil {
		return Status{}, err
	}
	if found {
		status.AuditCommitted = true
		status.AuditHeight = commit.BlockHeight
	}

	return status, nil
}
