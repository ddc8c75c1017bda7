// Package verify answers integrity questions against the registries without
// ever mutating them. Absence, mismatch and match are three distinct
// answers; only infrastructure failures are errors.
package verify

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lexseal/internal/auditvault"
	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	dErrors "lexseal/pkg/domain-errors"
)

// Ledger is the read-only slice of the ledger client the verifier needs.
type Ledger interface {
	GetRoot(ctx context.Context, runID ledger.Key) (ledger.NotarizationRecord, bool, error)
	GetCommitMetadata(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, bool, error)
	GetRelease(ctx context.Context, versionID ledger.Key) (ledger.ReleaseRecord, bool, error)
}

// Vault opens sealed payloads when a commit check decrypts.
type Vault interface {
	Open(ctx context.Context, commitID ledger.Key) (auditvault.OpenResult, bool, error)
}

// Service performs verification reads.
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
		tracer: otel.Tracer("lexseal/verify"),
	}
}

// NotarizationCheck distinguishes "never notarized" (Found=false) from
// "notarized with a different root" (Matches=false). Matches is nil when no
// expected root was supplied.
type NotarizationCheck struct {
	Found       bool
	Root        fingerprint.Digest
	BlockHeight uint64
	Matches     *bool
}

// CheckNotarization looks up the run's root and optionally compares it with
// an expected value.
func (s *Service) CheckNotarization(ctx context.Context, runID ledger.Key, expectedRoot *fingerprint.Digest) (NotarizationCheck, error) {
	ctx, span := s.tracer.Start(ctx, "verify.CheckNotarization",
		trace.WithAttributes(attribute.String("run_id", runID.Hex())))
	defer span.End()

	rec, found, err := s.ledger.GetRoot(ctx, runID)
	if err != nil {
		return NotarizationCheck{}, err
	}
	if !found {
		return NotarizationCheck{}, nil
	}

	check := NotarizationCheck{Found: true, Root: rec.Root, BlockHeight: rec.BlockHeight}
	if expectedRoot != nil {
		matches := rec.Root == *expectedRoot
		check.Matches = &matches
		if !matches {
			s.logger.WarnContext(ctx, "notarization root mismatch",
				"run_id", runID.Hex(),
				"stored_root", rec.Root.Hex(),
				"expected_root", expectedRoot.Hex(),
			)
		}
	}
	return check, nil
}

// CommitCheck reports a commit's presence and, when decryption was
// requested, whether the sealed payload still matches its committed data
// hash.
type CommitCheck struct {
	Found           bool
	LabelHash       fingerprint.Digest
	DataHash        fingerprint.Digest
	BlockHeight     uint64
	DataHashMatches *bool
}

// CheckCommit verifies an audit commit. With decrypt=false only the
// metadata is consulted. With decrypt=true the payload round-trips through
// the vault; an AEAD failure or hash mismatch yields DataHashMatches=false
// rather than an error.
func (s *Service) CheckCommit(ctx context.Context, commitID ledger.Key, decrypt bool) (CommitCheck, error) {
	ctx, span := s.tracer.Start(ctx, "verify.CheckCommit",
		trace.WithAttributes(attribute.String("commit_id", commitID.Hex())))
	defer span.End()

	rec, found, err := s.ledger.GetCommitMetadata(ctx, commitID)
	if err != nil {
		return CommitCheck{}, err
	}
	if !found {
		return CommitCheck{}, nil
	}

	check := CommitCheck{
		Found:       true,
		LabelHash:   rec.LabelHash,
		DataHash:    rec.DataHash,
		BlockHeight: rec.BlockHeight,
	}
	if !decrypt {
		return check, nil
	}

	_, _, err = s.vault.Open(ctx, commitID)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeIntegrityMismatch) {
			matches := false
			check.DataHashMatches = &matches
			return check, nil
		}
		return CommitCheck{}, err
	}
	matches := true
	check.DataHashMatches = &matches
	return check, nil
}

// ReleaseCheck is Scenario-D shaped: Valid is false for both absence and
// mismatch, Found tells the two apart.
type ReleaseCheck struct {
	Found       bool
	Valid       bool
	Version     string
	BlockHeight uint64
}

// CheckRelease verifies a release version against supplied hashes.
func (s *Service) CheckRelease(ctx context.Context, version string, sourceHash, artifactHash fingerprint.Digest) (ReleaseCheck, error) {
	ctx, span := s.tracer.Start(ctx, "verify.CheckRelease",
		trace.WithAttributes(attribute.String("version", version)))
	defer span.End()

	if version == "" {
		return ReleaseCheck{}, dErrors.New(dErrors.CodeInvalidInput, "version must not be empty")
	}

	rec, found, err := s.ledger.GetRelease(ctx, ledger.DeriveKey(version))
	if err != nil {
		return ReleaseCheck{}, err
	}
	if !found {
		return ReleaseCheck{}, nil
	}

	return ReleaseCheck{
		Found:       true,
		Valid:       rec.SourceHash == sourceHash && rec.ArtifactHash == artifactHash,
		Version:     rec.Version,
		BlockHeight: rec.BlockHeight,
	}, nil
}
