// Package release manages the project registry: one immutable record per
// released version, binding the version string to its source and artifact
// fingerprints.
package release

import (
	"context"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	dErrors "lexseal/pkg/domain-errors"
)

// Ledger is the slice of the ledger client the release service needs.
type Ledger interface {
	RegisterRelease(ctx context.Context, versionID ledger.Key, sourceHash, artifactHash fingerprint.Digest, version string) (ledger.Receipt, error)
	GetRelease(ctx context.Context, versionID ledger.Key) (ledger.ReleaseRecord, bool, error)
	IsReleased(ctx context.Context, versionID ledger.Key) (bool, error)
	VerifyRelease(ctx context.Context, versionID ledger.Key, sourceHash, artifactHash fingerprint.Digest) (bool, error)
}

// Service registers and inspects release records.
type Service struct {
	ledger Ledger
	logger *slog.Logger
	tracer trace.Tracer
}

func NewService(ldg Ledger, logger *slog.Logger) *Service {
	return &Service{
		ledger: ldg,
		logger: logger,
		tracer: otel.Tracer("lexseal/release"),
	}
}

// RegisterResult reports a confirmed release registration.
type RegisterResult struct {
	VersionID ledger.Key
	Version   string
	Receipt   ledger.Receipt
}

// Register creates the release record for version. The versionID is derived
// from the version string, so re-registering any version fails with
// CodeAlreadyRegistered regardless of the hashes supplied.
func (s *Service) Register(ctx context.Context, version string, sourceHash, artifactHash fingerprint.Digest) (RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "release.Register",
		trace.WithAttributes(attribute.String("version", version)))
	defer span.End()

	if strings.TrimSpace(version) == "" {
		return RegisterResult{}, dErrors.New(dErrors.CodeInvalidInput, "version must not be empty")
	}

	versionID := ledger.DeriveKey(version)
	receipt, err := s.ledger.RegisterRelease(ctx, versionID, sourceHash, artifactHash, version)
	if err != nil {
		return RegisterResult{}, err
	}

	s.logger.InfoContext(ctx, "release registered",
		"version", version,
		"version_id", versionID.Hex(),
		"block_height", receipt.BlockHeight,
	)
	return RegisterResult{VersionID: versionID, Version: version, Receipt: receipt}, nil
}

// Get looks up the release record for a version string.
func (s *Service) Get(ctx context.Context, version string) (ledger.ReleaseRecord, bool, error) {
	if strings.TrimSpace(version) == "" {
		return ledger.ReleaseRecord{}, false, dErrors.New(dErrors.CodeInvalidInput, "version must not be empty")
	}
	return s.ledger.GetRelease(ctx, ledger.DeriveKey(version))
}

// IsReleased reports whether version has a record.
func (s *Service) IsReleased(ctx context.Context, version string) (bool, error) {
	if strings.TrimSpace(version) == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "version must not be empty")
	}
	return s.ledger.IsReleased(ctx, ledger.DeriveKey(version))
}

// Verify compares supplied hashes against the stored record. False covers
// both an unregistered version and a hash mismatch.
func (s *Service) Verify(ctx context.Context, version string, sourceHash, artifactHash fingerprint.Digest) (bool, error) {
	ctx, span := s.tracer.Start(ctx, "release.Verify",
		trace.WithAttributes(attribute.String("version", version)))
	defer span.End()

	if strings.TrimSpace(version) == "" {
		return false, dErrors.New(dErrors.CodeInvalidInput, "version must not be empty")
	}

	valid, err := s.ledger.VerifyRelease(ctx, ledger.DeriveKey(version), sourceHash, artifactHash)
	if err != nil {
		return false, err
	}
	if !valid {
		s.logger.WarnContext(ctx, "release verification failed", "version", version)
	}
	return valid, nil
}
