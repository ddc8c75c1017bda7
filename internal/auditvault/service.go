package auditvault

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
	dErrors "lexseal/pkg/domain-errors"
)

// Ledger is the slice of the ledger client the vault needs.
type Ledger interface {
	CommitAudit(ctx context.Context, commitID ledger.Key, labelHash fingerprint.Digest, ciphertext []byte, dataHash fingerprint.Digest) (ledger.Receipt, error)
	GetCommit(ctx context.Context, commitID ledger.Key) (ledger.AuditCommitRecord, bool, error)
}

// Service seals plaintext audit payloads into the commit store and opens
// them back with integrity verification.
type Service struct {
	encryptor *Encryptor
	ledger    Ledger
	logger    *slog.Logger
	tracer    trace.Tracer
}

func NewService(encryptor *Encryptor, ldg Ledger, logger *slog.Logger) *Service {
	return &Service{
		encryptor: encryptor,
		ledger:    ldg,
		logger:    logger,
		tracer:    otel.Tracer("lexseal/auditvault"),
	}
}

// SealResult reports where a sealed payload landed.
type SealResult struct {
	CommitID  ledger.Key
	LabelHash fingerprint.Digest
	DataHash  fingerprint.Digest
	Receipt   ledger.Receipt
}

// Seal encrypts plaintext and commits it under a commit ID derived from the
// label. Committing twice under one label fails with CodeAlreadyCommitted.
func (s *Service) Seal(ctx context.Context, label string, plaintext []byte) (SealResult, error) {
	return s.SealAs(ctx, ledger.DeriveKey(label), label, plaintext)
}

// SealAs is Seal with a caller-chosen commit ID, used where the ID is
// derived from something other than the label (run audit trails).
func (s *Service) SealAs(ctx context.Context, commitID ledger.Key, label string, plaintext []byte) (SealResult, error) {
	ctx, span := s.tracer.Start(ctx, "auditvault.Seal",
		trace.WithAttributes(attribute.String("commit_id", commitID.Hex())))
	defer span.End()

	if label == "" {
		return SealResult{}, dErrors.New(dErrors.CodeInvalidInput, "audit label must not be empty")
	}
	if len(plaintext) == 0 {
		return SealResult{}, dErrors.New(dErrors.CodeInvalidInput, "audit payload must not be empty")
	}

	labelHash := fingerprint.Keccak256([]byte(label))
	dataHash := fingerprint.Keccak256(plaintext)

	ciphertext, err := s.encryptor.Encrypt(plaintext)
	if err != nil {
		return SealResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "audit payload encryption failed")
	}

	receipt, err := s.ledger.CommitAudit(ctx, commitID, labelHash, ciphertext, dataHash)
	if err != nil {
		return SealResult{}, err
	}

	s.logger.InfoContext(ctx, "audit payload sealed",
		"commit_id", commitID.Hex(),
		"block_height", receipt.BlockHeight,
	)
	return SealResult{
		CommitID:  commitID,
		LabelHash: labelHash,
		DataHash:  dataHash,
		Receipt:   receipt,
	}, nil
}

// OpenResult carries a decrypted payload plus the stored integrity facts.
type OpenResult struct {
	Plaintext   []byte
	LabelHash   fingerprint.Digest
	DataHash    fingerprint.Digest
	BlockHeight uint64
}

// Open fetches, decrypts and integrity-checks a sealed payload. found=false
// with a nil error means no commit exists under the ID. A decryption
// failure or a recomputed hash that disagrees with the stored dataHash is
// CodeIntegrityMismatch.
func (s *Service) Open(ctx context.Context, commitID ledger.Key) (OpenResult, bool, error) {
	ctx, span := s.tracer.Start(ctx, "auditvault.Open",
		trace.WithAttributes(attribute.String("commit_id", commitID.Hex())))
	defer span.End()

	rec, found, err := s.ledger.GetCommit(ctx, commitID)
	if err != nil {
		return OpenResult{}, false, err
	}
	if !found {
		return OpenResult{}, false, nil
	}

	plaintext, err := s.encryptor.Decrypt(rec.Ciphertext)
	if err != nil {
		return OpenResult{}, true, err
	}

	if fingerprint.Keccak256(plaintext) != rec.DataHash {
		return OpenResult{}, true, dErrors.New(dErrors.CodeIntegrityMismatch,
			"decrypted payload does not match committed data hash")
	}

	return OpenResult{
		Plaintext:   plaintext,
		LabelHash:   rec.LabelHash,
		DataHash:    rec.DataHash,
		BlockHeight: rec.BlockHeight,
	}, true, nil
}
