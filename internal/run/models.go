// Package run is the notarization aggregate: one research run becomes one
// Merkle root in the notary plus one sealed audit payload in the commit
// store. The two writes are independent submissions; partial states are
// legitimate and observable through Status.
package run

import (
	"time"

	"lexseal/internal/fingerprint"
	"lexseal/internal/ledger"
)

// NotarizeRequest carries everything a run fingerprints: the documents the
// researcher relied on, the evidence texts extracted from them, and the
// audit trail describing how the run was conducted.
type NotarizeRequest struct {
	RunName       string
	Documents     []fingerprint.Document
	EvidenceTexts []string

	// AuditPayload is the plaintext audit trail. It is sealed before it
	// touches the ledger; empty means the run is notarized without one.
	AuditPayload []byte
}

// LegOutcome reports one of the two independent ledger writes.
type LegOutcome struct {
	Done    bool
	Receipt ledger.Receipt
	Err     error
}

// NotarizeResult is the outcome of a full notarization. Either leg can fail
// while the other succeeds; nothing is rolled back.
type NotarizeResult struct {
	RunID     ledger.Key
	Root      fingerprint.Digest
	LeafCount int

	Notary LegOutcome

	CommitID ledger.Key
	Audit    LegOutcome
}

// Status is the consistency view of a run: which registries hold records
// for it. Partial states are reported, never treated as errors.
type Status struct {
	RunName string
	RunID   ledger.Key

	Notarized   bool
	Root        fingerprint.Digest
	Publisher   string
	BlockHeight uint64
	NotarizedAt time.Time

	CommitID       ledger.Key
	AuditCommitted bool
	AuditHeight    uint64
}

// auditSuffix correlates a run with its audit commit: the commit ID is
// derived from the run ID, not chosen by the caller.
const auditSuffix = "/audit"

// AuditCommitID derives the commit store key for a run's audit trail.
func AuditCommitID(runID ledger.Key) ledger.Key {
	return ledger.Key(fingerprint.Keccak256(runID[:], []byte(auditSuffix)))
}
