// Package ledger owns the write-once registries (Notary, CommitStore,
// ProjectRegistry) and the client that submits and reads records against
// them: transaction submission, idempotency checks, and result parsing.
package ledger

import (
	"time"

	"lexseal/internal/fingerprint"
)

// Key is a 32-byte record identifier. Keys are derived by the caller and
// opaque to the ledger.
type Key [32]byte

// DeriveKey hashes a human-readable name into a ledger key.
func DeriveKey(name string) Key {
	return Key(fingerprint.Keccak256([]byte(name)))
}

// Hex returns the lowercase hex encoding of the key.
func (k Key) Hex() string {
	return fingerprint.Digest(k).Hex()
}

// ParseKey decodes a 64-character hex key.
func ParseKey(s string) (Key, error) {
	d, err := fingerprint.ParseDigest(s)
	return Key(d), err
}

// NotarizationRecord lives in the Notary registry. At most one record per
// run ID, ever; absence is a valid, queryable state.
type NotarizationRecord struct {
	RunID       Key
	Root        fingerprint.Digest
	Publisher   string
	BlockHeight uint64
	Timestamp   time.Time
}

// AuditCommitRecord lives in the CommitStore registry. DataHash is the hash
// of the plaintext encrypted into Ciphertext, asserted by the caller at
// commit time and re-checked by any verifier that later decrypts.
type AuditCommitRecord struct {
	CommitID    Key
	LabelHash   fingerprint.Digest
	Ciphertext  []byte
	DataHash    fingerprint.Digest
	BlockHeight uint64
	Timestamp   time.Time
}

// ReleaseRecord binds a build's source and artifact fingerprints to a named
// release in the ProjectRegistry.
type ReleaseRecord struct {
	VersionID    Key
	SourceHash   fingerprint.Digest
	ArtifactHash fingerprint.Digest
	Version      string
	BlockHeight  uint64
	Timestamp    time.Time
}

// Receipt reports a confirmed submission.
type Receipt struct {
	TxID        string
	BlockHeight uint64
	Timestamp   time.Time
}
