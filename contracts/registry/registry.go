// Package registry holds the pure write-once registry contracts: Notary,
// CommitStore, and ProjectRegistry. This module is dependency-free so the
// contract semantics can be embedded, fuzzed, and reasoned about in
// isolation from any storage or transport concern.
//
// All three registries share one block-height sequence: every accepted
// write is assigned the next height, so heights totally order writes
// across registries the way a chain's transaction ordering would.
package registry

import (
	"errors"
	"sync"
	"time"
)

// Key identifies a record. Keys are opaque 32-byte values derived by the
// caller (typically a hash of a human-readable name).
type Key [32]byte

// Digest is a 32-byte content hash.
type Digest [32]byte

// ErrAlreadyExists is returned when a key already holds a record. A second
// write is rejected even if the payload is identical: the registry's job is
// to prove when something was first committed, and silently succeeding on a
// duplicate would erase that evidentiary meaning.
var ErrAlreadyExists = errors.New("registry: record already exists")

// Clock supplies record timestamps; injectable for tests.
type Clock func() time.Time

// NotarizationEntry binds a run to its Merkle root.
type NotarizationEntry struct {
	Root        Digest
	Publisher   string
	BlockHeight uint64
	Timestamp   time.Time
}

// CommitEntry binds a commit to an encrypted audit payload. LabelHash hides
// the evidentiary label; DataHash is the hash of the plaintext the
// ciphertext decrypts to, asserted by the caller at commit time.
type CommitEntry struct {
	LabelHash   Digest
	Ciphertext  []byte
	DataHash    Digest
	BlockHeight uint64
	Timestamp   time.Time
}

// ReleaseEntry binds a named release to its source and artifact hashes.
type ReleaseEntry struct {
	SourceHash   Digest
	ArtifactHash Digest
	Version      string
	BlockHeight  uint64
	Timestamp    time.Time
}

// Ledger bundles the three write-once registries over a shared height
// sequence. Zero-value lookups mean "absent" and are never an error.
type Ledger struct {
	mu       sync.RWMutex
	height   uint64
	notary   map[Key]NotarizationEntry
	commits  map[Key]CommitEntry
	releases map[Key]ReleaseEntry
	clock    Clock
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(clock Clock) Option {
	return func(l *Ledger) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// New creates an empty ledger at height zero.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		notary:   make(map[Key]NotarizationEntry),
		commits:  make(map[Key]CommitEntry),
		releases: make(map[Key]ReleaseEntry),
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Height returns the height of the last accepted write.
func (l *Ledger) Height() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.height
}

// Publish records a Merkle root for runID. Fails with ErrAlreadyExists if
// the run was already notarized, regardless of the root value.
func (l *Ledger) Publish(runID Key, root Digest, publisher string) (NotarizationEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.notary[runID]; ok {
		return NotarizationEntry{}, ErrAlreadyExists
	}
	l.height++
	entry := NotarizationEntry{
		Root:        root,
		Publisher:   publisher,
		BlockHeight: l.height,
		Timestamp:   l.clock(),
	}
	l.notary[runID] = entry
	return entry, nil
}

// Root returns the notarized root for runID. ok=false means "not yet
// notarized", a legitimate and common answer.
func (l *Ledger) Root(runID Key) (Digest, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.notary[runID]
	return entry.Root, ok
}

// Notarization returns the full entry for runID.
func (l *Ledger) Notarization(runID Key) (NotarizationEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.notary[runID]
	return entry, ok
}

// Commit records an encrypted audit payload under commitID. The ciphertext
// is stored but deliberately absent from anything the ledger reports about
// the commit besides direct reads; observers of commit activity learn only
// the label hash and the plaintext integrity hash.
func (l *Ledger) Commit(commitID Key, labelHash Digest, ciphertext []byte, dataHash Digest) (CommitEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.commits[commitID]; ok {
		return CommitEntry{}, ErrAlreadyExists
	}
	l.height++
	entry := CommitEntry{
		LabelHash:   labelHash,
		Ciphertext:  append([]byte(nil), ciphertext...),
		DataHash:    dataHash,
		BlockHeight: l.height,
		Timestamp:   l.clock(),
	}
	l.commits[commitID] = entry
	return entry, nil
}

// Ciphertext returns the committed ciphertext for commitID.
func (l *Ledger) Ciphertext(commitID Key) ([]byte, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.commits[commitID]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), entry.Ciphertext...), true
}

// CommitMetadata returns the label hash and data hash without the ciphertext.
func (l *Ledger) CommitMetadata(commitID Key) (labelHash, dataHash Digest, ok bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, found := l.commits[commitID]
	return entry.LabelHash, entry.DataHash, found
}

// AuditCommit returns the full commit entry for commitID.
func (l *Ledger) AuditCommit(commitID Key) (CommitEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.commits[commitID]
	if !ok {
		return CommitEntry{}, false
	}
	entry.Ciphertext = append([]byte(nil), entry.Ciphertext...)
	return entry, true
}

// Register binds a release version to its source and artifact hashes.
func (l *Ledger) Register(versionID Key, sourceHash, artifactHash Digest, version string) (ReleaseEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.releases[versionID]; ok {
		return ReleaseEntry{}, ErrAlreadyExists
	}
	l.height++
	entry := ReleaseEntry{
		SourceHash:   sourceHash,
		ArtifactHash: artifactHash,
		Version:      version,
		BlockHeight:  l.height,
		Timestamp:    l.clock(),
	}
	l.releases[versionID] = entry
	return entry, nil
}

// IsReleased reports whether versionID holds a record.
func (l *Ledger) IsReleased(versionID Key) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.releases[versionID]
	return ok
}

// Release returns the release entry for versionID.
func (l *Ledger) Release(versionID Key) (ReleaseEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.releases[versionID]
	return entry, ok
}

// Verify compares the supplied hashes against the stored record. It returns
// false both when the record is absent and when either hash mismatches;
// callers needing to distinguish the two must call IsReleased separately.
func (l *Ledger) Verify(versionID Key, sourceHash, artifactHash Digest) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.releases[versionID]
	if !ok {
		return false
	}
	return entry.SourceHash == sourceHash && entry.ArtifactHash == artifactHash
}
