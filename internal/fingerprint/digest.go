// Package fingerprint turns documents and evidence items into canonical
// bytes, hashes them with Keccak-256, and assembles leaf digests into a
// binary Merkle tree. The whole pipeline is pure and stateless per
// invocation, so runs can be fingerprinted fully in parallel.
package fingerprint

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"

	dErrors "lexseal/pkg/domain-errors"
)

// DigestSize is the size of all digests and keys in bytes.
const DigestSize = 32

// Digest is a 32-byte Keccak-256 digest.
type Digest [DigestSize]byte

// Keccak256 hashes the concatenation of chunks with legacy Keccak-256 (the
// on-chain-compatible variant, not NIST SHA3-256).
func Keccak256(chunks ...[]byte) Digest {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	var d Digest
	h.Sum(d[:0])
	return d
}

// Hex returns the lowercase hex encoding without a 0x prefix.
func (d Digest) Hex() string {
	return hex.EncodeToString(d[:])
}

// IsZero reports whether d is the all-zero sentinel.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// ParseDigest decodes a 64-character hex string, with or without a 0x
// prefix.
func ParseDigest(s string) (Digest, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	var d Digest
	if len(s) != DigestSize*2 {
		return d, dErrors.Newf(dErrors.CodeInvalidInput, "digest must be %d hex characters", DigestSize*2)
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return Digest{}, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid hex digest")
	}
	return d, nil
}
