// Package auditvault seals audit payloads: authenticated encryption plus a
// write-once commit of the ciphertext and integrity hashes through the
// ledger client. The ledger stores ciphertext only; plaintext never leaves
// this package unencrypted.
package auditvault

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"

	dErrors "lexseal/pkg/domain-errors"
)

// Encryptor performs ChaCha20-Poly1305 AEAD with a server-held key. The
// random nonce is prepended to the ciphertext so sealed payloads are
// self-contained.
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates an encryptor from a 32-byte key.
func NewEncryptor(key []byte) (*Encryptor, error) {
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("create audit cipher: %w", err)
	}
	return &Encryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt opens a nonce-prefixed sealed payload. Authentication failure
// means the ciphertext was tampered with or sealed under a different key.
func (e *Encryptor) Decrypt(sealed []byte) ([]byte, error) {
	if len(sealed) < e.aead.NonceSize() {
		return nil, dErrors.New(dErrors.CodeIntegrityMismatch, "sealed payload too short")
	}
	nonce, ciphertext := sealed[:e.aead.NonceSize()], sealed[e.aead.NonceSize():]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeIntegrityMismatch, "sealed payload failed authentication")
	}
	return plaintext, nil
}
