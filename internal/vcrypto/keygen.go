// Package vcrypto implements the vault's cryptographic core: the streaming
// XChaCha20-Poly1305 AEAD codec, the BLAKE3 content hasher, and the
// key/nonce generator.
package vcrypto

import (
	"crypto/rand"

	"github.com/prn-tf/vault/internal/domain"
)

// GenerateKeyNonce produces a fresh (key, nonce) pair drawn from OS entropy.
// Callers must not reuse a pair across encryptions of different plaintexts.
func GenerateKeyNonce() (key [domain.KeySize]byte, nonce [domain.NonceSeedSize]byte, err error) {
	if _, err = rand.Read(key[:]); err != nil {
		return key, nonce, err
	}
	if _, err = rand.Read(nonce[:]); err != nil {
		return key, nonce, err
	}
	return key, nonce, nil
}
