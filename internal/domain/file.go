// Package domain holds the vault's persistent record types: File, Device,
// DeviceConfig, FileDevice, and the legacy singleton Key.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// KeySize is the length in bytes of a per-file symmetric key.
const KeySize = 32

// NonceSeedSize is the length in bytes of a per-file AEAD nonce seed (see
// internal/vcrypto for the LE31 expansion into a full 24-byte nonce).
const NonceSeedSize = 19

// RandomHashSize is the length in bytes of the random identifier that backs
// a File's ciphertext filename, rendered as 64 lowercase hex characters.
const RandomHashSize = 32

// HashKind distinguishes the content digest algorithm recorded for a File.
// BLAKE3 is canonical for new writes; SHA256 exists only to read archives
// written before this decision (see DESIGN.md, Open Question resolution).
type HashKind string

const (
	HashKindBlake3 HashKind = "blake3"
	HashKindSHA256 HashKind = "sha256"
)

// File is the logical record for one plaintext file tracked by the vault.
type File struct {
	ID           int64
	Title        string
	RelativePath string
	RandomHash   string
	ContentsHash string
	HashKind     HashKind
	Size         int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Key          [KeySize]byte
	Nonce        [NonceSeedSize]byte
}

// NewFile constructs a File for insertion: it mints a fresh random_hash and
// expects key/nonce to already have been produced by the key generator
// (internal/vcrypto.GenerateKeyNonce), since File itself has no access to
// entropy policy.
func NewFile(relativePath, contentsHash string, size int64, key [KeySize]byte, nonce [NonceSeedSize]byte) (*File, error) {
	randomHash, err := pseudorandomHexString()
	if err != nil {
		return nil, fmt.Errorf("generate random hash: %w", err)
	}
	now := time.Now().UTC()
	return &File{
		Title:        relativePath,
		RelativePath: relativePath,
		RandomHash:   randomHash,
		ContentsHash: contentsHash,
		HashKind:     HashKindBlake3,
		Size:         size,
		CreatedAt:    now,
		UpdatedAt:    now,
		Key:          key,
		Nonce:        nonce,
	}, nil
}

// pseudorandomHexString returns a 64-character lowercase hex string drawn
// from OS entropy, used as a File's random_hash.
func pseudorandomHexString() (string, error) {
	buf := make([]byte, RandomHashSize)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
