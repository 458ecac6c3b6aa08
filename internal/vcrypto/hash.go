package vcrypto

import (
	"crypto/sha256"
	"encoding/hex"

	"lukechampine.com/blake3"

	"github.com/prn-tf/vault/internal/verrors"
)

// HashFile computes the canonical BLAKE3 content digest of the file at
// path, mapping it read-only into memory and processing it in ChunkSize
// pieces. Zero-length files bypass mapping and hash the empty input
// directly. The result is rendered as 64 lowercase hex characters.
func HashFile(path string) (string, error) {
	return hashFile(path, blake3.New(32, nil))
}

// HashFileLegacy computes the deprecated SHA-256 digest, retained only to
// read archives written before BLAKE3 became canonical (see DESIGN.md).
func HashFileLegacy(path string) (string, error) {
	return hashFile(path, sha256.New())
}

type digester interface {
	Write(p []byte) (int, error)
	Sum(b []byte) []byte
}

func hashFile(path string, h digester) (string, error) {
	info, statErr := statSize(path)
	if statErr != nil {
		return "", &verrors.HashReadFailure{Path: path, Err: statErr}
	}
	if info == 0 {
		h.Write(nil)
		return hex.EncodeToString(h.Sum(nil)), nil
	}

	m, err := openMapped(path)
	if err != nil {
		return "", &verrors.HashReadFailure{Path: path, Err: err}
	}
	defer m.Close()

	for off := int64(0); off < m.size; off += ChunkSize {
		chunk, err := m.chunkAt(off)
		if err != nil {
			return "", &verrors.HashReadFailure{Path: path, Err: err}
		}
		if _, err := h.Write(chunk); err != nil {
			return "", &verrors.HashReadFailure{Path: path, Err: err}
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
