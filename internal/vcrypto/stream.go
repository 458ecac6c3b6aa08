package vcrypto

import (
	"bufio"
	"crypto/cipher"
	"encoding/binary"
	"os"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/verrors"
)

// TagSize is the per-chunk Poly1305 authentication tag overhead.
const TagSize = chacha20poly1305.Overhead

// nonceSuffixSize is the per-chunk suffix appended to the 19-byte nonce
// seed to build the full 24-byte XChaCha20 nonce: a 4-byte little-endian
// counter plus a 1-byte terminal flag (the LE31 construction, see
// SPEC_FULL.md §4.3).
const nonceSuffixSize = 5

const lastBlockFlag = 0x01

// buildNonce expands a 19-byte seed into the full 24-byte XChaCha20 nonce
// for chunk number counter, marking it terminal when last is true.
func buildNonce(seed [domain.NonceSeedSize]byte, counter uint32, last bool) []byte {
	nonce := make([]byte, chacha20poly1305.NonceSizeX)
	copy(nonce, seed[:])
	binary.LittleEndian.PutUint32(nonce[domain.NonceSeedSize:], counter)
	if last {
		nonce[domain.NonceSeedSize+4] = lastBlockFlag
	}
	return nonce
}

func newAEAD(key [domain.KeySize]byte) (cipher.AEAD, error) {
	return chacha20poly1305.NewX(key[:])
}

// EncryptFile encrypts unlockedPath into lockedPath as an authenticated
// XChaCha20-Poly1305 stream using the LE31 chunked-nonce construction.
// Non-empty plaintexts are mapped read-only into memory and processed in
// ChunkSize pieces; a zero-length plaintext produces a single 16-byte
// tag-only ciphertext via encrypt_last on empty input.
func EncryptFile(unlockedPath, lockedPath string, key [domain.KeySize]byte, nonce [domain.NonceSeedSize]byte) error {
	aead, err := newAEAD(key)
	if err != nil {
		return &verrors.CipherOperationError{Phase: verrors.PhaseEncryptLast, Source: unlockedPath, Destination: lockedPath, Err: err}
	}

	size, err := statSize(unlockedPath)
	if err != nil {
		return verrors.NewIoError(unlockedPath, err)
	}

	out, err := os.Create(lockedPath)
	if err != nil {
		return verrors.NewIoError(lockedPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	if size == 0 {
		sealed := aead.Seal(nil, buildNonce(nonce, 0, true), nil, nil)
		if _, err := w.Write(sealed); err != nil {
			return verrors.NewIoError(lockedPath, err)
		}
		return flushClose(w, out, lockedPath)
	}

	m, err := openMapped(unlockedPath)
	if err != nil {
		return verrors.NewIoError(unlockedPath, err)
	}
	defer m.Close()

	var counter uint32
	for off := int64(0); off < m.size; off += ChunkSize {
		chunk, err := m.chunkAt(off)
		if err != nil {
			return verrors.NewIoError(unlockedPath, err)
		}
		// A full-size chunk that exactly reaches EOF is not terminal on its
		// own: the stream ends on a chunk boundary, and an explicit empty
		// encrypt_last call below produces the closing tag-only chunk (see
		// SPEC_FULL.md §8 S3's boundary-size accounting).
		last := int64(len(chunk)) < ChunkSize
		phase := verrors.PhaseEncryptNext
		if last {
			phase = verrors.PhaseEncryptLast
		}
		sealed := aead.Seal(nil, buildNonce(nonce, counter, last), chunk, nil)
		if _, err := w.Write(sealed); err != nil {
			return &verrors.CipherOperationError{Phase: phase, Source: unlockedPath, Destination: lockedPath, Err: err}
		}
		counter++
	}
	if m.size%ChunkSize == 0 {
		sealed := aead.Seal(nil, buildNonce(nonce, counter, true), nil, nil)
		if _, err := w.Write(sealed); err != nil {
			return &verrors.CipherOperationError{Phase: verrors.PhaseEncryptLast, Source: unlockedPath, Destination: lockedPath, Err: err}
		}
	}
	return flushClose(w, out, lockedPath)
}

func flushClose(w *bufio.Writer, f *os.File, path string) error {
	if err := w.Flush(); err != nil {
		return verrors.NewIoError(path, err)
	}
	return nil
}

// chunkedCiphertextSize is the ciphertext-side chunk size: ChunkSize
// plaintext plus the authentication tag.
const chunkedCiphertextSize = ChunkSize + TagSize

// DecryptFile decrypts lockedPath into unlockedPath, verifying the
// authentication tag of every chunk. Any tampering with the ciphertext
// causes the corresponding chunk's decryption to fail with a
// *verrors.CipherOperationError whose phase is DecryptNext or DecryptLast.
func DecryptFile(lockedPath, unlockedPath string, key [domain.KeySize]byte, nonce [domain.NonceSeedSize]byte) error {
	aead, err := newAEAD(key)
	if err != nil {
		return &verrors.CipherOperationError{Phase: verrors.PhaseDecryptLast, Source: lockedPath, Destination: unlockedPath, Err: err}
	}

	size, err := statSize(lockedPath)
	if err != nil {
		return verrors.NewIoError(lockedPath, err)
	}
	if size == 0 {
		return &verrors.CipherOperationError{
			Phase:       verrors.PhaseDecryptLast,
			Source:      lockedPath,
			Destination: unlockedPath,
			Err:         errZeroLengthCiphertext,
		}
	}

	in, err := os.Open(lockedPath)
	if err != nil {
		return verrors.NewIoError(lockedPath, err)
	}
	defer in.Close()

	out, err := os.Create(unlockedPath)
	if err != nil {
		return verrors.NewIoError(unlockedPath, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	r := bufio.NewReaderSize(in, chunkedCiphertextSize)
	buf := make([]byte, chunkedCiphertextSize)
	var counter uint32
	for {
		n, readErr := readChunk(r, buf)
		if n == 0 && readErr == nil {
			break
		}
		last := n < chunkedCiphertextSize || readErr != nil
		phase := verrors.PhaseDecryptNext
		if last {
			phase = verrors.PhaseDecryptLast
		}
		plain, err := aead.Open(nil, buildNonce(nonce, counter, last), buf[:n], nil)
		if err != nil {
			return &verrors.CipherOperationError{Phase: phase, Source: lockedPath, Destination: unlockedPath, Err: err}
		}
		if _, err := w.Write(plain); err != nil {
			return verrors.NewIoError(unlockedPath, err)
		}
		counter++
		if last {
			break
		}
	}
	return flushClose(w, out, unlockedPath)
}

// readChunk fills buf as far as possible from r, returning the number of
// bytes read. A short read (including zero) with no further data signals
// the terminal chunk.
func readChunk(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, nil
		}
	}
	return total, nil
}

var errZeroLengthCiphertext = zeroLengthCiphertextError{}

type zeroLengthCiphertextError struct{}

func (zeroLengthCiphertextError) Error() string {
	return "zero-length ciphertext is not a valid authenticated stream"
}
