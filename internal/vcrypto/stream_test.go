package vcrypto

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/prn-tf/vault/internal/domain"
)

func writeTemp(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}

func TestEncryptDecrypt_RoundTrip_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	plain := writeTemp(t, dir, "plain", nil)
	cipherPath := filepath.Join(dir, "cipher")
	outPath := filepath.Join(dir, "out")

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte

	require.NoError(t, EncryptFile(plain, cipherPath, key, nonce))

	info, err := os.Stat(cipherPath)
	require.NoError(t, err)
	require.Equal(t, int64(TagSize), info.Size())

	require.NoError(t, DecryptFile(cipherPath, outPath, key, nonce))
	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestEncryptDecrypt_RoundTrip_BoundarySizes(t *testing.T) {
	sizes := []int{1, 32767, 32768, 32769, 65535, 65536, 65537}
	for _, size := range sizes {
		size := size
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			dir := t.TempDir()
			content := make([]byte, size)
			rand.New(rand.NewSource(int64(size))).Read(content)
			plain := writeTemp(t, dir, "plain", content)
			cipherPath := filepath.Join(dir, "cipher")
			outPath := filepath.Join(dir, "out")

			key, nonce, err := GenerateKeyNonce()
			require.NoError(t, err)

			require.NoError(t, EncryptFile(plain, cipherPath, key, nonce))

			info, err := os.Stat(cipherPath)
			require.NoError(t, err)
			expected := int64(size) + TagSize*((int64(size)+ChunkSize-1)/ChunkSize)
			if int64(size)%ChunkSize == 0 {
				expected += TagSize
			}
			require.Equal(t, expected, info.Size())

			require.NoError(t, DecryptFile(cipherPath, outPath, key, nonce))
			out, err := os.ReadFile(outPath)
			require.NoError(t, err)
			require.Equal(t, content, out)
		})
	}
}

func TestDecrypt_TamperDetection(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, ChunkSize*2+100)
	rand.New(rand.NewSource(1)).Read(content)
	plain := writeTemp(t, dir, "plain", content)
	cipherPath := filepath.Join(dir, "cipher")
	outPath := filepath.Join(dir, "out")

	key, nonce, err := GenerateKeyNonce()
	require.NoError(t, err)
	require.NoError(t, EncryptFile(plain, cipherPath, key, nonce))

	raw, err := os.ReadFile(cipherPath)
	require.NoError(t, err)
	raw[10] ^= 0xFF
	require.NoError(t, os.WriteFile(cipherPath, raw, 0o644))

	err = DecryptFile(cipherPath, outPath, key, nonce)
	require.Error(t, err)
}

func TestDecrypt_ZeroLengthCiphertextRejected(t *testing.T) {
	dir := t.TempDir()
	cipherPath := writeTemp(t, dir, "cipher", nil)
	outPath := filepath.Join(dir, "out")

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte
	err := DecryptFile(cipherPath, outPath, key, nonce)
	require.Error(t, err)
}

func TestEncryptDecrypt_RoundTrip_LargeRandom(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 1<<20+77)
	rand.New(rand.NewSource(42)).Read(content)
	plain := writeTemp(t, dir, "plain", content)
	cipherPath := filepath.Join(dir, "cipher")
	outPath := filepath.Join(dir, "out")

	key, nonce, err := GenerateKeyNonce()
	require.NoError(t, err)
	require.NoError(t, EncryptFile(plain, cipherPath, key, nonce))
	require.NoError(t, DecryptFile(cipherPath, outPath, key, nonce))

	out, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Equal(t, content, out)
}
