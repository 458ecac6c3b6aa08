package vcrypto

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashFile_KnownVectors(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "abc", []byte("abc"))

	blake3Digest, err := HashFile(path)
	require.NoError(t, err)
	require.Equal(t, "6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85", blake3Digest)

	sha256Digest, err := HashFileLegacy(path)
	require.NoError(t, err)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sha256Digest)
}

func TestHashFile_Determinism(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, ChunkSize*3+17)
	rand.New(rand.NewSource(7)).Read(content)
	path := writeTemp(t, dir, "f", content)

	d1, err := HashFile(path)
	require.NoError(t, err)
	d2, err := HashFile(path)
	require.NoError(t, err)
	require.Equal(t, d1, d2)
}

func TestHashFile_Sensitivity(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 1000)
	rand.New(rand.NewSource(9)).Read(content)
	path := writeTemp(t, dir, "f", content)

	original, err := HashFile(path)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		mutated := append([]byte(nil), content...)
		idx := rand.New(rand.NewSource(int64(i))).Intn(len(mutated))
		mutated[idx] ^= 0x01
		mutPath := filepath.Join(dir, "mutated")
		require.NoError(t, os.WriteFile(mutPath, mutated, 0o644))

		digest, err := HashFile(mutPath)
		require.NoError(t, err)
		require.NotEqual(t, original, digest)
	}
}

func TestHashFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "empty", nil)
	digest, err := HashFile(path)
	require.NoError(t, err)
	require.Len(t, digest, 64)
}
