package fswalk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWalk_Completeness(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0o755))

	files := map[string][]byte{
		"top.txt":        []byte("top"),
		"a/mid.txt":      []byte("mid"),
		"a/b/bottom.txt": []byte("bottom-content"),
	}
	for rel, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(root, rel), content, 0o644))
	}

	got, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, got, len(files))

	for rel, content := range files {
		meta, ok := got[rel]
		require.True(t, ok, "missing entry for %s", rel)
		require.Equal(t, int64(len(content)), meta.Size)
	}
}

func TestWalk_ExcludesDirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty-dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("x"), 0o644))

	got, err := Walk(root)
	require.NoError(t, err)
	require.Len(t, got, 1)
	_, ok := got["file.txt"]
	require.True(t, ok)
}

func TestWalk_DoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(target, "real.txt"), []byte("real"), 0o644))
	require.NoError(t, os.Symlink(target, filepath.Join(root, "link")))

	got, err := Walk(root)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestWalk_EmptyRoot(t *testing.T) {
	root := t.TempDir()
	got, err := Walk(root)
	require.NoError(t, err)
	require.Empty(t, got)
}
