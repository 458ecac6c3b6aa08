package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/verrors"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestFileRepository_InsertFindUpdate(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte
	f, err := domain.NewFile("docs/a.txt", "deadbeef", 4, key, nonce)
	require.NoError(t, err)

	require.NoError(t, repo.InsertBatch(ctx, repository.FileBatch{f}))
	require.NotZero(t, f.ID)

	found, err := repo.FindByPaths(ctx, []string{"docs/a.txt", "missing"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, f.RandomHash, found["docs/a.txt"].RandomHash)

	paths, err := repo.AllPaths(ctx)
	require.NoError(t, err)
	require.Contains(t, paths, "docs/a.txt")

	found["docs/a.txt"].ContentsHash = "newhash"
	require.NoError(t, repo.UpdateBatch(ctx, repository.FileBatch{found["docs/a.txt"]}))

	reloaded, err := repo.FindByPaths(ctx, []string{"docs/a.txt"})
	require.NoError(t, err)
	require.Equal(t, "newhash", reloaded["docs/a.txt"].ContentsHash)
}

func TestFileRepository_DuplicatePathRejected(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte
	f1, err := domain.NewFile("dup.txt", "h1", 1, key, nonce)
	require.NoError(t, err)
	f2, err := domain.NewFile("dup.txt", "h2", 1, key, nonce)
	require.NoError(t, err)

	require.NoError(t, repo.InsertBatch(ctx, repository.FileBatch{f1}))
	err = repo.InsertBatch(ctx, repository.FileBatch{f2})
	require.Error(t, err)
}

func TestDeviceRepository_FindOrCreateCurrentIsStable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewDeviceRepository(db)

	d1, err := repo.FindOrCreateCurrent(ctx)
	require.NoError(t, err)
	require.NotZero(t, d1.ID)

	d2, err := repo.FindOrCreateCurrent(ctx)
	require.NoError(t, err)
	require.Equal(t, d1.ID, d2.ID)
	require.Equal(t, d1.PlatformID, d2.PlatformID)
}

func TestDeviceConfigRepository_GetMissingAndUpsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewDeviceConfigRepository(db)

	_, err := repo.Get(ctx, 1)
	require.ErrorIs(t, err, verrors.ErrNotFound)

	require.NoError(t, repo.SetLockedPath(ctx, 1, "/locked"))
	cfg, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, cfg.HasLockedPath())
	require.False(t, cfg.HasUnlockedPath())

	require.NoError(t, repo.SetUnlockedPath(ctx, 1, "/unlocked"))
	cfg, err = repo.Get(ctx, 1)
	require.NoError(t, err)
	require.True(t, cfg.HasLockedPath())
	require.True(t, cfg.HasUnlockedPath())
	require.Equal(t, "/locked", *cfg.LockedPath)
	require.Equal(t, "/unlocked", *cfg.UnlockedPath)
}

func TestFileDeviceRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := NewFileRepository(db)
	devices := NewDeviceRepository(db)
	fileDevices := NewFileDeviceRepository(db)

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte
	f, err := domain.NewFile("a.txt", "h", 1, key, nonce)
	require.NoError(t, err)
	require.NoError(t, files.InsertBatch(ctx, repository.FileBatch{f}))

	d, err := devices.FindOrCreateCurrent(ctx)
	require.NoError(t, err)

	mtime := domain.MtimeToEpochSeconds(time.Now())
	fd := domain.NewFileDevice(f.ID, d.ID, true, false, mtime)
	require.NoError(t, fileDevices.InsertBatch(ctx, repository.FileDeviceBatch{fd}))

	needing, err := fileDevices.FilesNeedingEncryption(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, needing, 1)
	require.Equal(t, f.RelativePath, needing[0].RelativePath)

	require.NoError(t, fileDevices.MarkEncrypted(ctx, f.ID, d.ID))

	needing, err = fileDevices.FilesNeedingEncryption(ctx, d.ID)
	require.NoError(t, err)
	require.Empty(t, needing)

	paths, err := fileDevices.PathsWithMtime(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, mtime, paths["a.txt"])
}

func TestFileDeviceRepository_MarkEncryptedMissingRow(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	fileDevices := NewFileDeviceRepository(db)

	err := fileDevices.MarkEncrypted(ctx, 999, 999)
	require.Error(t, err)
}

func TestFileDeviceRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	files := NewFileRepository(db)
	devices := NewDeviceRepository(db)
	fileDevices := NewFileDeviceRepository(db)

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte
	f, err := domain.NewFile("b.txt", "h", 1, key, nonce)
	require.NoError(t, err)
	require.NoError(t, files.InsertBatch(ctx, repository.FileBatch{f}))

	d, err := devices.FindOrCreateCurrent(ctx)
	require.NoError(t, err)

	mtime := domain.MtimeToEpochSeconds(time.Now())
	fd := domain.NewFileDevice(f.ID, d.ID, false, false, mtime)
	require.NoError(t, fileDevices.Upsert(ctx, fd))

	needing, err := fileDevices.FilesNeedingEncryption(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, needing, 1)

	fd2 := domain.NewFileDevice(f.ID, d.ID, true, true, mtime)
	require.NoError(t, fileDevices.Upsert(ctx, fd2))

	needing, err = fileDevices.FilesNeedingEncryption(ctx, d.ID)
	require.NoError(t, err)
	require.Empty(t, needing)

	paths, err := fileDevices.PathsWithMtime(ctx, d.ID)
	require.NoError(t, err)
	require.Equal(t, mtime, paths["b.txt"])
}

func TestFileRepository_All(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewFileRepository(db)

	var key [domain.KeySize]byte
	var nonce [domain.NonceSeedSize]byte
	f1, err := domain.NewFile("a.txt", "h1", 1, key, nonce)
	require.NoError(t, err)
	f2, err := domain.NewFile("b.txt", "h2", 1, key, nonce)
	require.NoError(t, err)
	require.NoError(t, repo.InsertBatch(ctx, repository.FileBatch{f1, f2}))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	hashes, err := repo.AllRandomHashes(ctx)
	require.NoError(t, err)
	require.Contains(t, hashes, f1.RandomHash)
	require.Contains(t, hashes, f2.RandomHash)
}

func TestKeyRepository_GetOrCreateIsStable(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	repo := NewKeyRepository(db)

	k1, err := repo.GetOrCreate(ctx)
	require.NoError(t, err)

	k2, err := repo.GetOrCreate(ctx)
	require.NoError(t, err)

	require.Equal(t, k1.ID, k2.ID)
	require.Equal(t, k1.Key, k2.Key)
}
