// Package sync implements the vault's three-phase reconciler (C7): index the
// unlocked tree, hash and persist what changed, then encrypt whatever still
// lacks ciphertext. Grounded in the original source's
// krypta-impl/src/actions/{database_sync,locked_sync}.rs, reshaped onto C1
// (walker), C2/C4 (hash, keygen), C5 (fabric), and C6 (the repository
// interfaces).
package sync

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/prn-tf/vault/internal/cache"
	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/fabric"
	"github.com/prn-tf/vault/internal/fswalk"
	"github.com/prn-tf/vault/internal/repository"
	"github.com/prn-tf/vault/internal/vcrypto"
	"github.com/prn-tf/vault/internal/verrors"
)

// Report summarizes one sync invocation (§8, property 7/8; §11.7 feeds this
// into SyncMetrics).
type Report struct {
	Inserted         int
	Updated          int
	Encrypted        int
	EncryptionErrors int
}

// CheckReport summarizes one check invocation: filenames under locked_path
// with no matching random_hash, and random_hash values with no ciphertext.
type CheckReport struct {
	ExtraCiphertexts   []string
	MissingCiphertexts []string
}

// Clean reports whether the check found zero inconsistencies.
func (r *CheckReport) Clean() bool {
	return len(r.ExtraCiphertexts) == 0 && len(r.MissingCiphertexts) == 0
}

// Reconciler orchestrates one device's sync against the metadata store.
type Reconciler struct {
	files       repository.FileRepository
	devices     repository.DeviceRepository
	fileDevices repository.FileDeviceRepository
	hashCache   *cache.HashCache
	logger      zerolog.Logger
}

// New constructs a Reconciler over the given repositories, with no hash
// cache attached (see WithHashCache); until one is attached, every file's
// digest is always recomputed.
func New(files repository.FileRepository, devices repository.DeviceRepository, fileDevices repository.FileDeviceRepository, logger zerolog.Logger) *Reconciler {
	return &Reconciler{
		files:       files,
		devices:     devices,
		fileDevices: fileDevices,
		logger:      logger.With().Str("component", "sync").Logger(),
	}
}

// WithHashCache attaches a hash-memoization cache (C13) to the
// reconciler: Phase B looks up a file's digest by (path, size, mtime)
// before recomputing it, and stores the result after a miss. This is
// purely an accelerator — a disabled or missing cache always falls back
// to C2's direct computation, never becomes an alternate source of truth.
func (r *Reconciler) WithHashCache(hc *cache.HashCache) *Reconciler {
	r.hashCache = hc
	return r
}

// Sync runs Phase A (index), Phase B (hash+persist), and Phase C (encrypt)
// against unlockedPath/lockedPath for the current device.
func (r *Reconciler) Sync(ctx context.Context, unlockedPath, lockedPath string) (*Report, error) {
	device, err := r.devices.FindOrCreateCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve current device: %w", err)
	}

	insertPaths, updatePaths, local, err := r.phaseA(ctx, unlockedPath, device.ID)
	if err != nil {
		return nil, fmt.Errorf("phase A (index): %w", err)
	}
	r.logger.Info().Int("insert", len(insertPaths)).Int("update", len(updatePaths)).Msg("phase A complete")

	report := &Report{}
	if err := r.phaseB(ctx, unlockedPath, device.ID, insertPaths, updatePaths, local, report); err != nil {
		return nil, fmt.Errorf("phase B (hash+persist): %w", err)
	}
	r.logger.Info().Int("inserted", report.Inserted).Int("updated", report.Updated).Msg("phase B complete")

	if err := r.phaseC(ctx, unlockedPath, lockedPath, device.ID, report); err != nil {
		return nil, fmt.Errorf("phase C (encrypt): %w", err)
	}
	r.logger.Info().Int("encrypted", report.Encrypted).Int("encryption_errors", report.EncryptionErrors).Msg("phase C complete")

	return report, nil
}

// phaseA walks the unlocked tree and partitions it into insert/update
// relative-path sets against the store's known mtimes. Removal of a local
// file is observed but not acted upon (non-goal: no automatic deletion).
func (r *Reconciler) phaseA(ctx context.Context, unlockedPath string, deviceID int64) (insert, update []string, local map[string]domain.FsMeta, err error) {
	local, err = fswalk.Walk(unlockedPath)
	if err != nil {
		return nil, nil, nil, err
	}

	known, err := r.fileDevices.PathsWithMtime(ctx, deviceID)
	if err != nil {
		return nil, nil, nil, err
	}

	for p, meta := range local {
		knownMtime, ok := known[p]
		localMtime := domain.MtimeToEpochSeconds(meta.ModTime)
		switch {
		case !ok:
			insert = append(insert, p)
		case localMtime > knownMtime:
			update = append(update, p)
		}
	}
	return insert, update, local, nil
}

type hashUnit struct {
	relativePath string
	digest       string
}

// phaseB hashes every path in insert∪update via the fabric, then persists
// File and FileDevice rows for whichever units succeeded. A hash failure is
// logged and the path is left untouched, so it resurfaces as insert/update
// on the next sync.
func (r *Reconciler) phaseB(ctx context.Context, unlockedPath string, deviceID int64, insert, update []string, local map[string]domain.FsMeta, report *Report) error {
	all := make([]string, 0, len(insert)+len(update))
	all = append(all, insert...)
	all = append(all, update...)
	if len(all) == 0 {
		return nil
	}

	units := make([]fabric.Unit[string], 0, len(all))
	for _, p := range all {
		p := p
		units = append(units, fabric.Unit[string]{
			Key: p,
			Run: func() (string, error) {
				absPath := filepath.Join(unlockedPath, p)
				cacheKey := cache.Key(p, local[p].Size, local[p].ModTime.UnixNano())
				if digest, err := r.hashCache.Lookup(ctx, cacheKey); err == nil {
					return digest, nil
				}
				digest, err := vcrypto.HashFile(absPath)
				if err != nil {
					return "", err
				}
				_ = r.hashCache.Store(ctx, cacheKey, digest)
				return digest, nil
			},
		})
	}
	results := fabric.RunAll(units)

	hashed := make(map[string]string, len(results))
	for key, res := range results {
		if res.Err != nil {
			r.logger.Error().Err(res.Err).Str("path", key).Msg("hash failed, deferring to next sync")
			continue
		}
		hashed[key] = res.Value
	}

	if err := r.persistInserts(ctx, unlockedPath, deviceID, insert, local, hashed, report); err != nil {
		return err
	}
	return r.persistUpdates(ctx, deviceID, update, local, hashed, report)
}

func (r *Reconciler) persistInserts(ctx context.Context, unlockedPath string, deviceID int64, insert []string, local map[string]domain.FsMeta, hashed map[string]string, report *Report) error {
	var fileBatch repository.FileBatch
	var paths []string
	for _, p := range insert {
		digest, ok := hashed[p]
		if !ok {
			continue
		}
		key, nonce, err := vcrypto.GenerateKeyNonce()
		if err != nil {
			return fmt.Errorf("generate key/nonce for %s: %w", p, err)
		}
		f, err := domain.NewFile(p, digest, local[p].Size, key, nonce)
		if err != nil {
			return fmt.Errorf("build file record for %s: %w", p, err)
		}
		fileBatch = append(fileBatch, f)
		paths = append(paths, p)
	}
	if len(fileBatch) == 0 {
		return nil
	}
	if err := r.files.InsertBatch(ctx, fileBatch); err != nil {
		return err
	}

	var fdBatch repository.FileDeviceBatch
	for i, f := range fileBatch {
		p := paths[i]
		fdBatch = append(fdBatch, domain.NewFileDevice(f.ID, deviceID, true, false, domain.MtimeToEpochSeconds(local[p].ModTime)))
	}
	if err := r.fileDevices.InsertBatch(ctx, fdBatch); err != nil {
		return err
	}
	report.Inserted = len(fileBatch)
	return nil
}

func (r *Reconciler) persistUpdates(ctx context.Context, deviceID int64, update []string, local map[string]domain.FsMeta, hashed map[string]string, report *Report) error {
	toUpdate := make([]string, 0, len(update))
	for _, p := range update {
		if _, ok := hashed[p]; ok {
			toUpdate = append(toUpdate, p)
		}
	}
	if len(toUpdate) == 0 {
		return nil
	}

	existing, err := r.files.FindByPaths(ctx, toUpdate)
	if err != nil {
		return err
	}

	var fileBatch repository.FileBatch
	var fdBatch repository.FileDeviceBatch
	for _, p := range toUpdate {
		f, ok := existing[p]
		if !ok {
			continue
		}
		f.ContentsHash = hashed[p]
		fileBatch = append(fileBatch, f)
		// Content changed: any existing ciphertext is stale until re-encrypted
		// (state machine, SPEC_FULL.md §4.7).
		fdBatch = append(fdBatch, domain.NewFileDevice(f.ID, deviceID, true, false, domain.MtimeToEpochSeconds(local[p].ModTime)))
	}
	if len(fileBatch) == 0 {
		return nil
	}
	if err := r.files.UpdateBatch(ctx, fileBatch); err != nil {
		return err
	}
	if err := r.fileDevices.UpdateBatch(ctx, fdBatch); err != nil {
		return err
	}
	report.Updated = len(fileBatch)
	return nil
}

// phaseC encrypts every file lacking ciphertext for this device.
func (r *Reconciler) phaseC(ctx context.Context, unlockedPath, lockedPath string, deviceID int64, report *Report) error {
	needing, err := r.fileDevices.FilesNeedingEncryption(ctx, deviceID)
	if err != nil {
		return err
	}
	if len(needing) == 0 {
		return nil
	}

	byKey := make(map[string]*domain.File, len(needing))
	units := make([]fabric.Unit[struct{}], 0, len(needing))
	for _, f := range needing {
		f := f
		key := strconv.FormatInt(f.ID, 10)
		byKey[key] = f
		units = append(units, fabric.Unit[struct{}]{
			Key: key,
			Run: func() (struct{}, error) {
				unlocked := filepath.Join(unlockedPath, f.RelativePath)
				locked := filepath.Join(lockedPath, f.RandomHash)
				return struct{}{}, vcrypto.EncryptFile(unlocked, locked, f.Key, f.Nonce)
			},
		})
	}

	results := fabric.RunAll(units)
	for key, res := range results {
		f := byKey[key]
		if res.Err != nil {
			report.EncryptionErrors++
			r.logger.Error().Err(res.Err).Str("path", f.RelativePath).Msg("encryption failed")
			continue
		}
		if err := r.fileDevices.MarkEncrypted(ctx, f.ID, deviceID); err != nil {
			return fmt.Errorf("mark %s encrypted: %w", f.RelativePath, err)
		}
		report.Encrypted++
	}
	return nil
}

// Encrypt runs only Phase C (encrypt missing ciphertexts) for the current
// device, without re-indexing or re-hashing the unlocked tree first — the
// `encrypt` CLI verb, distinct from the full `sync` verb which always runs
// all three phases.
func (r *Reconciler) Encrypt(ctx context.Context, unlockedPath, lockedPath string) (*Report, error) {
	device, err := r.devices.FindOrCreateCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve current device: %w", err)
	}
	report := &Report{}
	if err := r.phaseC(ctx, unlockedPath, lockedPath, device.ID, report); err != nil {
		return nil, fmt.Errorf("encrypt: %w", err)
	}
	return report, nil
}

// Check performs the read-only integrity comparison between ciphertext
// filenames under lockedPath and random_hash values known to the store.
func (r *Reconciler) Check(ctx context.Context, lockedPath string) (*CheckReport, error) {
	entries, err := os.ReadDir(lockedPath)
	if err != nil {
		return nil, verrors.NewIoError(lockedPath, err)
	}
	onDisk := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		onDisk[e.Name()] = struct{}{}
	}

	known, err := r.files.AllRandomHashes(ctx)
	if err != nil {
		return nil, err
	}

	report := &CheckReport{}
	for name := range onDisk {
		if _, ok := known[name]; !ok {
			report.ExtraCiphertexts = append(report.ExtraCiphertexts, name)
		}
	}
	for hash := range known {
		if _, ok := onDisk[hash]; !ok {
			report.MissingCiphertexts = append(report.MissingCiphertexts, hash)
		}
	}
	return report, nil
}
