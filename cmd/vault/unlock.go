package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/prn-tf/vault/internal/domain"
	"github.com/prn-tf/vault/internal/fabric"
	"github.com/prn-tf/vault/internal/pathtree"
	"github.com/prn-tf/vault/internal/vcrypto"
)

// newUnlockStructureCmd creates every directory the vault's logical tree
// implies under unlocked_path, without materializing any plaintext — a
// way to browse the hierarchy before deciding which files to fully
// unlock (§4.8's path tree, §4.7's "explicit unlock/lock operation not
// covered by sync").
func newUnlockStructureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock-structure",
		Short: "Recreate the directory hierarchy under unlocked_path without materializing file contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			_, unlocked, err := a.resolvePaths(ctx)
			if err != nil {
				return err
			}

			return a.withRunLock(ctx, func() error {
				pathSet, err := a.files.AllPaths(ctx)
				if err != nil {
					return err
				}
				paths := make([]string, 0, len(pathSet))
				for p := range pathSet {
					paths = append(paths, p)
				}
				tree := pathtree.New(paths)
				for _, dir := range tree.Directories() {
					if err := os.MkdirAll(filepath.Join(unlocked, dir), 0o755); err != nil {
						return err
					}
				}
				fmt.Printf("created %d directories\n", len(tree.Directories()))
				return nil
			})
		},
	}
}

// newUnlockCmd decrypts every known File's ciphertext into unlocked_path,
// materializing plaintext for a device that has the locked path but not
// (yet, or any longer) the unlocked contents — the inverse of encrypt,
// reaching the (u=T, e=T) state directly from (u=F, e=T) per the §4.7
// state machine.
func newUnlockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlock",
		Short: "Decrypt every known file from locked_path into unlocked_path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			locked, unlocked, err := a.resolvePaths(ctx)
			if err != nil {
				return err
			}

			return a.withRunLock(ctx, func() error {
				files, err := a.files.All(ctx)
				if err != nil {
					return err
				}
				device, err := a.devices.FindOrCreateCurrent(ctx)
				if err != nil {
					return err
				}

				byKey := make(map[string]*domain.File, len(files))
				units := make([]fabric.Unit[struct{}], 0, len(files))
				for _, f := range files {
					f := f
					key := f.RandomHash
					byKey[key] = f
					units = append(units, fabric.Unit[struct{}]{
						Key: key,
						Run: func() (struct{}, error) {
							dest := filepath.Join(unlocked, f.RelativePath)
							if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
								return struct{}{}, err
							}
							src := filepath.Join(locked, f.RandomHash)
							return struct{}{}, vcrypto.DecryptFile(src, dest, f.Key, f.Nonce)
						},
					})
				}

				results := fabric.RunAll(units)
				var unlockedCount, failed int
				for key, res := range results {
					f := byKey[key]
					if res.Err != nil {
						failed++
						a.logger.Error().Err(res.Err).Str("path", f.RelativePath).Msg("decryption failed")
						continue
					}
					fd := domain.NewFileDevice(f.ID, device.ID, true, true, domain.MtimeToEpochSeconds(time.Now()))
					if err := a.fileDevices.Upsert(ctx, fd); err != nil {
						return err
					}
					unlockedCount++
				}
				fmt.Printf("unlocked=%d failed=%d\n", unlockedCount, failed)
				return nil
			})
		},
	}
}
