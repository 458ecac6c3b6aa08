package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Copy an external file into the unlocked tree and sync it",
		Args:  cobra.ExactArgs(1),
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

			src := args[0]
			destDir := unlocked
			if prefix != "" {
				destDir = filepath.Join(unlocked, prefix)
			}
			dest := filepath.Join(destDir, filepath.Base(src))

			return a.withRunLock(ctx, func() error {
				if err := copyFile(src, dest); err != nil {
					return err
				}
				locked, unlocked, err := a.resolvePaths(ctx)
				if err != nil {
					return err
				}
				report, err := a.reconciler.Sync(ctx, unlocked, locked)
				if err != nil {
					return err
				}
				a.metrics.RecordSync(report.Inserted, report.Updated, report.Encrypted, report.EncryptionErrors)
				fmt.Printf("added %s\n", dest)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&prefix, "prefix", "", "virtual directory prefix under the unlocked root")
	return cmd
}

func copyFile(src, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
