package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt every file currently lacking ciphertext for this device",
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
				report, err := a.reconciler.Encrypt(ctx, unlocked, locked)
				if err != nil {
					return err
				}
				a.metrics.RecordSync(0, 0, report.Encrypted, report.EncryptionErrors)
				fmt.Printf("encrypted=%d encryption_errors=%d\n", report.Encrypted, report.EncryptionErrors)
				return nil
			})
		},
	}
}
