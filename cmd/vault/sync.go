package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the unlocked tree, metadata store, and locked tree",
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
				report, err := a.reconciler.Sync(ctx, unlocked, locked)
				if err != nil {
					return err
				}
				a.metrics.RecordSync(report.Inserted, report.Updated, report.Encrypted, report.EncryptionErrors)
				fmt.Printf("inserted=%d updated=%d encrypted=%d encryption_errors=%d\n",
					report.Inserted, report.Updated, report.Encrypted, report.EncryptionErrors)
				return nil
			})
		},
	}
}
