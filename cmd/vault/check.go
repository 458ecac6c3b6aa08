package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report inconsistencies between locked_path and the metadata store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			locked, _, err := a.resolvePaths(ctx)
			if err != nil {
				return err
			}

			report, err := a.reconciler.Check(ctx, locked)
			if err != nil {
				return err
			}
			if report.Clean() {
				fmt.Println("check: clean")
				return nil
			}
			for _, name := range report.ExtraCiphertexts {
				fmt.Printf("extra ciphertext: %s\n", name)
			}
			for _, hash := range report.MissingCiphertexts {
				fmt.Printf("missing ciphertext: %s\n", hash)
			}
			return fmt.Errorf("check found %d inconsistencies", len(report.ExtraCiphertexts)+len(report.MissingCiphertexts))
		},
	}
}
