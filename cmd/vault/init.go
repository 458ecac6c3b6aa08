package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Initialize the vault's unlocked path (and metadata store)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			path := "."
			if len(args) == 1 {
				path = args[0]
			}
			if err := os.MkdirAll(path, 0o755); err != nil {
				return err
			}

			ctx := cmd.Context()
			return a.withRunLock(ctx, func() error {
				device, err := a.devices.FindOrCreateCurrent(ctx)
				if err != nil {
					return err
				}
				if err := a.deviceCfgs.SetUnlockedPath(ctx, device.ID, path); err != nil {
					return err
				}
				a.logger.Info().Str("unlocked_path", path).Msg("vault initialized")
				return nil
			})
		},
	}
}
