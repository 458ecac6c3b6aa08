package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSetLockedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-locked <path>",
		Short: "Set the locked_path for the current device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			return a.withRunLock(ctx, func() error {
				device, err := a.devices.FindOrCreateCurrent(ctx)
				if err != nil {
					return err
				}
				if err := a.deviceCfgs.SetLockedPath(ctx, device.ID, args[0]); err != nil {
					return err
				}
				fmt.Printf("locked_path set to %s\n", args[0])
				return nil
			})
		},
	}
}

func newSetUnlockedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-unlocked <path>",
		Short: "Set the unlocked_path for the current device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			return a.withRunLock(ctx, func() error {
				device, err := a.devices.FindOrCreateCurrent(ctx)
				if err != nil {
					return err
				}
				if err := a.deviceCfgs.SetUnlockedPath(ctx, device.ID, args[0]); err != nil {
					return err
				}
				fmt.Printf("unlocked_path set to %s\n", args[0])
				return nil
			})
		},
	}
}
