package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print file counts and a one-shot metrics summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			paths, err := a.files.AllPaths(ctx)
			if err != nil {
				return err
			}
			device, err := a.devices.FindOrCreateCurrent(ctx)
			if err != nil {
				return err
			}
			needing, err := a.fileDevices.FilesNeedingEncryption(ctx, device.ID)
			if err != nil {
				return err
			}

			fmt.Printf("device: %s\n", device.PlatformID)
			fmt.Printf("files tracked: %d\n", len(paths))
			fmt.Printf("files pending encryption: %d\n", len(needing))

			summary, err := a.metrics.Summary()
			if err != nil {
				return err
			}
			fmt.Print(summary)
			return nil
		},
	}
}
