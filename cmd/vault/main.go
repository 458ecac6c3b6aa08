package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vault",
		Short:         "A personal content-addressed encrypted archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("database-file", "", "path to the metadata store (overrides DATABASE_FILE / krypta.toml)")
	root.PersistentFlags().String("config", "", "path to krypta.toml (defaults to the working directory)")
	root.PersistentFlags().String("locked-path", "", "override the locked-path default for this invocation")
	root.PersistentFlags().String("unlocked-path", "", "override the unlocked-path default for this invocation")

	root.AddCommand(
		newInitCmd(),
		newSyncCmd(),
		newStatusCmd(),
		newAddCmd(),
		newEncryptCmd(),
		newUnlockStructureCmd(),
		newUnlockCmd(),
		newFindCmd(),
		newTreeCmd(),
		newCheckCmd(),
		newSetLockedCmd(),
		newSetUnlockedCmd(),
	)
	return root
}
