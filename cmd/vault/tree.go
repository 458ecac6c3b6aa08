package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/prn-tf/vault/internal/pathtree"
)

func newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the logical directory hierarchy of tracked files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			pathSet, err := a.files.AllPaths(cmd.Context())
			if err != nil {
				return err
			}
			paths := make([]string, 0, len(pathSet))
			for p := range pathSet {
				paths = append(paths, p)
			}

			tree := pathtree.New(paths)
			for _, e := range tree.Walk() {
				depth := strings.Count(e.Path, "/")
				name := e.Path
				if idx := strings.LastIndex(e.Path, "/"); idx >= 0 {
					name = e.Path[idx+1:]
				}
				suffix := ""
				if e.IsDir {
					suffix = "/"
				}
				fmt.Printf("%s%s%s\n", strings.Repeat("  ", depth), name, suffix)
			}
			return nil
		},
	}
}
