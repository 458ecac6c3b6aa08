package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <query>",
		Short: "List tracked relative paths containing query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			query := args[0]
			paths, err := a.files.AllPaths(cmd.Context())
			if err != nil {
				return err
			}

			var matches []string
			for p := range paths {
				if strings.Contains(p, query) {
					matches = append(matches, p)
				}
			}
			sort.Strings(matches)
			for _, p := range matches {
				fmt.Println(p)
			}
			return nil
		},
	}
}
