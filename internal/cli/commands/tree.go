// Copyright 2024 PatternFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"patternfs/internal/tree"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display and query a file tree",
	Long: `Display and query a file tree.

The tree comes from the built-in sample (default), a directory (--dir) or a
saved snapshot (--snapshot).

Subcommands:
  show      Print the tree
  stats     Print size and item counts
  search    Find nodes whose name contains a pattern
  largest   Show the largest file

Examples:
  patternfs tree show
  patternfs tree stats --dir ~/projects/app
  patternfs tree search report
  patternfs tree largest --snapshot v1`,
}

var (
	showSource    treeSource
	statsSource   treeSource
	searchSource  treeSource
	largestSource treeSource
	showPath      string
)

var treeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := showSource.load(cmd.Context())
		if err != nil {
			return err
		}
		var n tree.Node = root
		if showPath != "" {
			if n = tree.FindByPath(root, showPath); n == nil {
				return fmt.Errorf("path not found: %s", showPath)
			}
		}
		return tree.WriteTree(cmd.OutOrStdout(), n)
	},
}

var treeStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print size and item counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := statsSource.load(cmd.Context())
		if err != nil {
			return err
		}
		return tree.WriteStatistics(cmd.OutOrStdout(), root)
	},
}

var treeSearchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Find nodes whose name contains a pattern (case-insensitive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := searchSource.load(cmd.Context())
		if err != nil {
			return err
		}
		return tree.WriteSearchResults(cmd.OutOrStdout(), root, args[0])
	},
}

var treeLargestCmd = &cobra.Command{
	Use:   "largest",
	Short: "Show the largest file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := largestSource.load(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		largest := tree.LargestFile(root)
		if largest == nil {
			fmt.Fprintln(out, "No files found.")
			return nil
		}
		fmt.Fprintln(out, "📄 Largest File:")
		fmt.Fprintln(out, "================")
		fmt.Fprintf(out, "Name: %s\n", largest.Name())
		fmt.Fprintf(out, "Path: %s\n", tree.PathOf(largest))
		fmt.Fprintf(out, "Size: %s\n", tree.FormatSize(largest.Size()))
		fmt.Fprintf(out, "Extension: %s\n", largest.Extension())
		fmt.Fprintf(out, "\n💾 Total Disk Usage: %s\n", tree.FormatSize(root.TotalSize()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	showSource.register(treeShowCmd)
	treeShowCmd.Flags().StringVarP(&showPath, "path", "p", "", "Only print the subtree at this path")
	treeCmd.AddCommand(treeShowCmd)

	statsSource.register(treeStatsCmd)
	treeCmd.AddCommand(treeStatsCmd)

	searchSource.register(treeSearchCmd)
	treeCmd.AddCommand(treeSearchCmd)

	largestSource.register(treeLargestCmd)
	treeCmd.AddCommand(treeLargestCmd)
}
