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
	"io"

	"github.com/spf13/cobra"

	"patternfs/internal/storage"
	"patternfs/internal/tree"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage saved trees",
	Long: `Save trees to the snapshot database and load them back.

The database lives at store.path in settings.yaml (relative paths resolve
against the config directory).

Subcommands:
  save     Save a tree as a new snapshot
  list     List all snapshots
  show     Print a saved tree
  delete   Delete a snapshot

Examples:
  # Save a directory with a tag
  patternfs snapshot save --dir ~/projects/app -n "before refactor" -t v1

  # List snapshots
  patternfs snapshot list

  # Print a snapshot by tag or id
  patternfs snapshot show v1`,
}

var (
	saveSource treeSource
	saveName   string
	saveTag    string
)

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a tree as a new snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := saveSource.load(cmd.Context())
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snap, err := store.Save(cmd.Context(), saveName, root, storage.SaveOptions{Tag: saveTag})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved snapshot %s (%d files, %s)\n",
			snap.ID, snap.FileCount, tree.FormatSize(snap.TotalSize))
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		snaps, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No snapshots")
			return nil
		}
		printSnapshotList(cmd.OutOrStdout(), snaps)
		return nil
	},
}

// printSnapshotList prints snapshots in git-log style.
func printSnapshotList(out io.Writer, snaps []storage.SnapshotModel) {
	for _, s := range snaps {
		fmt.Fprintf(out, "snapshot %s", s.ID)
		if s.Tag != "" {
			fmt.Fprintf(out, " (tag: %s)", s.Tag)
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "Date:   %s\n", s.Created().Format("Mon Jan 2 15:04:05 2006"))
		fmt.Fprintf(out, "Root:   %s (%d files, %d directories, %s)\n",
			s.RootName, s.FileCount, s.DirCount, tree.FormatSize(s.TotalSize))
		fmt.Fprintf(out, "\n    %s\n\n", s.Name)
	}
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id|tag>",
	Short: "Print a saved tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		root, err := store.Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return tree.WriteTree(cmd.OutOrStdout(), root)
	},
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id|tag>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(snapshotCmd)

	saveSource.register(snapshotSaveCmd)
	snapshotSaveCmd.Flags().StringVarP(&saveName, "name", "n", "", "Snapshot name (default: root name)")
	snapshotSaveCmd.Flags().StringVarP(&saveTag, "tag", "t", "", "Snapshot tag (must be unique)")
	snapshotCmd.AddCommand(snapshotSaveCmd)

	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
}
