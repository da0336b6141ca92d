package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"patternfs/internal/scan"
	"patternfs/internal/storage"
	"patternfs/internal/tree"
)

// treeSource selects where a command gets its tree from. Exactly one of
// the flags may be set; none means the sample tree.
type treeSource struct {
	sample   bool
	dir      string
	snapshot string
}

func (s *treeSource) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&s.sample, "sample", false, "Use the built-in sample tree (default)")
	cmd.Flags().StringVarP(&s.dir, "dir", "d", "", "Import the tree from a directory")
	cmd.Flags().StringVarP(&s.snapshot, "snapshot", "s", "", "Load the tree from a saved snapshot (id or tag)")
	cmd.MarkFlagsMutuallyExclusive("sample", "dir", "snapshot")
}

func (s *treeSource) load(ctx context.Context) (*tree.Container, error) {
	switch {
	case s.dir != "":
		return importDir(s.dir)
	case s.snapshot != "":
		store, err := openStore()
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx, s.snapshot)
	default:
		return tree.SampleFileSystem(), nil
	}
}

func importDir(dir string) (*tree.Container, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path: %w", err)
	}
	opts := scan.OptionsFromSettings(settings.Import)
	if base := filepath.Base(absDir); base != string(filepath.Separator) {
		opts.RootName = base
	}
	return scan.Import(osfs.New(absDir), "/", opts)
}

func openStore() (*storage.Store, error) {
	store, err := storage.OpenWithTimeout(settings.StorePath(), settings.Store.BusyTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return store, nil
}
