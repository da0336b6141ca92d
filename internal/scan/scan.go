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

// Package scan builds component trees from real directories.
package scan

import (
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	log "github.com/sirupsen/logrus"

	"patternfs/internal/common"
	"patternfs/internal/config"
	"patternfs/internal/tree"
)

// Options controls an import.
type Options struct {
	// RootName names the root container. Defaults to the base name of the
	// imported directory, or "root" when that is the filesystem root.
	RootName string
	// Gitignore enables .gitignore filtering.
	Gitignore bool
	Includes  []string
	Excludes  []string
	// MaxContentBytes is the largest file whose content is loaded into its
	// leaf. Larger files keep their size but no content. Zero disables
	// content loading.
	MaxContentBytes int64
}

// OptionsFromSettings maps the import section of settings.yaml.
func OptionsFromSettings(s config.ImportSettings) Options {
	return Options{
		Gitignore:       s.GitignoreEnabled(),
		Includes:        s.Includes,
		Excludes:        s.Excludes,
		MaxContentBytes: s.MaxContentBytes,
	}
}

// Import walks dir on fs and returns it as a tree. Children are added in
// name order so repeated imports produce the same tree.
func Import(fs billy.Filesystem, dir string, opts Options) (*tree.Container, error) {
	dir = "/" + common.NormalizePath(dir)
	info, err := fs.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, common.ErrNotDir)
	}

	name := opts.RootName
	if name == "" {
		name = path.Base(dir)
		if name == "/" || name == "." {
			name = "root"
		}
	}
	root, err := tree.NewContainer(name, common.PermString(info.Mode()))
	if err != nil {
		return nil, err
	}

	im := &importer{
		fs:     fs,
		base:   dir,
		opts:   opts,
		filter: NewFilter(opts.Gitignore, opts.Includes, opts.Excludes),
	}
	if err := im.fill(root, ""); err != nil {
		return nil, err
	}
	log.Infof("[IMPORT] %s: %d files, %d directories, %s", dir, im.files, im.dirs, tree.FormatSize(root.Size()))
	return root, nil
}

type importer struct {
	fs     billy.Filesystem
	base   string
	opts   Options
	filter *Filter

	files int
	dirs  int
}

func (im *importer) fill(parent *tree.Container, rel string) error {
	abs := path.Join(im.base, rel)

	if im.opts.Gitignore {
		if data, err := util.ReadFile(im.fs, path.Join(abs, ".gitignore")); err == nil {
			im.filter.AddGitignore(rel, data)
		}
	}

	entries, err := im.fs.ReadDir(abs)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", abs, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, fi := range entries {
		childRel := path.Join(rel, fi.Name())
		if !im.filter.Allow(childRel, fi.IsDir()) {
			log.Tracef("[IMPORT] skip %s", childRel)
			continue
		}

		switch {
		case fi.IsDir():
			c, err := tree.NewContainer(fi.Name(), common.PermString(fi.Mode()))
			if err != nil {
				log.Warnf("[IMPORT] skip %s: %v", childRel, err)
				continue
			}
			if err := im.fill(c, childRel); err != nil {
				return err
			}
			if err := parent.Add(c); err != nil {
				return err
			}
			im.dirs++
		case fi.Mode().IsRegular():
			leaf, err := im.leaf(childRel, fi)
			if err != nil {
				return err
			}
			if err := parent.Add(leaf); err != nil {
				return err
			}
			im.files++
		default:
			log.Debugf("[IMPORT] skip non-regular %s (%s)", childRel, fi.Mode().Type())
		}
	}
	return nil
}

func (im *importer) leaf(rel string, fi os.FileInfo) (*tree.Leaf, error) {
	var content string
	size := fi.Size()
	if size > 0 && size <= im.opts.MaxContentBytes {
		data, err := util.ReadFile(im.fs, path.Join(im.base, rel))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", rel, err)
		}
		content = string(data)
		size = int64(len(data))
	}
	return tree.NewLeaf(fi.Name(), size, common.PermString(fi.Mode()), Extension(fi.Name()), content)
}

// Extension returns the file extension without the leading dot.
func Extension(name string) string {
	return strings.TrimPrefix(path.Ext(name), ".")
}
