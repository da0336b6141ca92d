package scan

import (
	"io"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternfs/internal/common"
	"patternfs/internal/tree"
)

func newProject(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	require.NoError(t, fs.MkdirAll("/project/src", 0755))
	require.NoError(t, fs.MkdirAll("/project/build", 0755))
	require.NoError(t, fs.MkdirAll("/project/.git", 0755))
	require.NoError(t, util.WriteFile(fs, "/project/README.md", []byte("# hello"), 0644))
	require.NoError(t, util.WriteFile(fs, "/project/run.sh", []byte("#!/bin/sh\n"), 0755))
	require.NoError(t, util.WriteFile(fs, "/project/src/main.go", []byte("package main\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "/project/src/debug.log", []byte("noise"), 0644))
	require.NoError(t, util.WriteFile(fs, "/project/build/out.bin", []byte(strings.Repeat("x", 100)), 0644))
	require.NoError(t, util.WriteFile(fs, "/project/.git/HEAD", []byte("ref: main"), 0644))
	require.NoError(t, util.WriteFile(fs, "/project/.gitignore", []byte("build/\n"), 0644))
	require.NoError(t, util.WriteFile(fs, "/project/src/.gitignore", []byte("*.log\n"), 0644))
	return fs
}

func TestImportBuildsTree(t *testing.T) {
	t.Parallel()
	fs := newProject(t)

	root, err := Import(fs, "/project", Options{MaxContentBytes: 1024})
	require.NoError(t, err)

	assert.Equal(t, "project", root.Name())
	assert.Equal(t, "rwxr-xr-x", root.Permissions())

	readme := tree.FindByPath(root, "/README.md")
	require.NotNil(t, readme)
	leaf := readme.(*tree.Leaf)
	assert.Equal(t, "md", leaf.Extension())
	assert.Equal(t, "# hello", leaf.Content())
	assert.Equal(t, int64(7), leaf.Size())
	assert.Equal(t, "rw-r--r--", leaf.Permissions())

	run := tree.FindByPath(root, "/run.sh")
	require.NotNil(t, run)
	assert.Equal(t, "rwxr-xr-x", run.Permissions())

	// Without filtering everything is imported.
	assert.NotNil(t, tree.FindByPath(root, "/build/out.bin"))
	assert.NotNil(t, tree.FindByPath(root, "/.git/HEAD"))
	assert.Equal(t, root.TotalSize(), root.Size())
}

func TestImportLogsNothingUnconfigured(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "/d/a.txt", []byte("hi"), 0644))

	_, err := Import(fs, "/d", Options{MaxContentBytes: 10})
	require.NoError(t, err)
	assert.Equal(t, io.Discard, log.StandardLogger().Out)
}

func TestImportChildOrderIsSorted(t *testing.T) {
	t.Parallel()
	fs := newProject(t)

	root, err := Import(fs, "/project", Options{})
	require.NoError(t, err)
	children, err := root.Children()
	require.NoError(t, err)

	var names []string
	for _, c := range children {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{".git", ".gitignore", "README.md", "build", "run.sh", "src"}, names)
}

func TestImportGitignoreAndExcludes(t *testing.T) {
	t.Parallel()
	fs := newProject(t)

	root, err := Import(fs, "/project", Options{
		Gitignore: true,
		Excludes:  []string{".git"},
	})
	require.NoError(t, err)

	assert.Nil(t, tree.FindByPath(root, "/build"), "root .gitignore excludes build/")
	assert.Nil(t, tree.FindByPath(root, "/src/debug.log"), "nested .gitignore excludes *.log")
	assert.Nil(t, tree.FindByPath(root, "/.git"))
	assert.NotNil(t, tree.FindByPath(root, "/src/main.go"))
}

func TestImportIncludesOverrideGitignore(t *testing.T) {
	t.Parallel()
	fs := newProject(t)

	root, err := Import(fs, "/project", Options{
		Gitignore: true,
		Includes:  []string{"build"},
	})
	require.NoError(t, err)

	out := tree.FindByPath(root, "/build/out.bin")
	require.NotNil(t, out)
	assert.Equal(t, int64(100), out.Size())
	assert.Empty(t, out.(*tree.Leaf).Content(), "content above MaxContentBytes is not loaded")
}

func TestImportErrors(t *testing.T) {
	t.Parallel()
	fs := newProject(t)

	_, err := Import(fs, "/missing", Options{})
	assert.Error(t, err)

	_, err = Import(fs, "/project/README.md", Options{})
	assert.ErrorIs(t, err, common.ErrNotDir)
}

func TestImportRootName(t *testing.T) {
	t.Parallel()
	fs := newProject(t)

	root, err := Import(fs, "/", Options{})
	require.NoError(t, err)
	assert.Equal(t, "root", root.Name())

	root, err = Import(fs, "/project/src", Options{RootName: "code"})
	require.NoError(t, err)
	assert.Equal(t, "code", root.Name())
}

func TestFilter(t *testing.T) {
	t.Parallel()

	f := NewFilter(true, []string{"vendor/keep/"}, []string{" tmp "})
	f.AddGitignore("", []byte("vendor/\n*.o\n"))
	f.AddGitignore("lib", []byte("gen/\n"))

	tests := []struct {
		path  string
		isDir bool
		want  bool
	}{
		{"main.go", false, true},
		{"main.o", false, false},
		{"tmp", true, false},
		{"tmp/a.txt", false, false},
		{"vendor", true, false},
		{"vendor/keep", true, true},
		{"vendor/keep/x.go", false, true},
		{"lib/gen", true, false},
		{"gen", true, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Allow(tt.path, tt.isDir), tt.path)
	}
}

func TestFilterGitignoreDisabled(t *testing.T) {
	t.Parallel()
	f := NewFilter(false, nil, nil)
	f.AddGitignore("", []byte("*\n"))
	assert.True(t, f.Allow("anything", false))
}

func TestExtension(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "go", Extension("main.go"))
	assert.Equal(t, "gz", Extension("archive.tar.gz"))
	assert.Equal(t, "", Extension("Makefile"))
}
