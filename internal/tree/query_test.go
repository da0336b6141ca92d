package tree

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalkOrderAndPaths(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	docs := newDir(t, "docs")
	require.NoError(t, root.Add(docs))
	require.NoError(t, docs.Add(newFile(t, "b.txt", 1)))
	require.NoError(t, root.Add(newFile(t, "a.txt", 1)))

	var paths []string
	require.NoError(t, Walk(root, func(p string, n Node) error {
		paths = append(paths, p)
		return nil
	}))
	assert.Equal(t, []string{"/", "/docs", "/docs/b.txt", "/a.txt"}, paths)

	stop := errors.New("stop")
	visited := 0
	err := Walk(root, func(string, Node) error {
		visited++
		if visited == 2 {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)

	assert.NoError(t, Walk(nil, func(string, Node) error { return stop }))
}

func TestFindByPath(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()

	tests := []struct {
		path  string
		found string
	}{
		{"/", "root"},
		{"", "root"},
		{"/documents", "documents"},
		{"/documents/work/annual_report.pdf", "annual_report.pdf"},
		{"documents/personal/", "personal"},
		{"/nonexistent", ""},
		{"/documents/README.md/child", ""},
	}

	for _, tt := range tests {
		n := FindByPath(root, tt.path)
		if tt.found == "" {
			assert.Nil(t, n, "FindByPath(%q)", tt.path)
			continue
		}
		require.NotNil(t, n, "FindByPath(%q)", tt.path)
		assert.Equal(t, tt.found, n.Name())
	}

	assert.Nil(t, FindByPath(nil, "/"))
}

func TestFlattenAndCount(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()
	flat := Flatten(root)
	assert.Len(t, flat, 16)
	assert.Equal(t, 16, CountNodes(root))
	for _, p := range []string{"/", "/documents/config.json", "/applications/test/main_test.go"} {
		assert.Contains(t, flat, p)
	}
	assert.Empty(t, Flatten(nil))
	assert.Zero(t, CountNodes(nil))
}

func TestPathOf(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()
	n := FindByPath(root, "/applications/src/main.go")
	require.NotNil(t, n)
	assert.Equal(t, "/applications/src/main.go", PathOf(n))
	assert.Equal(t, "/", PathOf(root))
	assert.Equal(t, "", PathOf(nil))
}

func TestCounts(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()
	assert.Equal(t, 2, root.ItemCount())
	assert.Equal(t, 9, root.FileCount())
	assert.Equal(t, 6, root.DirectoryCount())
}

func TestLargestFile(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()
	largest := LargestFile(root)
	require.NotNil(t, largest)
	assert.Equal(t, "vacation_photo.jpg", largest.Name())

	leaf := newFile(t, "solo", 0)
	assert.Same(t, leaf, LargestFile(leaf))

	empty := newDir(t, "empty")
	assert.Nil(t, LargestFile(empty))

	// Zero-sized leaves are never picked from a container.
	require.NoError(t, empty.Add(newFile(t, "zero", 0)))
	assert.Nil(t, LargestFile(empty))

	// First wins on ties.
	tie := newDir(t, "tie")
	first := newFile(t, "first", 5)
	require.NoError(t, tie.Add(first))
	require.NoError(t, tie.Add(newFile(t, "second", 5)))
	assert.Same(t, first, LargestFile(tie))
}

func TestFormatSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{2048576, "2.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "FormatSize(%d)", tt.bytes)
	}
}

func TestStatsAndReports(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()
	s := Stats(root)
	assert.Equal(t, Statistics{
		Name:        "root",
		Permissions: DefaultDirPermissions,
		TotalSize:   6249280,
		Items:       2,
		Files:       9,
		Directories: 6,
	}, s)

	var buf bytes.Buffer
	require.NoError(t, WriteStatistics(&buf, root))
	assert.Contains(t, buf.String(), "Type: Directory\n")
	assert.Contains(t, buf.String(), "Total Size: 6.0 MB\n")
	assert.Contains(t, buf.String(), "Directories: 6\n")

	buf.Reset()
	leaf := FindByPath(root, "/documents/README.md")
	require.NoError(t, WriteStatistics(&buf, leaf))
	assert.Contains(t, buf.String(), "Type: File\nSize: 1.0 KB\n")

	buf.Reset()
	require.NoError(t, WriteSearchResults(&buf, root, "java"))
	assert.Contains(t, buf.String(), "No components found matching the pattern.")

	buf.Reset()
	require.NoError(t, WriteSearchResults(&buf, root, "report"))
	assert.Contains(t, buf.String(), "Found 1 component(s):\n  📄 File: annual_report.pdf (2.0 MB)\n")

	buf.Reset()
	require.NoError(t, WriteTree(&buf, root))
	assert.Contains(t, buf.String(), "📂 File System Structure:")
	assert.Contains(t, buf.String(), "📁 root (6.0 MB) [rwxr-xr-x]\n  📁 applications")

	assert.Error(t, WriteStatistics(failingWriter{}, root))
}
