package tree

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patternfs/internal/common"
)

func newDir(t *testing.T, name string) *Container {
	t.Helper()
	c, err := NewContainer(name, DefaultDirPermissions)
	require.NoError(t, err)
	return c
}

func newFile(t *testing.T, name string, size int64) *Leaf {
	t.Helper()
	l, err := NewLeaf(name, size, DefaultFilePermissions, "txt", "")
	require.NoError(t, err)
	return l
}

func TestRootDocsReadmeScenario(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	docs := newDir(t, "docs")
	readme := newFile(t, "readme", 1024)

	require.NoError(t, root.Add(docs))
	require.NoError(t, docs.Add(readme))
	assert.Equal(t, int64(1024), root.TotalSize())

	require.NoError(t, docs.Add(newFile(t, "license", 512)))
	assert.Equal(t, int64(1536), docs.TotalSize())
	assert.Equal(t, int64(1536), root.TotalSize())

	results := root.Search("readme")
	require.Len(t, results, 1)
	assert.Same(t, readme, results[0])

	gotDocs, err := root.Child("docs")
	require.NoError(t, err)
	require.NotNil(t, gotDocs)
	gotReadme, err := gotDocs.Child("readme")
	require.NoError(t, err)
	require.NotNil(t, gotReadme)
	assert.True(t, gotReadme.IsLeaf())
}

func TestLeafRejectsStructuralOperations(t *testing.T) {
	t.Parallel()

	leaf := newFile(t, "a.txt", 1)
	other := newFile(t, "b.txt", 1)

	assert.ErrorIs(t, leaf.Add(other), common.ErrUnsupported)
	assert.ErrorIs(t, leaf.Remove(other), common.ErrUnsupported)

	child, err := leaf.Child("b.txt")
	assert.ErrorIs(t, err, common.ErrUnsupported)
	assert.Nil(t, child)

	children, err := leaf.Children()
	assert.ErrorIs(t, err, common.ErrUnsupported)
	assert.Nil(t, children)

	assert.Nil(t, other.Parent(), "failed add must not attach")
}

func TestConstructorsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"", common.ErrInvalidName},
		{"a/b", common.ErrInvalidName},
		{"..", common.ErrInvalidName},
	}
	for _, tt := range tests {
		_, err := NewContainer(tt.name, DefaultDirPermissions)
		assert.ErrorIs(t, err, tt.err, "container %q", tt.name)
		_, err = NewLeaf(tt.name, 0, DefaultFilePermissions, "", "")
		assert.ErrorIs(t, err, tt.err, "leaf %q", tt.name)
	}

	_, err := NewLeaf("neg", -1, DefaultFilePermissions, "", "")
	assert.Error(t, err)
}

func TestContainerChildMiss(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	require.NoError(t, root.Add(newFile(t, "Readme", 1)))

	child, err := root.Child("missing")
	assert.NoError(t, err)
	assert.Nil(t, child)

	// Lookup is exact and not recursive.
	child, err = root.Child("readme")
	assert.NoError(t, err)
	assert.Nil(t, child)
}

func TestAddOwnershipRules(t *testing.T) {
	t.Parallel()

	t.Run("nil child", func(t *testing.T) {
		t.Parallel()
		root := newDir(t, "root")
		assert.ErrorIs(t, root.Add(nil), common.ErrInvalidNode)
		var typedNil *Leaf
		assert.ErrorIs(t, root.Add(typedNil), common.ErrInvalidNode)
	})

	t.Run("duplicate sibling name", func(t *testing.T) {
		t.Parallel()
		root := newDir(t, "root")
		require.NoError(t, root.Add(newFile(t, "x", 1)))
		assert.ErrorIs(t, root.Add(newFile(t, "x", 2)), common.ErrExists)
		assert.Equal(t, int64(1), root.Size())
	})

	t.Run("same name in different containers", func(t *testing.T) {
		t.Parallel()
		a, b := newDir(t, "a"), newDir(t, "b")
		assert.NoError(t, a.Add(newFile(t, "x", 1)))
		assert.NoError(t, b.Add(newFile(t, "x", 1)))
	})

	t.Run("already attached", func(t *testing.T) {
		t.Parallel()
		a, b := newDir(t, "a"), newDir(t, "b")
		f := newFile(t, "f", 1)
		require.NoError(t, a.Add(f))
		assert.ErrorIs(t, b.Add(f), common.ErrAttached)
		assert.Same(t, a, f.Parent())
	})

	t.Run("cycles", func(t *testing.T) {
		t.Parallel()
		a, b := newDir(t, "a"), newDir(t, "b")
		require.NoError(t, a.Add(b))
		assert.ErrorIs(t, a.Add(a), common.ErrCycle)

		c := newDir(t, "c")
		require.NoError(t, b.Add(c))
		// a is detached, so only the ancestor check can reject this.
		assert.ErrorIs(t, c.Add(a), common.ErrCycle)
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	f := newFile(t, "f", 10)
	g := newFile(t, "g", 20)
	require.NoError(t, root.Add(f))
	require.NoError(t, root.Add(g))
	require.Equal(t, int64(30), root.Size())

	require.NoError(t, root.Remove(f))
	assert.Equal(t, int64(20), root.Size())
	assert.Equal(t, int64(20), root.TotalSize())
	assert.Nil(t, f.Parent())

	assert.ErrorIs(t, root.Remove(f), common.ErrNotFound)
	assert.ErrorIs(t, root.Remove(nil), common.ErrInvalidNode)

	// A removed node can be attached elsewhere.
	other := newDir(t, "other")
	assert.NoError(t, other.Add(f))
}

func TestRename(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	f := newFile(t, "f", 1)
	g := newFile(t, "g", 1)
	require.NoError(t, root.Add(f))
	require.NoError(t, root.Add(g))

	assert.ErrorIs(t, root.Rename(f, "g"), common.ErrExists)
	assert.ErrorIs(t, root.Rename(f, "a/b"), common.ErrInvalidName)
	assert.ErrorIs(t, root.Rename(newFile(t, "z", 1), "y"), common.ErrNotFound)
	require.NoError(t, root.Rename(f, "h"))
	assert.Equal(t, "h", f.Name())

	got, err := root.Child("h")
	require.NoError(t, err)
	assert.Same(t, f, got)
}

func TestMove(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	a := newDir(t, "a")
	b := newDir(t, "b")
	f := newFile(t, "f", 10)
	clash := newFile(t, "taken", 1)
	require.NoError(t, root.Add(a))
	require.NoError(t, root.Add(b))
	require.NoError(t, a.Add(f))
	require.NoError(t, b.Add(clash))

	assert.ErrorIs(t, a.Move(f, b, "taken"), common.ErrExists)
	assert.ErrorIs(t, b.Move(f, a, "x"), common.ErrNotFound, "f is not a child of b")
	assert.ErrorIs(t, root.Move(b, b, "x"), common.ErrCycle)
	assert.ErrorIs(t, a.Move(f, nil, "x"), common.ErrInvalidNode)
	assert.ErrorIs(t, a.Move(f, b, ""), common.ErrInvalidName)
	assert.Same(t, a, f.Parent(), "failed moves leave the tree unchanged")
	assert.Equal(t, int64(11), root.Size())

	require.NoError(t, a.Move(f, b, "moved"))
	assert.Equal(t, "moved", f.Name())
	assert.Same(t, b, f.Parent())
	assert.Equal(t, int64(0), a.Size())
	assert.Equal(t, int64(11), b.Size())
	assert.Equal(t, int64(11), root.Size())

	// Moving within the same container is a rename.
	require.NoError(t, b.Move(f, b, "renamed"))
	assert.Equal(t, "renamed", f.Name())
}

func TestSetContentPropagates(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	docs := newDir(t, "docs")
	readme := newFile(t, "readme", 1024)
	require.NoError(t, root.Add(docs))
	require.NoError(t, docs.Add(readme))

	readme.SetContent("héllo")
	assert.Equal(t, int64(6), readme.Size(), "size is the byte length")
	assert.Equal(t, int64(6), docs.Size())
	assert.Equal(t, int64(6), root.Size())
	assert.Equal(t, root.TotalSize(), root.Size())
}

func TestSearch(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()

	names := func(nodes []Node) []string {
		var out []string
		for _, n := range nodes {
			out = append(out, n.Name())
		}
		return out
	}

	assert.Equal(t, []string{"README.md"}, names(root.Search("readme")))
	assert.Equal(t, []string{"main.go", "main_test.go"}, names(root.Search("MAIN")))
	assert.Empty(t, root.Search("nothing-matches"))

	// Containers are included alongside their matching descendants.
	assert.Equal(t, []string{"test", "main_test.go"}, names(root.Search("test")))

	// Each call builds a fresh result.
	first := root.Search("o")
	second := root.Search("o")
	assert.Equal(t, first, second)
	first[0] = nil
	assert.NotNil(t, root.Search("o")[0])

	// An empty pattern matches every node exactly once.
	assert.Len(t, root.Search(""), CountNodes(root))
}

func TestDisplayOrderingDoesNotMutate(t *testing.T) {
	t.Parallel()

	root := newDir(t, "root")
	for _, n := range []Node{
		newFile(t, "b.txt", 1),
		newDir(t, "zeta"),
		newFile(t, "A.txt", 1),
		newDir(t, "Alpha"),
	} {
		require.NoError(t, root.Add(n))
	}

	var buf bytes.Buffer
	require.NoError(t, root.Display(&buf, ""))
	assert.Equal(t, ""+
		"📁 root (2 B) [rwxr-xr-x]\n"+
		"  📁 Alpha (0 B) [rwxr-xr-x]\n"+
		"  📁 zeta (0 B) [rwxr-xr-x]\n"+
		"  📄 A.txt (1 B) [rw-r--r--]\n"+
		"  📄 b.txt (1 B) [rw-r--r--]\n",
		buf.String())

	children, err := root.Children()
	require.NoError(t, err)
	var order []string
	for _, c := range children {
		order = append(order, c.Name())
	}
	assert.Equal(t, []string{"b.txt", "zeta", "A.txt", "Alpha"}, order)
}

func TestDisplayContentPreview(t *testing.T) {
	t.Parallel()

	short, err := NewLeaf("short.txt", 5, DefaultFilePermissions, "txt", "hello")
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, short.Display(&buf, "  "))
	assert.Equal(t, "  📄 short.txt (5 B) [rw-r--r--]\n     Content: hello\n", buf.String())

	long, err := NewLeaf("long.txt", 60, DefaultFilePermissions, "txt", string(bytes.Repeat([]byte("x"), 60)))
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, long.Display(&buf, ""))
	assert.Contains(t, buf.String(), "Content: "+string(bytes.Repeat([]byte("x"), 50))+"...\n")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("sink closed") }

func TestDisplayPropagatesWriteErrors(t *testing.T) {
	t.Parallel()
	assert.Error(t, SampleFileSystem().Display(failingWriter{}, ""))
}

func TestTotalSizeIsIdempotent(t *testing.T) {
	t.Parallel()

	root := SampleFileSystem()
	first := root.TotalSize()
	assert.Equal(t, first, root.TotalSize())
	assert.Equal(t, int64(6249280), first)
}

// TestStoredSizeMatchesWalk applies random mutations and checks that the
// stored aggregate matches a full walk, at every depth, after each step.
func TestStoredSizeMatchesWalk(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	rng := rand.New(rand.NewSource(42))
	root := newDir(t, "root")
	containers := []*Container{root}
	var leaves []*Leaf

	for i := 0; i < 500; i++ {
		switch op := rng.Intn(4); {
		case op == 0:
			parent := containers[rng.Intn(len(containers))]
			c := newDir(t, fmt.Sprintf("d%d", i))
			g.Expect(parent.Add(c)).To(Succeed())
			containers = append(containers, c)
		case op == 1:
			parent := containers[rng.Intn(len(containers))]
			l := newFile(t, fmt.Sprintf("f%d", i), rng.Int63n(4096))
			g.Expect(parent.Add(l)).To(Succeed())
			leaves = append(leaves, l)
		case op == 2 && len(leaves) > 0:
			l := leaves[rng.Intn(len(leaves))]
			if p := l.Parent(); p != nil {
				g.Expect(p.Remove(l)).To(Succeed())
			}
		case op == 3 && len(leaves) > 0:
			l := leaves[rng.Intn(len(leaves))]
			l.SetContent(string(make([]byte, rng.Intn(300))))
		}

		for _, c := range containers {
			g.Expect(c.Size()).To(Equal(c.TotalSize()), "container %s after step %d", c.Name(), i)
			children, err := c.Children()
			g.Expect(err).NotTo(HaveOccurred())
			var sum int64
			for _, child := range children {
				sum += child.TotalSize()
			}
			g.Expect(c.TotalSize()).To(Equal(sum))
		}
	}
}
