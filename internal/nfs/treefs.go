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

// Package nfs exports a component tree over NFSv3. TreeFS adapts the tree to
// the billy filesystem interface that go-nfs serves.
package nfs

import (
	"errors"
	"os"
	"path"
	"sort"
	"sync"
	"syscall"
	"time"

	billy "github.com/go-git/go-billy/v5"
	log "github.com/sirupsen/logrus"

	"patternfs/internal/common"
	"patternfs/internal/scan"
	"patternfs/internal/tree"
)

// Options configures a TreeFS.
type Options struct {
	ReadOnly bool
}

// TreeFS is a billy.Filesystem backed by a tree. All access goes through one
// lock, so the tree may be shared with other goroutines that take it too
// (see Do).
type TreeFS struct {
	mu       sync.RWMutex
	root     *tree.Container
	readOnly bool

	uid uint32 // cached os.Getuid() for FileInfo.Sys()
	gid uint32

	started time.Time
	nextID  uint64
	meta    map[tree.Node]*nodeMeta
}

// nodeMeta holds the attributes NFS needs that the tree does not model.
type nodeMeta struct {
	fileid uint64
	mtime  time.Time
}

// NewTreeFS wraps root.
func NewTreeFS(root *tree.Container, opts Options) *TreeFS {
	return &TreeFS{
		root:     root,
		readOnly: opts.ReadOnly,
		uid:      uint32(os.Getuid()),
		gid:      uint32(os.Getgid()),
		started:  time.Now(),
		meta:     make(map[tree.Node]*nodeMeta),
	}
}

// Do runs fn with the tree locked for writing.
func (fs *TreeFS) Do(fn func(root *tree.Container) error) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fn(fs.root)
}

// metaOf returns the attributes of n, assigning a file id on first use.
// Callers hold fs.mu for writing.
func (fs *TreeFS) metaOf(n tree.Node) *nodeMeta {
	if m, ok := fs.meta[n]; ok {
		return m
	}
	fs.nextID++
	m := &nodeMeta{fileid: fs.nextID, mtime: fs.started}
	fs.meta[n] = m
	return m
}

func (fs *TreeFS) touch(n tree.Node) {
	fs.metaOf(n).mtime = time.Now()
}

// lookup resolves p. Callers hold fs.mu.
func (fs *TreeFS) lookup(op, p string) (tree.Node, error) {
	n := tree.FindByPath(fs.root, p)
	if n == nil {
		return nil, pathError(op, p, common.ErrNotFound)
	}
	return n, nil
}

// lookupParent resolves the container that holds p and the base name of p.
func (fs *TreeFS) lookupParent(op, p string) (*tree.Container, string, error) {
	clean := common.NormalizePath(p)
	if clean == "" {
		return nil, "", pathError(op, p, common.ErrInvalidPath)
	}
	parent, err := fs.lookup(op, common.ParentPath(clean))
	if err != nil {
		return nil, "", err
	}
	dir, ok := parent.(*tree.Container)
	if !ok {
		return nil, "", pathError(op, p, common.ErrNotDir)
	}
	return dir, common.BaseName(clean), nil
}

func (fs *TreeFS) checkWritable(op, p string) error {
	if fs.readOnly {
		return pathError(op, p, common.ErrReadOnly)
	}
	return nil
}

// Create creates or truncates the named file.
func (fs *TreeFS) Create(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
}

// Open opens the named file for reading.
func (fs *TreeFS) Open(filename string) (billy.File, error) {
	return fs.OpenFile(filename, os.O_RDONLY, 0)
}

// OpenFile opens a leaf. Containers cannot be opened.
func (fs *TreeFS) OpenFile(filename string, flag int, perm os.FileMode) (billy.File, error) {
	writable := flag&(os.O_WRONLY|os.O_RDWR|os.O_APPEND|os.O_TRUNC|os.O_CREATE) != 0
	if writable {
		if err := fs.checkWritable("open", filename); err != nil {
			return nil, err
		}
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	n := tree.FindByPath(fs.root, filename)
	switch {
	case n == nil:
		if flag&os.O_CREATE == 0 {
			return nil, pathError("open", filename, common.ErrNotFound)
		}
		dir, name, err := fs.lookupParent("open", filename)
		if err != nil {
			return nil, err
		}
		leaf, err := tree.NewLeaf(name, 0, common.PermString(perm), scan.Extension(name), "")
		if err != nil {
			return nil, pathError("open", filename, err)
		}
		if err := dir.Add(leaf); err != nil {
			return nil, pathError("open", filename, err)
		}
		fs.touch(dir)
		fs.touch(leaf)
		log.Debugf("[NFS] create %s", filename)
		n = leaf
	case flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0:
		return nil, pathError("open", filename, common.ErrExists)
	}

	leaf, ok := n.(*tree.Leaf)
	if !ok {
		return nil, pathError("open", filename, common.ErrIsDir)
	}
	if flag&os.O_TRUNC != 0 && leaf.Size() > 0 {
		leaf.SetContent("")
		fs.touch(leaf)
	}
	return &file{fs: fs, leaf: leaf, name: filename, flag: flag}, nil
}

// Stat returns the attributes of the named node.
func (fs *TreeFS) Stat(filename string) (os.FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup("stat", filename)
	if err != nil {
		return nil, err
	}
	return fs.info(n), nil
}

// Lstat is Stat; trees have no symlinks.
func (fs *TreeFS) Lstat(filename string) (os.FileInfo, error) {
	return fs.Stat(filename)
}

// info snapshots n into a FileInfo. Callers hold fs.mu for writing.
func (fs *TreeFS) info(n tree.Node) *fileInfo {
	m := fs.metaOf(n)
	size := n.Size()
	if l, ok := n.(*tree.Leaf); ok {
		size = leafSize(l)
	}
	return &fileInfo{
		name:   n.Name(),
		size:   size,
		mode:   modeOf(n),
		mtime:  m.mtime,
		fileid: m.fileid,
		uid:    fs.uid,
		gid:    fs.gid,
	}
}

// Rename moves oldpath to newpath. An existing leaf at newpath is replaced
// when the source is a leaf too.
func (fs *TreeFS) Rename(oldpath, newpath string) error {
	if err := fs.checkWritable("rename", oldpath); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup("rename", oldpath)
	if err != nil {
		return err
	}
	src := n.Parent()
	if src == nil {
		return pathError("rename", oldpath, common.ErrInvalidPath)
	}
	dst, name, err := fs.lookupParent("rename", newpath)
	if err != nil {
		return err
	}

	if existing, _ := dst.Child(name); existing != nil && existing != n {
		if !existing.IsLeaf() || !n.IsLeaf() {
			return pathError("rename", newpath, common.ErrExists)
		}
		if err := dst.Remove(existing); err != nil {
			return pathError("rename", newpath, err)
		}
		delete(fs.meta, existing)
	}
	if err := src.Move(n, dst, name); err != nil {
		return pathError("rename", oldpath, err)
	}
	fs.touch(src)
	fs.touch(dst)
	log.Debugf("[NFS] rename %s -> %s", oldpath, newpath)
	return nil
}

// Remove deletes a leaf or an empty container.
func (fs *TreeFS) Remove(filename string) error {
	if err := fs.checkWritable("remove", filename); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup("remove", filename)
	if err != nil {
		return err
	}
	parent := n.Parent()
	if parent == nil {
		return pathError("remove", filename, common.ErrInvalidPath)
	}
	if c, ok := n.(*tree.Container); ok && c.ItemCount() > 0 {
		return pathError("remove", filename, common.ErrNotEmpty)
	}
	if err := parent.Remove(n); err != nil {
		return pathError("remove", filename, err)
	}
	delete(fs.meta, n)
	fs.touch(parent)
	log.Debugf("[NFS] remove %s", filename)
	return nil
}

// Join joins path elements with slashes.
func (fs *TreeFS) Join(elem ...string) string {
	return path.Join(elem...)
}

// TempFile is not supported.
func (fs *TreeFS) TempFile(dir, prefix string) (billy.File, error) {
	return nil, os.ErrInvalid
}

// ReadDir lists a container sorted by name.
func (fs *TreeFS) ReadDir(dirname string) ([]os.FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup("readdir", dirname)
	if err != nil {
		return nil, err
	}
	children, err := n.Children()
	if err != nil {
		return nil, pathError("readdir", dirname, common.ErrNotDir)
	}
	result := make([]os.FileInfo, 0, len(children))
	for _, child := range children {
		result = append(result, fs.info(child))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name() < result[j].Name() })
	return result, nil
}

// MkdirAll creates every missing container along filename.
func (fs *TreeFS) MkdirAll(filename string, perm os.FileMode) error {
	if err := fs.checkWritable("mkdir", filename); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	current := fs.root
	for _, name := range common.SplitPath(filename) {
		next, _ := current.Child(name)
		if next == nil {
			c, err := tree.NewContainer(name, common.PermString(perm))
			if err != nil {
				return pathError("mkdir", filename, err)
			}
			if err := current.Add(c); err != nil {
				return pathError("mkdir", filename, err)
			}
			fs.touch(current)
			fs.touch(c)
			next = c
		}
		c, ok := next.(*tree.Container)
		if !ok {
			return pathError("mkdir", filename, common.ErrNotDir)
		}
		current = c
	}
	return nil
}

// Symlink is not supported.
func (fs *TreeFS) Symlink(target, link string) error {
	return pathError("symlink", link, common.ErrUnsupported)
}

// Readlink is not supported.
func (fs *TreeFS) Readlink(link string) (string, error) {
	return "", pathError("readlink", link, common.ErrUnsupported)
}

// Chroot is not supported.
func (fs *TreeFS) Chroot(path string) (billy.Filesystem, error) {
	return nil, os.ErrInvalid
}

// Root returns "/".
func (fs *TreeFS) Root() string {
	return "/"
}

// Chmod stores the permission bits of mode as the node's permissions.
func (fs *TreeFS) Chmod(name string, mode os.FileMode) error {
	if err := fs.checkWritable("chmod", name); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup("chmod", name)
	if err != nil {
		return err
	}
	n.SetPermissions(common.PermString(mode))
	return nil
}

func (fs *TreeFS) Lchown(name string, uid, gid int) error { return nil }
func (fs *TreeFS) Chown(name string, uid, gid int) error  { return nil }

// Chtimes records mtime; atime is not tracked.
func (fs *TreeFS) Chtimes(name string, atime, mtime time.Time) error {
	if err := fs.checkWritable("chtimes", name); err != nil {
		return err
	}
	fs.mu.Lock()
	defer fs.mu.Unlock()

	n, err := fs.lookup("chtimes", name)
	if err != nil {
		return err
	}
	fs.metaOf(n).mtime = mtime
	return nil
}

// Capabilities reports what the export supports.
func (fs *TreeFS) Capabilities() billy.Capability {
	if fs.readOnly {
		return billy.ReadCapability | billy.SeekCapability
	}
	return billy.WriteCapability | billy.ReadCapability |
		billy.ReadAndWriteCapability | billy.SeekCapability | billy.TruncateCapability
}

// parsePermissions is the inverse of common.PermString. Descriptors that are not
// nine rwx characters fall back to the defaults.
func parsePermissions(s string, dir bool) os.FileMode {
	if len(s) != 9 {
		if dir {
			return 0755
		}
		return 0644
	}
	var mode os.FileMode
	for i, c := range s {
		if c != '-' {
			mode |= 1 << uint(8-i)
		}
	}
	return mode
}

func modeOf(n tree.Node) os.FileMode {
	if n.IsLeaf() {
		return parsePermissions(n.Permissions(), false)
	}
	return os.ModeDir | parsePermissions(n.Permissions(), true)
}

// pathError maps tree errors onto the os errors go-nfs turns into NFS status
// codes.
func pathError(op, p string, err error) error {
	var mapped error
	switch {
	case errors.Is(err, common.ErrNotFound):
		mapped = os.ErrNotExist
	case errors.Is(err, common.ErrExists):
		mapped = os.ErrExist
	case errors.Is(err, common.ErrReadOnly):
		mapped = os.ErrPermission
	case errors.Is(err, common.ErrNotDir):
		mapped = syscall.ENOTDIR
	case errors.Is(err, common.ErrIsDir):
		mapped = syscall.EISDIR
	case errors.Is(err, common.ErrNotEmpty):
		mapped = syscall.ENOTEMPTY
	case errors.Is(err, common.ErrUnsupported):
		mapped = syscall.ENOTSUP
	default:
		mapped = os.ErrInvalid
	}
	return &os.PathError{Op: op, Path: p, Err: mapped}
}

var (
	_ billy.Filesystem = (*TreeFS)(nil)
	_ billy.Change     = (*TreeFS)(nil)
	_ billy.Capable    = (*TreeFS)(nil)
)
