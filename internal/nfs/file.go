package nfs

import (
	"io"
	"os"
	"time"

	billy "github.com/go-git/go-billy/v5"
	nfsfile "github.com/willscott/go-nfs/file"

	"patternfs/internal/tree"
)

// file is an open leaf. Reads and writes operate on the leaf content,
// seen as zero-padded up to the leaf size.
type file struct {
	fs     *TreeFS
	leaf   *tree.Leaf
	name   string
	flag   int
	offset int64
}

func (f *file) Name() string {
	return f.name
}

func (f *file) writable() bool {
	return f.flag&(os.O_WRONLY|os.O_RDWR) != 0
}

func (f *file) Read(p []byte) (int, error) {
	n, err := f.ReadAt(p, f.offset)
	f.offset += int64(n)
	return n, err
}

// ReadAt serves the leaf content followed by zeros up to the leaf size.
func (f *file) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, os.ErrInvalid
	}
	f.fs.mu.RLock()
	content := f.leaf.Content()
	size := leafSize(f.leaf)
	f.fs.mu.RUnlock()

	if off >= size {
		return 0, io.EOF
	}
	want := int(min(int64(len(p)), size-off))
	n := 0
	if off < int64(len(content)) {
		n = copy(p[:want], content[off:])
	}
	clear(p[n:want])
	if want < len(p) {
		return want, io.EOF
	}
	return want, nil
}

func (f *file) Write(p []byte) (int, error) {
	if !f.writable() {
		return 0, &os.PathError{Op: "write", Path: f.name, Err: os.ErrPermission}
	}
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	data := leafData(f.leaf)
	if f.flag&os.O_APPEND != 0 {
		f.offset = int64(len(data))
	}
	end := f.offset + int64(len(p))
	if end > int64(len(data)) {
		data = append(data, make([]byte, end-int64(len(data)))...)
	}
	copy(data[f.offset:], p)
	f.leaf.SetContent(string(data))
	f.fs.touch(f.leaf)
	f.offset = end
	return len(p), nil
}

func (f *file) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = f.offset
	case io.SeekEnd:
		f.fs.mu.RLock()
		base = leafSize(f.leaf)
		f.fs.mu.RUnlock()
	default:
		return 0, os.ErrInvalid
	}
	if base+offset < 0 {
		return 0, os.ErrInvalid
	}
	f.offset = base + offset
	return f.offset, nil
}

func (f *file) Close() error  { return nil }
func (f *file) Lock() error   { return nil }
func (f *file) Unlock() error { return nil }

// Truncate cuts or zero-extends the content to size bytes.
func (f *file) Truncate(size int64) error {
	if size < 0 {
		return os.ErrInvalid
	}
	if !f.writable() || f.fs.readOnly {
		return &os.PathError{Op: "truncate", Path: f.name, Err: os.ErrPermission}
	}
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	data := leafData(f.leaf)
	if size <= int64(len(data)) {
		data = data[:size]
	} else {
		data = append(data, make([]byte, size-int64(len(data)))...)
	}
	f.leaf.SetContent(string(data))
	f.fs.touch(f.leaf)
	return nil
}

// leafSize is the number of readable bytes: the declared size, or the
// content length if that is larger.
func leafSize(l *tree.Leaf) int64 {
	return max(l.Size(), int64(len(l.Content())))
}

// leafData returns the content zero-padded to leafSize.
func leafData(l *tree.Leaf) []byte {
	data := make([]byte, leafSize(l))
	copy(data, l.Content())
	return data
}

// fileInfo is a point-in-time copy of a node's attributes.
type fileInfo struct {
	name   string
	size   int64
	mode   os.FileMode
	mtime  time.Time
	fileid uint64
	uid    uint32
	gid    uint32
}

func (fi *fileInfo) Name() string       { return fi.name }
func (fi *fileInfo) Size() int64        { return fi.size }
func (fi *fileInfo) Mode() os.FileMode  { return fi.mode }
func (fi *fileInfo) ModTime() time.Time { return fi.mtime }
func (fi *fileInfo) IsDir() bool        { return fi.mode.IsDir() }

// Sys returns *file.FileInfo; go-nfs only reads ids and link counts from
// that type.
func (fi *fileInfo) Sys() any {
	return &nfsfile.FileInfo{
		Nlink:  1,
		UID:    fi.uid,
		GID:    fi.gid,
		Fileid: fi.fileid,
	}
}

var (
	_ billy.File  = (*file)(nil)
	_ os.FileInfo = (*fileInfo)(nil)
)
