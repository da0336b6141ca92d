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

package tree

import (
	"fmt"
	"io"
	"strings"
)

// contentPreview is the number of characters of content shown by Display.
const contentPreview = 50

// Leaf is a file: a named node with a fixed size and optional content.
type Leaf struct {
	entry
	size      int64
	extension string
	content   string
}

// NewLeaf creates a detached file node. size is taken as given; it is only
// derived from content once SetContent is called.
func NewLeaf(name string, size int64, permissions, extension, content string) (*Leaf, error) {
	if size < 0 {
		return nil, fmt.Errorf("leaf %q: negative size %d", name, size)
	}
	e, err := newEntry(name, permissions)
	if err != nil {
		return nil, err
	}
	return &Leaf{
		entry:     e,
		size:      size,
		extension: extension,
		content:   content,
	}, nil
}

func (l *Leaf) entryRef() *entry {
	if l == nil {
		return nil
	}
	return &l.entry
}

// Extension returns the file extension without the dot.
func (l *Leaf) Extension() string { return l.extension }

// Content returns the file content.
func (l *Leaf) Content() string { return l.content }

// SetContent replaces the content and sets the size to its byte length.
// Ancestor sizes are updated before returning.
func (l *Leaf) SetContent(content string) {
	l.content = content
	l.size = int64(len(content))
	if l.parent != nil {
		l.parent.updateSize()
	}
}

func (l *Leaf) Size() int64      { return l.size }
func (l *Leaf) TotalSize() int64 { return l.size }
func (l *Leaf) IsLeaf() bool     { return true }

// Display writes the leaf line and, for non-empty content, a preview line.
func (l *Leaf) Display(w io.Writer, indent string) error {
	if _, err := fmt.Fprintf(w, "%s📄 %s (%s) [%s]\n", indent, l.name, FormatSize(l.size), l.permissions); err != nil {
		return err
	}
	if l.content == "" {
		return nil
	}
	preview := []rune(l.content)
	suffix := ""
	if len(preview) > contentPreview {
		preview = preview[:contentPreview]
		suffix = "..."
	}
	_, err := fmt.Fprintf(w, "%s   Content: %s%s\n", indent, string(preview), suffix)
	return err
}

// Search returns the leaf itself when its name contains pattern, ignoring case.
func (l *Leaf) Search(pattern string) []Node {
	if matches(l.name, pattern) {
		return []Node{l}
	}
	return nil
}

func (l *Leaf) Add(child Node) error            { return unsupported("add", l.name) }
func (l *Leaf) Remove(child Node) error         { return unsupported("remove", l.name) }
func (l *Leaf) Child(name string) (Node, error) { return nil, unsupported("child", l.name) }
func (l *Leaf) Children() ([]Node, error)       { return nil, unsupported("children", l.name) }

func matches(name, pattern string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(pattern))
}
