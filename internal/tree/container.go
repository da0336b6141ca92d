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
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"

	"patternfs/internal/common"
)

// Container is a directory: an ordered list of exclusively owned children.
type Container struct {
	entry
	children []Node
	size     int64 // sum of children's Size(), kept current by updateSize
}

// NewContainer creates an empty, detached directory node.
func NewContainer(name, permissions string) (*Container, error) {
	e, err := newEntry(name, permissions)
	if err != nil {
		return nil, err
	}
	return &Container{entry: e}, nil
}

func (c *Container) entryRef() *entry {
	if c == nil {
		return nil
	}
	return &c.entry
}

func (c *Container) Size() int64  { return c.size }
func (c *Container) IsLeaf() bool { return false }

// TotalSize recomputes the aggregate size by walking every descendant.
func (c *Container) TotalSize() int64 {
	var total int64
	for _, child := range c.children {
		total += child.TotalSize()
	}
	return total
}

// Add appends child. It fails if child is nil, already attached elsewhere,
// would create a cycle, or shares its name with an existing sibling.
func (c *Container) Add(child Node) error {
	e := entryOf(child)
	if e == nil {
		return fmt.Errorf("add to %q: %w", c.name, common.ErrInvalidNode)
	}
	if e.parent != nil {
		return fmt.Errorf("add %q to %q: %w", e.name, c.name, common.ErrAttached)
	}
	if sub, ok := child.(*Container); ok {
		for n := c; n != nil; n = n.parent {
			if n == sub {
				return fmt.Errorf("add %q to %q: %w", e.name, c.name, common.ErrCycle)
			}
		}
	}
	if c.indexOfName(e.name) >= 0 {
		return fmt.Errorf("add %q to %q: %w", e.name, c.name, common.ErrExists)
	}

	e.parent = c
	c.children = append(c.children, child)
	c.updateSize()
	log.Debugf("[TREE] Add: %q -> %q (size=%d)", e.name, c.name, c.size)
	return nil
}

// Remove detaches child by identity.
func (c *Container) Remove(child Node) error {
	e := entryOf(child)
	if e == nil {
		return fmt.Errorf("remove from %q: %w", c.name, common.ErrInvalidNode)
	}
	i := slices.Index(c.children, child)
	if i < 0 {
		return fmt.Errorf("remove %q from %q: %w", e.name, c.name, common.ErrNotFound)
	}

	c.children = slices.Delete(c.children, i, i+1)
	e.parent = nil
	c.updateSize()
	log.Debugf("[TREE] Remove: %q from %q (size=%d)", e.name, c.name, c.size)
	return nil
}

// Rename changes the name of a direct child, keeping sibling names unique.
func (c *Container) Rename(child Node, newName string) error {
	e := entryOf(child)
	if e == nil || e.parent != c {
		return fmt.Errorf("rename in %q: %w", c.name, common.ErrNotFound)
	}
	if !common.ValidName(newName) {
		return fmt.Errorf("rename %q: %w: %q", e.name, common.ErrInvalidName, newName)
	}
	if newName == e.name {
		return nil
	}
	if c.indexOfName(newName) >= 0 {
		return fmt.Errorf("rename %q to %q: %w", e.name, newName, common.ErrExists)
	}
	e.name = newName
	return nil
}

// Move detaches child from c and attaches it to dst under newName. The move
// is checked up front, so a failure leaves both containers unchanged.
func (c *Container) Move(child Node, dst *Container, newName string) error {
	e := entryOf(child)
	if e == nil || e.parent != c {
		return fmt.Errorf("move from %q: %w", c.name, common.ErrNotFound)
	}
	if dst == nil {
		return fmt.Errorf("move %q: %w", e.name, common.ErrInvalidNode)
	}
	if dst == c {
		return c.Rename(child, newName)
	}
	if !common.ValidName(newName) {
		return fmt.Errorf("move %q: %w: %q", e.name, common.ErrInvalidName, newName)
	}
	if sub, ok := child.(*Container); ok {
		for n := dst; n != nil; n = n.parent {
			if n == sub {
				return fmt.Errorf("move %q into %q: %w", e.name, dst.name, common.ErrCycle)
			}
		}
	}
	if dst.indexOfName(newName) >= 0 {
		return fmt.Errorf("move %q to %q: %w", e.name, newName, common.ErrExists)
	}

	if err := c.Remove(child); err != nil {
		return err
	}
	e.name = newName
	return dst.Add(child)
}

// Child looks up a direct child by exact name. A miss returns (nil, nil).
func (c *Container) Child(name string) (Node, error) {
	if i := c.indexOfName(name); i >= 0 {
		return c.children[i], nil
	}
	return nil, nil
}

// Children returns a copy of the child list in insertion order.
func (c *Container) Children() ([]Node, error) {
	return slices.Clone(c.children), nil
}

// ItemCount returns the number of direct children.
func (c *Container) ItemCount() int {
	return len(c.children)
}

// FileCount returns the number of leaves in the subtree.
func (c *Container) FileCount() int {
	count := 0
	for _, child := range c.children {
		if sub, ok := child.(*Container); ok {
			count += sub.FileCount()
		} else {
			count++
		}
	}
	return count
}

// DirectoryCount returns the number of containers below c, excluding c.
func (c *Container) DirectoryCount() int {
	count := 0
	for _, child := range c.children {
		if sub, ok := child.(*Container); ok {
			count += 1 + sub.DirectoryCount()
		}
	}
	return count
}

// Display writes c and its subtree. Sub-containers are listed before leaves,
// each group ordered by case-insensitive name. The stored child order is not
// changed.
func (c *Container) Display(w io.Writer, indent string) error {
	if _, err := fmt.Fprintf(w, "%s📁 %s (%s) [%s]\n", indent, c.name, FormatSize(c.TotalSize()), c.permissions); err != nil {
		return err
	}
	for _, child := range displayOrder(c.children) {
		if err := child.Display(w, indent+"  "); err != nil {
			return err
		}
	}
	return nil
}

// Search returns c (if its name matches) followed by every match in the
// subtree, in child order. The slice is rebuilt on every call.
func (c *Container) Search(pattern string) []Node {
	var results []Node
	if matches(c.name, pattern) {
		results = append(results, c)
	}
	for _, child := range c.children {
		results = append(results, child.Search(pattern)...)
	}
	return results
}

func (c *Container) indexOfName(name string) int {
	return slices.IndexFunc(c.children, func(n Node) bool { return n.Name() == name })
}

// updateSize recomputes the stored size of c and every ancestor.
func (c *Container) updateSize() {
	for n := c; n != nil; n = n.parent {
		var total int64
		for _, child := range n.children {
			total += child.Size()
		}
		n.size = total
	}
}

func displayOrder(children []Node) []Node {
	sorted := slices.Clone(children)
	slices.SortStableFunc(sorted, func(a, b Node) int {
		if a.IsLeaf() != b.IsLeaf() {
			if a.IsLeaf() {
				return 1
			}
			return -1
		}
		return cmp.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
	})
	return sorted
}

// entryOf returns nil for a nil interface or a typed nil pointer.
func entryOf(n Node) *entry {
	if n == nil {
		return nil
	}
	return n.entryRef()
}
