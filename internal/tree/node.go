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

// Package tree implements the component tree: a file-system shaped hierarchy
// where files (Leaf) and directories (Container) are handled through the same
// Node interface.
//
// Invariants:
//  1. A Container's Size() always equals the sum of its children's sizes. The
//     stored value is recomputed on Add, Remove, Move and Leaf.SetContent and
//     propagated to every ancestor before the call returns.
//  2. A node has at most one parent. Children are never shared between
//     containers and a container can never become its own descendant.
//  3. Names are unique among siblings only.
//
// The package is not safe for concurrent mutation; callers that share a tree
// across goroutines must serialize access (see internal/nfs).
package tree

import (
	"fmt"
	"io"

	"patternfs/internal/common"
)

// Default permission strings used by the sample tree and the importer.
const (
	DefaultDirPermissions  = "rwxr-xr-x"
	DefaultFilePermissions = "rw-r--r--"
)

// Node is implemented by *Leaf and *Container only.
type Node interface {
	Name() string
	Permissions() string
	SetPermissions(permissions string)
	// Size returns the stored size: fixed for a leaf, the maintained aggregate
	// for a container.
	Size() int64
	IsLeaf() bool
	// TotalSize walks the subtree on every call.
	TotalSize() int64
	Parent() *Container
	Display(w io.Writer, indent string) error
	Search(pattern string) []Node

	// Container-only operations. Leaves return common.ErrUnsupported.
	Add(child Node) error
	Remove(child Node) error
	Child(name string) (Node, error)
	Children() ([]Node, error)

	entryRef() *entry
}

// entry holds the attributes shared by both node kinds.
type entry struct {
	name        string
	permissions string
	parent      *Container
}

func newEntry(name, permissions string) (entry, error) {
	if !common.ValidName(name) {
		return entry{}, fmt.Errorf("%w: %q", common.ErrInvalidName, name)
	}
	return entry{name: name, permissions: permissions}, nil
}

// Name returns the entry name.
func (e *entry) Name() string { return e.name }

// Permissions returns the opaque permission descriptor, e.g. "rw-r--r--".
func (e *entry) Permissions() string { return e.permissions }

// SetPermissions replaces the permission descriptor.
func (e *entry) SetPermissions(permissions string) { e.permissions = permissions }

// Parent returns the owning container, or nil for a detached node.
func (e *entry) Parent() *Container { return e.parent }

// unsupported builds the error returned by container-only operations on a leaf.
func unsupported(op, name string) error {
	return fmt.Errorf("%s on %q: %w", op, name, common.ErrUnsupported)
}
