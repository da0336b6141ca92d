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
	"path"

	"patternfs/internal/common"
)

// WalkFunc is called for every node visited by Walk. p is the slash-separated
// path of the node relative to the walk root, which itself is "/".
type WalkFunc func(p string, n Node) error

// Walk visits n and its descendants depth-first, parents before children, in
// child order. The first error returned by fn stops the walk.
func Walk(n Node, fn WalkFunc) error {
	if entryOf(n) == nil {
		return nil
	}
	return walk("/", n, fn)
}

func walk(p string, n Node, fn WalkFunc) error {
	if err := fn(p, n); err != nil {
		return err
	}
	c, ok := n.(*Container)
	if !ok {
		return nil
	}
	for _, child := range c.children {
		if err := walk("/"+common.JoinPath(p, child.Name()), child, fn); err != nil {
			return err
		}
	}
	return nil
}

// FindByPath resolves a slash-separated path below root. "" and "/" resolve
// to root itself. Returns nil if any component is missing.
func FindByPath(root Node, p string) Node {
	if entryOf(root) == nil {
		return nil
	}
	current := root
	for _, name := range common.SplitPath(p) {
		c, ok := current.(*Container)
		if !ok {
			return nil
		}
		next, _ := c.Child(name)
		if next == nil {
			return nil
		}
		current = next
	}
	return current
}

// Flatten returns all nodes keyed by their path from root.
func Flatten(root Node) map[string]Node {
	result := make(map[string]Node)
	_ = Walk(root, func(p string, n Node) error {
		result[p] = n
		return nil
	})
	return result
}

// CountNodes counts n and all of its descendants.
func CountNodes(n Node) int {
	count := 0
	_ = Walk(n, func(string, Node) error {
		count++
		return nil
	})
	return count
}

// PathOf returns the path of n from the top of its tree.
func PathOf(n Node) string {
	e := entryOf(n)
	if e == nil {
		return ""
	}
	var parts []string
	for ; e.parent != nil; e = &e.parent.entry {
		parts = append(parts, e.name)
	}
	p := "/"
	for i := len(parts) - 1; i >= 0; i-- {
		p = path.Join(p, parts[i])
	}
	return p
}

// LargestFile returns the leaf with the largest size in the subtree. A leaf
// is its own largest file. Among containers, only leaves with a positive size
// are considered and the first one wins a tie; nil means none was found.
func LargestFile(n Node) *Leaf {
	switch v := n.(type) {
	case *Leaf:
		return v
	case *Container:
		var largest *Leaf
		var maxSize int64
		for _, child := range v.children {
			candidate := LargestFile(child)
			if candidate != nil && candidate.size > maxSize {
				largest = candidate
				maxSize = candidate.size
			}
		}
		return largest
	}
	return nil
}
