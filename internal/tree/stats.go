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
)

// FormatSize renders a byte count the way Display does: "512 B", "1.5 KB",
// "2.0 MB", "1.0 GB".
func FormatSize(bytes int64) string {
	const unit = 1024
	switch {
	case bytes < unit:
		return fmt.Sprintf("%d B", bytes)
	case bytes < unit*unit:
		return fmt.Sprintf("%.1f KB", float64(bytes)/unit)
	case bytes < unit*unit*unit:
		return fmt.Sprintf("%.1f MB", float64(bytes)/(unit*unit))
	default:
		return fmt.Sprintf("%.1f GB", float64(bytes)/(unit*unit*unit))
	}
}

// Statistics summarizes a node. Items, Files and Directories are zero for a leaf.
type Statistics struct {
	Name        string
	Permissions string
	IsLeaf      bool
	TotalSize   int64
	Items       int
	Files       int
	Directories int
}

// Stats collects Statistics for n.
func Stats(n Node) Statistics {
	s := Statistics{
		Name:        n.Name(),
		Permissions: n.Permissions(),
		IsLeaf:      n.IsLeaf(),
		TotalSize:   n.TotalSize(),
	}
	if c, ok := n.(*Container); ok {
		s.Items = c.ItemCount()
		s.Files = c.FileCount()
		s.Directories = c.DirectoryCount()
	}
	return s
}

// printer remembers the first write error so report writers can stay linear.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// WriteStatistics writes a statistics report for n.
func WriteStatistics(w io.Writer, n Node) error {
	s := Stats(n)
	p := &printer{w: w}
	p.printf("\n📊 File System Statistics:\n")
	p.printf("==========================\n")
	if s.IsLeaf {
		p.printf("Type: File\n")
		p.printf("Size: %s\n", FormatSize(s.TotalSize))
	} else {
		p.printf("Type: Directory\n")
		p.printf("Total Size: %s\n", FormatSize(s.TotalSize))
		p.printf("Items: %d\n", s.Items)
		p.printf("Files: %d\n", s.Files)
		p.printf("Directories: %d\n", s.Directories)
	}
	p.printf("Name: %s\n", s.Name)
	p.printf("Permissions: %s\n", s.Permissions)
	return p.err
}

// WriteSearchResults runs Search on n and writes one line per match.
func WriteSearchResults(w io.Writer, n Node, pattern string) error {
	results := n.Search(pattern)
	p := &printer{w: w}
	p.printf("\n🔍 Search Results for '%s':\n", pattern)
	p.printf("=====================================\n")
	if len(results) == 0 {
		p.printf("No components found matching the pattern.\n")
		return p.err
	}
	p.printf("Found %d component(s):\n", len(results))
	for _, r := range results {
		kind := "📁 Directory"
		if r.IsLeaf() {
			kind = "📄 File"
		}
		p.printf("  %s: %s (%s)\n", kind, r.Name(), FormatSize(r.TotalSize()))
	}
	return p.err
}

// WriteTree writes a header followed by n.Display.
func WriteTree(w io.Writer, n Node) error {
	p := &printer{w: w}
	p.printf("\n📂 File System Structure:\n")
	p.printf("=========================\n")
	if p.err != nil {
		return p.err
	}
	return n.Display(w, "")
}
