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

package storage

import (
	"time"

	"github.com/uptrace/bun"
)

// Node kinds stored in the nodes table.
const (
	KindDir  = "dir"
	KindFile = "file"
)

// SchemaInfoModel represents the schema_info table
type SchemaInfoModel struct {
	bun.BaseModel `bun:"table:schema_info"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}

// SnapshotModel represents one saved tree.
type SnapshotModel struct {
	bun.BaseModel `bun:"table:snapshots"`

	ID        string `bun:"id,pk"`
	Name      string `bun:"name,notnull"`
	Tag       string `bun:"tag,unique,nullzero"` // nullzero: empty string -> NULL (allows multiple untagged snapshots)
	RootName  string `bun:"root_name,notnull"`
	CreatedAt int64  `bun:"created_at,notnull"` // Unix nanoseconds
	FileCount int64  `bun:"file_count,notnull"`
	DirCount  int64  `bun:"dir_count,notnull"` // excludes the root
	TotalSize int64  `bun:"total_size,notnull"`
}

// Created returns CreatedAt as a time.Time.
func (m *SnapshotModel) Created() time.Time {
	return time.Unix(0, m.CreatedAt)
}

// NodeModel is one tree node of a snapshot. Nodes are numbered in pre-order
// starting at 1 (the root, ParentID 0), so a parent always precedes its
// children and Position orders siblings.
type NodeModel struct {
	bun.BaseModel `bun:"table:nodes"`

	SnapshotID  string `bun:"snapshot_id,pk"`
	NodeID      int64  `bun:"node_id,pk"`
	ParentID    int64  `bun:"parent_id,notnull"`
	Position    int64  `bun:"position,notnull"`
	Name        string `bun:"name,notnull"`
	Kind        string `bun:"kind,notnull"`
	Permissions string `bun:"permissions,notnull"`
	Size        int64  `bun:"size,notnull"`
	Extension   string `bun:"extension,notnull"`
	Content     string `bun:"content,notnull"`
}
