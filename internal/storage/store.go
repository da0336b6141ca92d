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

// Package storage persists component trees as named snapshots in a libsql
// database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	_ "github.com/tursodatabase/go-libsql"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"patternfs/internal/common"
	"patternfs/internal/tree"
	"patternfs/internal/util"
)

// Store is a snapshot database. Reads may run concurrently from several
// processes; writes are serialized with a lock file next to the database.
type Store struct {
	path string
	db   *bun.DB
	lock *flock.Flock
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	return OpenWithTimeout(path, DefaultBusyTimeout)
}

// OpenWithTimeout is Open with an explicit busy_timeout in milliseconds.
func OpenWithTimeout(path string, busyTimeout int) (*Store, error) {
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	sqlDB, err := sql.Open("libsql", BuildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := applyPragmas(sqlDB, busyTimeout); err != nil {
		sqlDB.Close()
		return nil, err
	}

	s := &Store{
		path: path,
		db:   bun.NewDB(sqlDB, sqlitedialect.New()),
		lock: flock.New(path + ".lock"),
	}
	if err := s.withWriteLock(context.Background(), func(ctx context.Context) error {
		return createSchema(ctx, s.db)
	}); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	log.Debugf("[STORE] opened %s", path)
	return s, nil
}

// Close checkpoints the WAL and closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	// wal_checkpoint returns rows, so Query() not Exec().
	if rows, err := s.db.DB.Query("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		log.Warnf("[STORE] WAL checkpoint failed: %v", err)
	} else {
		rows.Close()
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// withWriteLock runs fn holding the file lock, retrying transient
// "database is locked" errors.
func (s *Store) withWriteLock(ctx context.Context, fn func(ctx context.Context) error) error {
	locked, err := s.lock.TryLockContext(ctx, 25*time.Millisecond)
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", s.lock.Path())
	}
	defer s.lock.Unlock()

	return util.Retry(ctx, func() error { return fn(ctx) }, util.DatabaseRetryOptions(ctx)...)
}

// SaveOptions are optional snapshot attributes.
type SaveOptions struct {
	// Tag is a unique label that can be used instead of the id.
	Tag string
}

// Save stores root and its whole subtree as a new snapshot.
func (s *Store) Save(ctx context.Context, name string, root *tree.Container, opts SaveOptions) (*SnapshotModel, error) {
	if root == nil {
		return nil, common.ErrInvalidNode
	}
	if name == "" {
		name = root.Name()
	}

	snap := &SnapshotModel{
		ID:        uuid.NewString(),
		Name:      name,
		Tag:       opts.Tag,
		RootName:  root.Name(),
		CreatedAt: time.Now().UnixNano(),
		FileCount: int64(root.FileCount()),
		DirCount:  int64(root.DirectoryCount()),
		TotalSize: root.TotalSize(),
	}
	nodes := flattenNodes(snap.ID, root)

	err := s.withWriteLock(ctx, func(ctx context.Context) error {
		if opts.Tag != "" {
			exists, err := s.db.NewSelect().Model((*SnapshotModel)(nil)).Where("tag = ?", opts.Tag).Exists(ctx)
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("tag %q: %w", opts.Tag, common.ErrExists)
			}
		}
		return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewInsert().Model(snap).Exec(ctx); err != nil {
				return err
			}
			for start := 0; start < len(nodes); start += insertBatch {
				end := min(start+insertBatch, len(nodes))
				batch := nodes[start:end]
				if _, err := tx.NewInsert().Model(&batch).Exec(ctx); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("save snapshot %q: %w", name, err)
	}
	log.Infof("[STORE] saved snapshot %s (%s, %d nodes)", snap.ID, name, len(nodes))
	return snap, nil
}

// flattenNodes numbers the tree in pre-order.
func flattenNodes(snapshotID string, root *tree.Container) []NodeModel {
	var nodes []NodeModel
	var visit func(n tree.Node, parentID, position int64)
	visit = func(n tree.Node, parentID, position int64) {
		m := NodeModel{
			SnapshotID:  snapshotID,
			NodeID:      int64(len(nodes) + 1),
			ParentID:    parentID,
			Position:    position,
			Name:        n.Name(),
			Permissions: n.Permissions(),
			Size:        n.Size(),
		}
		if leaf, ok := n.(*tree.Leaf); ok {
			m.Kind = KindFile
			m.Extension = leaf.Extension()
			m.Content = leaf.Content()
		} else {
			m.Kind = KindDir
			m.Size = 0
		}
		nodes = append(nodes, m)

		children, err := n.Children()
		if err != nil {
			return
		}
		id := m.NodeID
		for i, child := range children {
			visit(child, id, int64(i))
		}
	}
	visit(root, 0, 0)
	return nodes
}

// List returns all snapshots, newest first.
func (s *Store) List(ctx context.Context) ([]SnapshotModel, error) {
	return util.RetryWithResult(ctx, func() ([]SnapshotModel, error) {
		var snaps []SnapshotModel
		err := s.db.NewSelect().
			Model(&snaps).
			Order("created_at DESC").
			Scan(ctx)
		if err != nil {
			return nil, err
		}
		return snaps, nil
	}, util.DatabaseRetryOptions(ctx)...)
}

// Get returns the snapshot whose id or tag equals ref.
func (s *Store) Get(ctx context.Context, ref string) (*SnapshotModel, error) {
	return util.RetryWithResult(ctx, func() (*SnapshotModel, error) {
		var snap SnapshotModel
		err := s.db.NewSelect().
			Model(&snap).
			Where("id = ? OR tag = ?", ref, ref).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("snapshot %q: %w", ref, common.ErrNotFound)
		}
		if err != nil {
			return nil, err
		}
		return &snap, nil
	}, util.DatabaseRetryOptions(ctx)...)
}

// Load rebuilds the tree of the snapshot identified by id or tag.
func (s *Store) Load(ctx context.Context, ref string) (*tree.Container, error) {
	snap, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	var nodes []NodeModel
	err = s.db.NewSelect().
		Model(&nodes).
		Where("snapshot_id = ?", snap.ID).
		Order("node_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	root, err := buildTree(nodes)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	log.Debugf("[STORE] loaded snapshot %s (%d nodes)", snap.ID, len(nodes))
	return root, nil
}

// buildTree relies on pre-order numbering: parents come first and siblings
// arrive in position order.
func buildTree(nodes []NodeModel) (*tree.Container, error) {
	if len(nodes) == 0 || nodes[0].ParentID != 0 || nodes[0].Kind != KindDir {
		return nil, fmt.Errorf("missing root: %w", common.ErrInvalidNode)
	}

	dirs := make(map[int64]*tree.Container, len(nodes))
	var root *tree.Container
	for _, m := range nodes {
		var n tree.Node
		switch m.Kind {
		case KindDir:
			c, err := tree.NewContainer(m.Name, m.Permissions)
			if err != nil {
				return nil, err
			}
			dirs[m.NodeID] = c
			n = c
		case KindFile:
			l, err := tree.NewLeaf(m.Name, m.Size, m.Permissions, m.Extension, m.Content)
			if err != nil {
				return nil, err
			}
			n = l
		default:
			return nil, fmt.Errorf("node %d has kind %q: %w", m.NodeID, m.Kind, common.ErrInvalidNode)
		}

		if m.ParentID == 0 {
			if root != nil {
				return nil, fmt.Errorf("second root %d: %w", m.NodeID, common.ErrInvalidNode)
			}
			root = dirs[m.NodeID]
			continue
		}
		parent, ok := dirs[m.ParentID]
		if !ok {
			return nil, fmt.Errorf("node %d has no parent %d: %w", m.NodeID, m.ParentID, common.ErrInvalidNode)
		}
		if err := parent.Add(n); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// Delete removes a snapshot and its nodes.
func (s *Store) Delete(ctx context.Context, ref string) error {
	snap, err := s.Get(ctx, ref)
	if err != nil {
		return err
	}
	err = s.withWriteLock(ctx, func(ctx context.Context) error {
		return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.NewDelete().Model((*NodeModel)(nil)).Where("snapshot_id = ?", snap.ID).Exec(ctx); err != nil {
				return err
			}
			_, err := tx.NewDelete().Model((*SnapshotModel)(nil)).Where("id = ?", snap.ID).Exec(ctx)
			return err
		})
	})
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", snap.ID, err)
	}
	log.Infof("[STORE] deleted snapshot %s", snap.ID)
	return nil
}
