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

package cache

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Registry maps a comparable key to a single shared value.
// The key is the identity: two keys that compare equal with == always yield
// the same value, so a struct of the intrinsic fields is the usual key type.
//
// Thread-safe: GetOrCreate and Clear take the write lock, readers share an RWMutex.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	created int
	reused  int
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{
		entries: make(map[K]V, 64),
	}
}

// GetOrCreate returns the value registered under key, counting a reuse.
// On a miss it calls create exactly once, stores the result and counts a
// creation. create runs with the registry locked and must not call back into it.
func (r *Registry[K, V]) GetOrCreate(key K, create func() V) V {
	// Lookup and counting must not interleave with Clear.
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.entries[key]; ok {
		r.reused++
		return v
	}

	v := create()
	r.entries[key] = v
	r.created++
	log.Debugf("[CACHE] GetOrCreate: created entry %v (size=%d)", key, len(r.entries))
	return v
}

// Size returns the number of distinct entries.
func (r *Registry[K, V]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear drops every entry and resets the counters.
func (r *Registry[K, V]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) > 0 {
		r.entries = make(map[K]V, 64)
	}
	r.created = 0
	r.reused = 0
	log.Debugf("[CACHE] Clear: registry emptied")
}

// Invalidate is Clear, for the Invalidator interface.
func (r *Registry[K, V]) Invalidate() {
	r.Clear()
}

// Stats holds registry counters since the last Clear.
type Stats struct {
	Created int
	Reused  int
	Size    int
}

// ReusePercent returns Reused as an integer percentage of all requests.
// With no requests at all it returns 0.
func (s Stats) ReusePercent() int {
	total := s.Created + s.Reused
	if total == 0 {
		return 0
	}
	return s.Reused * 100 / total
}

// Stats returns current registry statistics.
func (r *Registry[K, V]) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Stats{
		Created: r.created,
		Reused:  r.reused,
		Size:    len(r.entries),
	}
}
