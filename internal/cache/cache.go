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

// Package cache provides the shared-instance registry used by PatternFS.
//
// Design Principles:
//  1. One instance per key - GetOrCreate never builds a second value for a key
//     that is already registered, until the registry is cleared
//  2. Shared ownership - Clear drops the registry's references only; values
//     already handed out stay valid
//  3. Injected, not global - callers construct their own registry so tests and
//     embedders never share state by accident
//
// Currently provides:
// - Registry: generic get-or-create map with created/reused counters
// - GlyphFactory: Registry specialised for text glyphs (Glyph + Placement)
package cache

// Invalidator is implemented by all caches that support full invalidation.
type Invalidator interface {
	// Invalidate clears all entries from the cache.
	Invalidate()
}
