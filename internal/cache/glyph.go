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
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Glyph is the shared, immutable part of a rendered character.
type Glyph struct {
	value rune
	font  string
	size  int
	color string
}

func (g *Glyph) Value() rune   { return g.value }
func (g *Glyph) Font() string  { return g.font }
func (g *Glyph) Size() int     { return g.size }
func (g *Glyph) Color() string { return g.color }

func (g *Glyph) String() string {
	return fmt.Sprintf("Glyph{value='%c', font='%s', size=%d, color='%s'}", g.value, g.font, g.size, g.color)
}

// GlyphKey is the composite identity of a Glyph. Fields compare exactly and
// case-sensitively.
type GlyphKey struct {
	Value rune
	Font  string
	Size  int
	Color string
}

// GlyphFactory hands out one *Glyph per GlyphKey.
type GlyphFactory struct {
	registry *Registry[GlyphKey, *Glyph]
}

// NewGlyphFactory creates a factory with its own empty registry.
func NewGlyphFactory() *GlyphFactory {
	return &GlyphFactory{registry: NewRegistry[GlyphKey, *Glyph]()}
}

// Glyph returns the shared glyph for the given attributes, creating it on
// first use.
func (f *GlyphFactory) Glyph(value rune, font string, size int, color string) *Glyph {
	key := GlyphKey{Value: value, Font: font, Size: size, Color: color}
	created := false
	g := f.registry.GetOrCreate(key, func() *Glyph {
		created = true
		return &Glyph{value: value, font: font, size: size, color: color}
	})
	if created {
		log.Debugf("[CACHE] Glyph: creating %s", g)
	} else {
		log.Debugf("[CACHE] Glyph: reusing %s", g)
	}
	return g
}

func (f *GlyphFactory) Size() int    { return f.registry.Size() }
func (f *GlyphFactory) Stats() Stats { return f.registry.Stats() }

// Clear empties the factory. Glyphs already returned remain usable.
func (f *GlyphFactory) Clear() { f.registry.Clear() }

// Invalidate is Clear, for the Invalidator interface.
func (f *GlyphFactory) Invalidate() { f.registry.Clear() }

// Placement is the per-use state of a glyph: where it sits. It references
// the shared glyph and does not own it.
type Placement struct {
	Row    int
	Column int
	Glyph  *Glyph
}

func (p Placement) String() string {
	return fmt.Sprintf("Placement{row=%d, column=%d, glyph=%s}", p.Row, p.Column, p.Glyph)
}

var (
	_ Invalidator = (*Registry[string, int])(nil)
	_ Invalidator = (*GlyphFactory)(nil)
)
