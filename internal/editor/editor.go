// Package editor is a bounded text grid whose characters share glyphs through
// a cache.GlyphFactory.
package editor

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	log "github.com/sirupsen/logrus"

	"patternfs/internal/cache"
	"patternfs/internal/common"
)

// Style is the intrinsic formatting applied to a run of characters.
type Style struct {
	Font  string
	Size  int
	Color string
}

// TextEditor stores one placement per added character. Placing two characters
// at the same position keeps both; the later one is listed after the earlier.
type TextEditor struct {
	glyphs     *cache.GlyphFactory
	placements []cache.Placement
	rows       int
	columns    int
}

// New creates an editor with a rows x columns grid. glyphs is shared, not owned.
func New(rows, columns int, glyphs *cache.GlyphFactory) *TextEditor {
	return &TextEditor{
		glyphs:  glyphs,
		rows:    rows,
		columns: columns,
	}
}

func (e *TextEditor) Rows() int    { return e.rows }
func (e *TextEditor) Columns() int { return e.columns }

// AddCharacter places value at (row, column). Positions outside the grid
// return common.ErrOutOfBounds and leave the editor and the factory untouched.
func (e *TextEditor) AddCharacter(row, column int, value rune, font string, size int, color string) error {
	if row < 0 || row >= e.rows || column < 0 || column >= e.columns {
		return fmt.Errorf("place %q at (%d, %d), max (%d, %d): %w",
			value, row, column, e.rows-1, e.columns-1, common.ErrOutOfBounds)
	}
	glyph := e.glyphs.Glyph(value, font, size, color)
	e.placements = append(e.placements, cache.Placement{Row: row, Column: column, Glyph: glyph})
	log.Debugf("[EDITOR] AddCharacter: %q at (%d, %d)", value, row, column)
	return nil
}

// AddString places s on row starting at column, one rune per column. It stops
// at the first rune that does not fit and returns that error; runes placed
// before it are kept.
func (e *TextEditor) AddString(row, column int, s string, style Style) error {
	col := column
	for _, r := range s {
		if err := e.AddCharacter(row, col, r, style.Font, style.Size, style.Color); err != nil {
			return err
		}
		col++
	}
	return nil
}

// Flow places s starting at (row, column), wrapping to column 0 of the next
// row when a line is full. It returns the position after the last rune.
func (e *TextEditor) Flow(row, column int, s string, style Style) (int, int, error) {
	for _, r := range s {
		if column >= e.columns {
			row++
			column = 0
		}
		if err := e.AddCharacter(row, column, r, style.Font, style.Size, style.Color); err != nil {
			return row, column, err
		}
		column++
	}
	return row, column, nil
}

// Count returns the number of placements.
func (e *TextEditor) Count() int {
	return len(e.placements)
}

// Clear removes all placements. The glyph factory is not touched.
func (e *TextEditor) Clear() {
	e.placements = nil
}

// Placements returns a copy of all placements sorted by row, then column.
func (e *TextEditor) Placements() []cache.Placement {
	sorted := slices.Clone(e.placements)
	slices.SortStableFunc(sorted, func(a, b cache.Placement) int {
		if c := cmp.Compare(a.Row, b.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Column, b.Column)
	})
	return sorted
}

// WriteText writes one "Row N: ..." line per occupied row.
func (e *TextEditor) WriteText(w io.Writer) error {
	if len(e.placements) == 0 {
		_, err := fmt.Fprintln(w, "Text editor is empty.")
		return err
	}
	var line []rune
	current := -1
	flush := func() error {
		if current < 0 {
			return nil
		}
		_, err := fmt.Fprintf(w, "Row %d: %s\n", current, string(line))
		return err
	}
	for _, p := range e.Placements() {
		if p.Row != current {
			if err := flush(); err != nil {
				return err
			}
			current = p.Row
			line = line[:0]
		}
		line = append(line, p.Glyph.Value())
	}
	return flush()
}

// WriteDetails writes one line per placement with its glyph attributes.
func (e *TextEditor) WriteDetails(w io.Writer) error {
	if len(e.placements) == 0 {
		_, err := fmt.Fprintln(w, "No characters to display.")
		return err
	}
	for _, p := range e.Placements() {
		g := p.Glyph
		if _, err := fmt.Fprintf(w, "'%c' at (%d, %d) font: %s, size: %d, color: %s\n",
			g.Value(), p.Row, p.Column, g.Font(), g.Size(), g.Color()); err != nil {
			return err
		}
	}
	return nil
}
