package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"patternfs/internal/cache"
	"patternfs/internal/editor"
)

var (
	textFont    string
	textSize    int
	textColor   string
	textDetails bool
)

var textCmd = &cobra.Command{
	Use:   "text [text...]",
	Short: "Lay out text in the editor grid and report glyph sharing",
	Long: `Lay out text in the editor grid and report how many glyphs were shared.

Without arguments a fixed demo runs: repeated characters, mixed styles and a
long sentence. With arguments the text is flowed across the grid in one style.
The grid size comes from the editor section of settings.yaml.

Examples:
  patternfs text
  patternfs text --font Courier --size 12 "THE QUICK BROWN FOX"`,
	RunE: runText,
}

func init() {
	textCmd.Flags().StringVar(&textFont, "font", "Arial", "Font family")
	textCmd.Flags().IntVar(&textSize, "size", 12, "Font size")
	textCmd.Flags().StringVar(&textColor, "color", "black", "Text color")
	textCmd.Flags().BoolVar(&textDetails, "details", false, "Print every placement with its glyph attributes")
	rootCmd.AddCommand(textCmd)
}

func runText(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	glyphs := cache.NewGlyphFactory()
	ed := editor.New(settings.Editor.Rows, settings.Editor.Columns, glyphs)

	if len(args) > 0 {
		style := editor.Style{Font: textFont, Size: textSize, Color: textColor}
		if _, _, err := ed.Flow(0, 0, strings.Join(args, " "), style); err != nil {
			return err
		}
		if err := writeEditor(out, ed, textDetails); err != nil {
			return err
		}
		writeGlyphStats(out, glyphs.Stats())
		return nil
	}
	return runTextDemo(out, ed, glyphs)
}

func runTextDemo(out io.Writer, ed *editor.TextEditor, glyphs *cache.GlyphFactory) error {
	fmt.Fprintln(out, "1. Repeated characters")
	plain := editor.Style{Font: "Arial", Size: 12, Color: "black"}
	for row := 0; row < 6 && row < ed.Rows(); row++ {
		ch := "AAAAA"
		if row >= 3 {
			ch = "BBBBB"
		}
		if err := ed.AddString(row, 0, ch, plain); err != nil {
			return err
		}
	}
	if err := writeEditor(out, ed, textDetails); err != nil {
		return err
	}
	writeGlyphStats(out, glyphs.Stats())

	fmt.Fprintln(out, "\n2. Mixed styles")
	ed.Clear()
	glyphs.Clear()
	runs := []struct {
		row   int
		text  string
		style editor.Style
	}{
		{0, "Hello", editor.Style{Font: "Arial", Size: 16, Color: "blue"}},
		{1, "World", editor.Style{Font: "Times", Size: 14, Color: "red"}},
		{2, "!!!", editor.Style{Font: "Arial", Size: 20, Color: "green"}},
	}
	for _, r := range runs {
		if err := ed.AddString(r.row, 0, r.text, r.style); err != nil {
			return err
		}
	}
	if err := writeEditor(out, ed, textDetails); err != nil {
		return err
	}
	writeGlyphStats(out, glyphs.Stats())

	fmt.Fprintln(out, "\n3. Long text")
	ed.Clear()
	glyphs.Clear()
	courier := editor.Style{Font: "Courier", Size: 12, Color: "black"}
	if _, _, err := ed.Flow(0, 0, "THE QUICK BROWN FOX JUMPS OVER THE LAZY DOG ", courier); err != nil {
		return err
	}
	if err := ed.WriteText(out); err != nil {
		return err
	}
	fmt.Fprintf(out, "Character count: %d\n", ed.Count())
	writeGlyphStats(out, glyphs.Stats())
	return nil
}

func writeEditor(out io.Writer, ed *editor.TextEditor, details bool) error {
	if err := ed.WriteText(out); err != nil {
		return err
	}
	if details {
		return ed.WriteDetails(out)
	}
	return nil
}

func writeGlyphStats(out io.Writer, s cache.Stats) {
	fmt.Fprintf(out, "Glyphs: %d cached, %d created, %d reused (%d%% shared)\n",
		s.Size, s.Created, s.Reused, s.ReusePercent())
}
