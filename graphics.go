package treelog

import (
	"math/rand"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// Graphics is one set of tree-drawing glyphs for indented log output.
type Graphics struct {
	Line            string
	DoubleLine      string
	IndentSegment   string
	IndentOpen      string
	IndentClose     string
	IndentException string
}

// GraphicsGraphical uses unicode box-drawing glyphs, for terminals.
var GraphicsGraphical = Graphics{
	Line:            "─",
	DoubleLine:      "═",
	IndentSegment:   "  │ ",
	IndentOpen:      "  ├───┮ ",
	IndentClose:     "  ╰╼",
	IndentException: "  ╘═",
}

// GraphicsASCII is the plain-ASCII fallback, for dumb terminals and files.
var GraphicsASCII = Graphics{
	Line:            "-",
	DoubleLine:      "=",
	IndentSegment:   "..| ",
	IndentOpen:      "..|---+ ",
	IndentClose:     "  '-",
	IndentException: "  '=",
}

// indentPalette colors the indentation columns so adjacent nesting levels
// are visually distinguishable. The order is shuffled once per process and
// stable thereafter, so every logger core draws the same columns in the
// same colors.
var indentPalette = []*color.Color{
	color.New(color.FgGreen),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
	color.New(color.FgYellow),
}

var (
	shuffleOnce     sync.Once
	shuffledPalette []*color.Color
)

func processPalette() []*color.Color {
	shuffleOnce.Do(func() {
		shuffledPalette = make([]*color.Color, len(indentPalette))
		copy(shuffledPalette, indentPalette)
		rand.Shuffle(len(shuffledPalette), func(i, j int) {
			shuffledPalette[i], shuffledPalette[j] = shuffledPalette[j], shuffledPalette[i]
		})
	})
	return shuffledPalette
}

// graphicsState is the resolved drawing configuration of one logger core.
type graphicsState struct {
	glyphs   Graphics
	coloring bool
	palette  []*color.Color
}

// newGraphicsState resolves the glyph set and the process-wide palette.
func newGraphicsState(glyphs Graphics, coloring bool) graphicsState {
	state := graphicsState{glyphs: glyphs, coloring: coloring}
	if coloring {
		state.palette = processPalette()
	}
	return state
}

// drawing builds the per-line decoration: the indent segment repeated depth
// times, then the trailing glyph (the segment itself by default, or an
// open/close/exception override), each column cycled through the palette.
func (g graphicsState) drawing(depth int, trailing string) string {
	if trailing == "" {
		trailing = g.glyphs.IndentSegment
	}
	var b strings.Builder
	for i := 0; i < depth; i++ {
		b.WriteString(g.colorize(i, g.glyphs.IndentSegment))
	}
	b.WriteString(g.colorize(depth, trailing))
	return b.String()
}

// colorize paints one indent column when coloring is on.
func (g graphicsState) colorize(column int, segment string) string {
	if !g.coloring || len(g.palette) == 0 {
		return segment
	}
	return g.palette[column%len(g.palette)].Sprint(segment)
}
