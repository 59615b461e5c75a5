package treelog

import (
	"strings"
	"testing"
)

// TestDrawingDepth tests the repeated-segment prefix construction
func TestDrawingDepth(t *testing.T) {
	state := newGraphicsState(GraphicsASCII, false)

	if got := state.drawing(0, ""); got != GraphicsASCII.IndentSegment {
		t.Errorf("Expected the bare segment at depth 0, got %q", got)
	}
	want := strings.Repeat(GraphicsASCII.IndentSegment, 2) + GraphicsASCII.IndentClose
	if got := state.drawing(2, GraphicsASCII.IndentClose); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

// TestPaletteSharedAcrossCores tests that every colored core uses the same
// process-wide palette order
func TestPaletteSharedAcrossCores(t *testing.T) {
	first := newGraphicsState(GraphicsGraphical, true)
	second := newGraphicsState(GraphicsASCII, true)

	if len(first.palette) != len(indentPalette) {
		t.Fatalf("Expected a full palette, got %d colors", len(first.palette))
	}
	for i := range first.palette {
		if first.palette[i] != second.palette[i] {
			t.Fatalf("Expected both cores to share one palette order, differ at %d", i)
		}
	}
}
