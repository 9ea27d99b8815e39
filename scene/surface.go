// Package scene is a small retained-mode drawing and interaction engine.
//
// A Scene holds circles, the lines between them and the lines' texts. It
// redraws onto a Surface only when something changed, answers hit tests
// front-most first, and turns raw mouse input into an eased drag of one
// circle at a time. The scene knows nothing about graphs; callers observe it
// through events.
package scene

import (
	"fmt"
	"image/color"
	"strings"
)

// Surface is the drawing substrate a scene paints onto. Coordinates are in
// pixels with the origin at the top left.
type Surface interface {
	// Clear wipes the whole surface.
	Clear()
	// SetShadow sets the shadow applied to subsequent fills and strokes.
	SetShadow(s Shadow)
	FillCircle(x, y, r float64, c color.Color)
	// StrokeLine draws a round-capped segment.
	StrokeLine(x1, y1, x2, y2, width float64, c color.Color)
	// FillText draws s with its left end on the baseline at (x, y).
	FillText(s string, x, y float64, f Font, c color.Color)
	// MeasureText returns the rendered width and height of s.
	MeasureText(s string, f Font) (w, h float64)
}

// Font describes how text is drawn.
type Font struct {
	Weight string  // "bold" or "" for regular
	Size   float64 // points
	Family string  // e.g. "monospace"
}

// Bold reports whether the font uses a bold weight.
func (f Font) Bold() bool {
	return strings.EqualFold(f.Weight, "bold")
}

// String renders the font in CSS shorthand, e.g. "bold 20pt monospace".
func (f Font) String() string {
	size := fmt.Sprintf("%gpt", f.Size)
	if f.Weight == "" {
		return size + " " + f.Family
	}
	return f.Weight + " " + size + " " + f.Family
}

// Cursor is the pointer style the host should display.
type Cursor string

const (
	CursorDefault Cursor = "default"
	CursorPointer Cursor = "pointer"
	CursorMove    Cursor = "move"
)
