package scene

import (
	"image/color"

	"github.com/TFMV/dijkstraviz/ident"
)

// Shadow is a blurred, offset copy drawn beneath a shape.
type Shadow struct {
	Color   color.Color
	Blur    float64
	OffsetX float64
	OffsetY float64
}

// None reports whether the shadow draws nothing.
func (s Shadow) None() bool {
	if s.Color == nil {
		return true
	}
	_, _, _, a := s.Color.RGBA()
	return a == 0
}

// Apply configures s as the surface's current shadow.
func (s Shadow) Apply(surface Surface) {
	surface.SetShadow(s)
}

// Text is a string drawn centered on its anchor.
type Text struct {
	ID     ident.ID
	Color  color.Color
	X, Y   float64
	Font   Font
	String string
	Shadow Shadow
}

// NewText creates a text anchored at (x, y).
func NewText(ids *ident.Allocator, s string, x, y float64, font Font, c color.Color) *Text {
	return &Text{ID: ids.Next(), Color: c, X: x, Y: y, Font: font, String: s}
}

// Draw paints the text centered on (X, Y). The anchor is not modified, so
// repeated draws land in the same place.
func (t *Text) Draw(s Surface) {
	if t.String == "" {
		return
	}
	w, h := s.MeasureText(t.String, t.Font)
	t.Shadow.Apply(s)
	s.FillText(t.String, t.X-w/2, t.Y+h/2, t.Font, t.Color)
}

// Line is a segment between two circles. Its endpoints follow the circles,
// and its text sits at the midpoint.
type Line struct {
	ID        ident.ID
	Color     color.Color
	Width     float64
	Shadow    Shadow
	Text      *Text
	CircleOut *Circle
	CircleIn  *Circle
}

// NewLine creates a line from out to in and registers it on both circles.
func NewLine(ids *ident.Allocator, out, in *Circle, width float64, c color.Color, text *Text) *Line {
	l := &Line{ID: ids.Next(), Color: c, Width: width, Text: text, CircleOut: out, CircleIn: in}
	out.AddLineOut(l)
	in.AddLineIn(l)
	l.centerText()
	return l
}

// Draw strokes the line and re-centers its text. The text itself is drawn in
// the scene's text pass.
func (l *Line) Draw(s Surface) {
	l.Shadow.Apply(s)
	s.StrokeLine(l.CircleOut.X, l.CircleOut.Y, l.CircleIn.X, l.CircleIn.Y, l.Width, l.Color)
	l.centerText()
}

// Other returns the endpoint opposite c, or nil if c is not an endpoint.
func (l *Line) Other(c *Circle) *Circle {
	switch c {
	case l.CircleOut:
		return l.CircleIn
	case l.CircleIn:
		return l.CircleOut
	}
	return nil
}

func (l *Line) centerText() {
	if l.Text == nil || l.CircleOut == nil || l.CircleIn == nil {
		return
	}
	l.Text.X = (l.CircleOut.X + l.CircleIn.X) / 2
	l.Text.Y = (l.CircleOut.Y + l.CircleIn.Y) / 2
}

// Circle is a filled disc with an optional label. Key is the caller's name
// for what the circle represents.
type Circle struct {
	ID     ident.ID
	Key    int
	Color  color.Color
	Radius float64
	X, Y   float64
	Shadow Shadow
	Text   *Text

	LinesOut []*Line
	LinesIn  []*Line
}

// NewCircle creates a circle centered on (x, y).
func NewCircle(ids *ident.Allocator, key int, x, y, radius float64, c color.Color, text *Text) *Circle {
	return &Circle{ID: ids.Next(), Key: key, Color: c, Radius: radius, X: x, Y: y, Text: text}
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c *Circle) Contains(x, y float64) bool {
	dx := x - c.X
	dy := y - c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// AddLineOut records a line that starts at c.
func (c *Circle) AddLineOut(l *Line) {
	c.LinesOut = append(c.LinesOut, l)
}

// AddLineIn records a line that ends at c.
func (c *Circle) AddLineIn(l *Line) {
	c.LinesIn = append(c.LinesIn, l)
}

// Lines returns every incident line, outgoing first.
func (c *Circle) Lines() []*Line {
	lines := make([]*Line, 0, len(c.LinesOut)+len(c.LinesIn))
	lines = append(lines, c.LinesOut...)
	return append(lines, c.LinesIn...)
}

// Draw fills the circle and draws its label on the center.
func (c *Circle) Draw(s Surface) {
	c.Shadow.Apply(s)
	s.FillCircle(c.X, c.Y, c.Radius, c.Color)
	if c.Text != nil {
		c.Text.X = c.X
		c.Text.Y = c.Y
		c.Text.Draw(s)
	}
}
