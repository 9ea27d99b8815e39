package render

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/TFMV/dijkstraviz/scene"
)

// Cell size in pixels of one ASCII character.
const (
	cellWidth  = 10.0
	cellHeight = 20.0
)

// ASCIISurface renders a coarse text preview: one character per 10x20 pixel
// cell, lines as dots, circles as 'O' overwritten by their labels.
type ASCIISurface struct {
	width, height int
	grid          [][]rune
	lineGlyphs    map[color.RGBA]rune
}

// NewASCIISurface creates a preview for a surface of the given pixel size.
func NewASCIISurface(pixelWidth, pixelHeight float64) *ASCIISurface {
	a := &ASCIISurface{
		width:      max(int(pixelWidth/cellWidth), 8),
		height:     max(int(pixelHeight/cellHeight), 4),
		lineGlyphs: make(map[color.RGBA]rune),
	}
	a.Clear()
	return a
}

// SetLineGlyph draws lines of color c with r instead of a dot, so a
// highlighted path stays visible without color.
func (a *ASCIISurface) SetLineGlyph(c color.Color, r rune) {
	a.lineGlyphs[rgbaOf(c)] = r
}

func (a *ASCIISurface) Clear() {
	a.grid = make([][]rune, a.height)
	for i := range a.grid {
		a.grid[i] = []rune(strings.Repeat(" ", a.width))
	}
}

func (a *ASCIISurface) SetShadow(scene.Shadow) {}

func (a *ASCIISurface) FillCircle(x, y, r float64, _ color.Color) {
	cx, cy := a.cell(x, y)
	a.plot(cx, cy, 'O')
}

func (a *ASCIISurface) StrokeLine(x1, y1, x2, y2, _ float64, c color.Color) {
	glyph, ok := a.lineGlyphs[rgbaOf(c)]
	if !ok {
		glyph = '·'
	}
	cx1, cy1 := a.cell(x1, y1)
	cx2, cy2 := a.cell(x2, y2)
	drawLine(a.grid, cx1, cy1, cx2, cy2, glyph)
}

func (a *ASCIISurface) FillText(s string, x, y float64, _ scene.Font, _ color.Color) {
	// Text arrives left-aligned on its baseline; move back to the cell the
	// caller centered it on.
	cx, cy := a.cell(x+cellWidth/2, y-cellHeight/2)
	for i, r := range []rune(s) {
		a.plot(cx+i, cy, r)
	}
}

func (a *ASCIISurface) MeasureText(s string, _ scene.Font) (float64, float64) {
	return float64(len([]rune(s))) * cellWidth, cellHeight
}

// String returns the grid, one row per line.
func (a *ASCIISurface) String() string {
	var b strings.Builder
	for _, row := range a.grid {
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteRune('\n')
	}
	return b.String()
}

// Encode writes the grid to w.
func (a *ASCIISurface) Encode(w io.Writer) error {
	if _, err := io.WriteString(w, a.String()); err != nil {
		return fmt.Errorf("render: write ascii: %w", err)
	}
	return nil
}

func (a *ASCIISurface) cell(x, y float64) (int, int) {
	return int(math.Floor(x / cellWidth)), int(math.Floor(y / cellHeight))
}

func (a *ASCIISurface) plot(x, y int, r rune) {
	if y >= 0 && y < len(a.grid) && x >= 0 && x < len(a.grid[y]) {
		a.grid[y][x] = r
	}
}

// drawLine plots a line on the grid using Bresenham's algorithm.
func drawLine(grid [][]rune, x1, y1, x2, y2 int, glyph rune) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) {
			grid[y1][x1] = glyph
		}
		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func rgbaOf(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{}
	}
	return color.RGBAModel.Convert(c).(color.RGBA)
}
