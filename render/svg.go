package render

import (
	"bytes"
	"fmt"
	"html"
	"image/color"
	"io"

	"github.com/TFMV/dijkstraviz/scene"
)

// SVGSurface records drawing calls as SVG elements.
type SVGSurface struct {
	width, height float64
	background    color.Color

	body    bytes.Buffer
	shadow  scene.Shadow
	filters []scene.Shadow
}

// NewSVGSurface creates an empty SVG document of the given size.
func NewSVGSurface(width, height float64, background color.Color) *SVGSurface {
	if background == nil {
		background = color.White
	}
	return &SVGSurface{width: width, height: height, background: background}
}

func (s *SVGSurface) Clear() {
	s.body.Reset()
	s.filters = s.filters[:0]
}

func (s *SVGSurface) SetShadow(sh scene.Shadow) {
	s.shadow = sh
}

func (s *SVGSurface) FillCircle(x, y, r float64, c color.Color) {
	fill, opacity := hexString(c)
	fmt.Fprintf(&s.body, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" fill-opacity="%.3g"%s/>`+"\n",
		x, y, r, fill, opacity, s.filterAttr())
}

func (s *SVGSurface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	stroke, opacity := hexString(c)
	fmt.Fprintf(&s.body, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-opacity="%.3g" stroke-width="%.2f" stroke-linecap="round"%s/>`+"\n",
		x1, y1, x2, y2, stroke, opacity, width, s.filterAttr())
}

func (s *SVGSurface) FillText(str string, x, y float64, f scene.Font, c color.Color) {
	fill, opacity := hexString(c)
	weight := "normal"
	if f.Bold() {
		weight = "bold"
	}
	fmt.Fprintf(&s.body, `<text x="%.2f" y="%.2f" font-family="%s" font-size="%gpt" font-weight="%s" fill="%s" fill-opacity="%.3g"%s>%s</text>`+"\n",
		x, y, html.EscapeString(f.Family), f.Size, weight, fill, opacity, s.filterAttr(), html.EscapeString(str))
}

// MeasureText estimates text extents; SVG has no layout engine to ask.
// Monospace glyphs are 0.6em wide, proportional ones average 0.55em.
func (s *SVGSurface) MeasureText(str string, f scene.Font) (float64, float64) {
	advance := 0.55
	if isMonospace(f.Family) {
		advance = 0.6
	}
	return float64(len([]rune(str))) * f.Size * advance, f.Size * 0.75
}

// filterAttr returns the filter reference for the current shadow,
// registering a new filter definition the first time a shadow is seen.
func (s *SVGSurface) filterAttr() string {
	if s.shadow.None() {
		return ""
	}
	for i, f := range s.filters {
		if sameShadow(f, s.shadow) {
			return fmt.Sprintf(` filter="url(#shadow%d)"`, i)
		}
	}
	s.filters = append(s.filters, s.shadow)
	return fmt.Sprintf(` filter="url(#shadow%d)"`, len(s.filters)-1)
}

// Bytes returns the complete document.
func (s *SVGSurface) Bytes() []byte {
	var buf bytes.Buffer
	bg, _ := hexString(s.background)

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
`, s.width, s.height, s.width, s.height)

	if len(s.filters) > 0 {
		buf.WriteString("<defs>\n")
		for i, f := range s.filters {
			c, opacity := hexString(f.Color)
			fmt.Fprintf(&buf, `  <filter id="shadow%d" x="-50%%" y="-50%%" width="200%%" height="200%%">
    <feDropShadow dx="%g" dy="%g" stdDeviation="%g" flood-color="%s" flood-opacity="%.3g"/>
  </filter>
`, i, f.OffsetX, f.OffsetY, f.Blur/2, c, opacity)
		}
		buf.WriteString("</defs>\n")
	}

	fmt.Fprintf(&buf, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", bg)
	buf.Write(s.body.Bytes())
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// Encode writes the document to w.
func (s *SVGSurface) Encode(w io.Writer) error {
	if _, err := w.Write(s.Bytes()); err != nil {
		return fmt.Errorf("render: write svg: %w", err)
	}
	return nil
}

func sameShadow(a, b scene.Shadow) bool {
	ac, _ := hexString(a.Color)
	bc, _ := hexString(b.Color)
	_, _, _, aa := a.Color.RGBA()
	_, _, _, ba := b.Color.RGBA()
	return ac == bc && aa == ba && a.Blur == b.Blur && a.OffsetX == b.OffsetX && a.OffsetY == b.OffsetY
}
