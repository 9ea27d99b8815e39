package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/TFMV/dijkstraviz/scene"
)

// shadowPasses is how many translucent layers approximate a blurred shadow.
const shadowPasses = 4

// RasterSurface paints onto an in-memory RGBA image.
type RasterSurface struct {
	dc         *gg.Context
	background color.Color
	shadow     scene.Shadow
	faces      map[scene.Font]font.Face
}

// NewRasterSurface creates a width x height image cleared to background.
func NewRasterSurface(width, height int, background color.Color) *RasterSurface {
	if background == nil {
		background = color.White
	}
	r := &RasterSurface{
		dc:         gg.NewContext(width, height),
		background: background,
		faces:      make(map[scene.Font]font.Face),
	}
	r.Clear()
	return r
}

func (r *RasterSurface) Clear() {
	r.dc.SetColor(r.background)
	r.dc.Clear()
}

func (r *RasterSurface) SetShadow(s scene.Shadow) {
	r.shadow = s
}

func (r *RasterSurface) FillCircle(x, y, radius float64, c color.Color) {
	r.withShadow(func(dx, dy, spread float64) {
		r.dc.DrawCircle(x+dx, y+dy, radius+spread)
		r.dc.Fill()
	})
	r.dc.SetColor(c)
	r.dc.DrawCircle(x, y, radius)
	r.dc.Fill()
}

func (r *RasterSurface) StrokeLine(x1, y1, x2, y2, width float64, c color.Color) {
	r.dc.SetLineCap(gg.LineCapRound)
	r.withShadow(func(dx, dy, spread float64) {
		r.dc.SetLineWidth(width + 2*spread)
		r.dc.DrawLine(x1+dx, y1+dy, x2+dx, y2+dy)
		r.dc.Stroke()
	})
	r.dc.SetColor(c)
	r.dc.SetLineWidth(width)
	r.dc.DrawLine(x1, y1, x2, y2)
	r.dc.Stroke()
}

func (r *RasterSurface) FillText(s string, x, y float64, f scene.Font, c color.Color) {
	r.dc.SetFontFace(r.face(f))
	r.withShadow(func(dx, dy, _ float64) {
		r.dc.DrawString(s, x+dx, y+dy)
	})
	r.dc.SetColor(c)
	r.dc.DrawString(s, x, y)
}

// MeasureText returns the advance width of s and its approximate cap height.
func (r *RasterSurface) MeasureText(s string, f scene.Font) (float64, float64) {
	r.dc.SetFontFace(r.face(f))
	w, _ := r.dc.MeasureString(s)
	// Cap height of the Go fonts is roughly three quarters of the size.
	return w, f.Size * 0.75
}

// withShadow runs draw once per shadow layer, each layer wider and fainter,
// with the current color set to that layer's shade.
func (r *RasterSurface) withShadow(draw func(dx, dy, spread float64)) {
	if r.shadow.None() {
		return
	}
	base := color.NRGBAModel.Convert(r.shadow.Color).(color.NRGBA)
	for i := shadowPasses; i >= 1; i-- {
		spread := r.shadow.Blur * float64(i) / shadowPasses / 2
		layer := base
		layer.A = uint8(float64(base.A) / float64(shadowPasses+1) / float64(i))
		r.dc.SetColor(layer)
		draw(r.shadow.OffsetX, r.shadow.OffsetY, spread)
	}
}

func (r *RasterSurface) face(f scene.Font) font.Face {
	if face, ok := r.faces[f]; ok {
		return face
	}
	size := f.Size
	if size <= 0 {
		size = 12
	}
	face := truetype.NewFace(typeface(f), &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	r.faces[f] = face
	return face
}

// Image returns the rendered image.
func (r *RasterSurface) Image() image.Image {
	return r.dc.Image()
}

// SavePNG writes the image to path.
func (r *RasterSurface) SavePNG(path string) error {
	return r.dc.SavePNG(path)
}

// Encode writes the image as PNG.
func (r *RasterSurface) Encode(w io.Writer) error {
	if err := png.Encode(w, r.dc.Image()); err != nil {
		return fmt.Errorf("render: encode png: %w", err)
	}
	return nil
}

var (
	typefacesOnce sync.Once
	typefaces     map[string]*truetype.Font
)

// typeface maps a font to one of the bundled Go fonts: monospace families
// use Go Mono, everything else Go Regular, each with a bold variant.
func typeface(f scene.Font) *truetype.Font {
	typefacesOnce.Do(func() {
		typefaces = map[string]*truetype.Font{
			"mono":      mustParse(gomono.TTF),
			"mono-bold": mustParse(gomonobold.TTF),
			"sans":      mustParse(goregular.TTF),
			"sans-bold": mustParse(gobold.TTF),
		}
	})

	key := "sans"
	if isMonospace(f.Family) {
		key = "mono"
	}
	if f.Bold() {
		key += "-bold"
	}
	return typefaces[key]
}

// mustParse panics on a bundled font that fails to parse.
func mustParse(ttf []byte) *truetype.Font {
	f, err := truetype.Parse(ttf)
	if err != nil {
		panic(fmt.Sprintf("render: bundled font: %v", err))
	}
	return f
}

func isMonospace(family string) bool {
	switch strings.ToLower(strings.TrimSpace(family)) {
	case "monospace", "mono", "courier", "courier new", "go mono", "menlo", "consolas":
		return true
	}
	return false
}
