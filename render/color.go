package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ErrBadColor is returned for color strings ParseHexColor cannot read.
var ErrBadColor = errors.New("render: unrecognized color")

// ParseHexColor reads "#rgb", "#rrggbb", "#rrggbbaa", "rgb(r, g, b)" and
// "rgba(r, g, b, a)" with a in [0, 1].
func ParseHexColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s, s[5:len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunctional(s, s[4:len(s)-1], 3)
	}
	return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

// MustParseColor is ParseHexColor for compile-time constants.
func MustParseColor(s string) color.RGBA {
	c, err := ParseHexColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

func parseHex(hex string) (color.RGBA, error) {
	digits := make([]uint8, len(hex))
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok {
			return color.RGBA{}, fmt.Errorf("%w: #%s", ErrBadColor, hex)
		}
		digits[i] = d
	}

	switch len(digits) {
	case 3:
		// Each digit is doubled: #fb2 is #ffbb22.
		return color.RGBA{digits[0] * 17, digits[1] * 17, digits[2] * 17, 0xff}, nil
	case 6:
		return color.RGBA{digits[0]<<4 | digits[1], digits[2]<<4 | digits[3], digits[4]<<4 | digits[5], 0xff}, nil
	case 8:
		// Non-premultiplied alpha in the string, premultiplied in RGBA.
		return premultiply(
			digits[0]<<4|digits[1],
			digits[2]<<4|digits[3],
			digits[4]<<4|digits[5],
			float64(digits[6]<<4|digits[7])/255,
		), nil
	}
	return color.RGBA{}, fmt.Errorf("%w: #%s", ErrBadColor, hex)
}

func parseFunctional(orig, args string, want int) (color.RGBA, error) {
	parts := strings.Split(args, ",")
	if len(parts) != want {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
		}
		rgb[i] = uint8(v)
	}

	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return color.RGBA{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
		}
		alpha = a
	}
	return premultiply(rgb[0], rgb[1], rgb[2], alpha), nil
}

func premultiply(r, g, b uint8, alpha float64) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(math.Round(float64(v) * alpha)) }
	return color.RGBA{scale(r), scale(g), scale(b), uint8(math.Round(alpha * 255))}
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// hexString formats c as "#rrggbb" plus its opacity in [0, 1].
func hexString(c color.Color) (string, float64) {
	if c == nil {
		return "#000000", 0
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B), float64(n.A) / 255
}
