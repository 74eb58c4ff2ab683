package rt

import (
	"fmt"
	"image/color"
)

// RGB is an 8-bit per channel color, the form colors take in the frame
// contract (3 bytes, R then G then B).
type RGB struct {
	R, G, B uint8
}

// Common colors.
var (
	Black = RGB{0, 0, 0}
	White = RGB{0xff, 0xff, 0xff}
	Red   = RGB{0xff, 0, 0}
	Green = RGB{0, 0xff, 0}
	Blue  = RGB{0, 0, 0xff}
)

// Bytes returns the wire form of c.
func (c RGB) Bytes() [3]uint8 {
	return [3]uint8{c.R, c.G, c.B}
}

// Color converts c to an opaque color.Color.
func (c RGB) Color() color.Color {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// Hex returns c as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// ParseHex parses "#rgb" or "#rrggbb" (the leading '#' is optional).
func ParseHex(hex string) (RGB, error) {
	s := hex
	if s != "" && s[0] == '#' {
		s = s[1:]
	}

	var r, g, b uint32
	var ok bool
	switch len(s) {
	case 3: // RGB
		r, ok = parseHexDigits(s[0:1])
		if ok {
			g, ok = parseHexDigits(s[1:2])
		}
		if ok {
			b, ok = parseHexDigits(s[2:3])
		}
		r, g, b = r*17, g*17, b*17
	case 6: // RRGGBB
		r, ok = parseHexDigits(s[0:2])
		if ok {
			g, ok = parseHexDigits(s[2:4])
		}
		if ok {
			b, ok = parseHexDigits(s[4:6])
		}
	}
	if !ok {
		return RGB{}, fmt.Errorf("rt: invalid hex color %q", hex)
	}
	return RGB{R: uint8(r), G: uint8(g), B: uint8(b)}, nil //nolint:gosec // at most 0xff
}

func parseHexDigits(s string) (uint32, bool) {
	var v uint32
	for _, c := range s {
		v <<= 4
		switch {
		case c >= '0' && c <= '9':
			v |= uint32(c - '0')
		case c >= 'a' && c <= 'f':
			v |= uint32(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			v |= uint32(c - 'A' + 10)
		default:
			return 0, false
		}
	}
	return v, true
}
