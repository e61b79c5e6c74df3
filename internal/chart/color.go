package chart

import (
	"encoding/hex"
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Default palette, a viridis pair.
const (
	DefaultBorder = "#3B528BFF"
	DefaultFill   = "#21908CFF"
)

// DefaultColors returns the default (border, fill) pair.
func DefaultColors() []string {
	return []string{DefaultBorder, DefaultFill}
}

// ParseColor parses "#RRGGBB", "#RRGGBBAA" or an SVG color name.
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		raw, err := hex.DecodeString(s[1:])
		if err != nil || (len(raw) != 3 && len(raw) != 4) {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
		c := color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 0xff}
		if len(raw) == 4 {
			c.A = raw[3]
		}
		return c, nil
	}

	rgba, ok := colornames.Map[strings.ToLower(s)]
	if !ok {
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.NRGBA{R: rgba.R, G: rgba.G, B: rgba.B, A: rgba.A}, nil
}

// Palette is the resolved (border, fill) pair of a chart.
type Palette struct {
	Border string `msgpack:"border"`
	Fill   string `msgpack:"fill"`
}

// ResolvePalette turns a user color list into a Palette.
// Fewer than two entries are completed from the default palette and more
// than two are truncated; both cases return a warning message. Colors must
// have been checked with ParseColor beforehand.
func ResolvePalette(colors []string) (Palette, string) {
	defaults := DefaultColors()
	switch {
	case len(colors) == 0:
		return Palette{Border: defaults[0], Fill: defaults[1]}, ""
	case len(colors) == 1:
		return Palette{Border: colors[0], Fill: defaults[1]},
			fmt.Sprintf("only one color given, using %s as fill color", defaults[1])
	case len(colors) > 2:
		return Palette{Border: colors[0], Fill: colors[1]},
			fmt.Sprintf("%d colors given, only the first two are used", len(colors))
	default:
		return Palette{Border: colors[0], Fill: colors[1]}, ""
	}
}

// mustColor parses a color already validated by ParseColor, falling back
// to black.
func mustColor(s string) color.Color {
	c, err := ParseColor(s)
	if err != nil {
		return color.Black
	}
	return c
}
