package chart

import (
	"fmt"
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Theme selects the non-data styling of a chart.
type Theme int

const (
	// ThemeDartR is a white panel with black axes and a light horizontal grid.
	ThemeDartR Theme = iota
	// ThemeMinimal drops the axis lines and keeps a light full grid.
	ThemeMinimal
	// ThemeClassic draws axes without any grid.
	ThemeClassic
	// ThemeDark draws on a dark panel with light text.
	ThemeDark
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = ThemeDartR

var themeNames = map[Theme]string{
	ThemeDartR:   "dartR",
	ThemeMinimal: "minimal",
	ThemeClassic: "classic",
	ThemeDark:    "dark",
}

// String returns the theme name.
func (t Theme) String() string {
	if name, ok := themeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Theme(%d)", int(t))
}

// ParseTheme parses a theme name, case-insensitively.
// The empty string selects DefaultTheme.
func ParseTheme(s string) (Theme, error) {
	if s == "" {
		return DefaultTheme, nil
	}
	for t, name := range themeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTheme, s)
}

// Themes returns every theme in declaration order.
func Themes() []Theme {
	return []Theme{ThemeDartR, ThemeMinimal, ThemeClassic, ThemeDark}
}

type themeStyle struct {
	background color.Color
	foreground color.Color
	grid       color.Color
	axisLines  bool
	vGrid      bool
	hGrid      bool
}

func (t Theme) style() themeStyle {
	switch t {
	case ThemeMinimal:
		return themeStyle{
			background: color.White, foreground: colornames.Dimgray, grid: colornames.Gainsboro,
			vGrid: true, hGrid: true,
		}
	case ThemeClassic:
		return themeStyle{background: color.White, foreground: color.Black, axisLines: true}
	case ThemeDark:
		return themeStyle{
			background: colornames.Darkslategray, foreground: colornames.Whitesmoke, grid: colornames.Slategray,
			axisLines: true, vGrid: true, hGrid: true,
		}
	default:
		return themeStyle{
			background: color.White, foreground: color.Black, grid: colornames.Lightgray,
			axisLines: true, hGrid: true,
		}
	}
}

// apply styles p and adds the theme grid, if any.
func (t Theme) apply(p *plot.Plot) {
	s := t.style()

	p.BackgroundColor = s.background
	p.Title.TextStyle.Color = s.foreground
	for _, axis := range []*plot.Axis{&p.X, &p.Y} {
		axis.Label.TextStyle.Color = s.foreground
		axis.Tick.Label.Color = s.foreground
		axis.Tick.LineStyle.Color = s.foreground
		axis.LineStyle.Color = s.foreground
		if !s.axisLines {
			axis.LineStyle.Width = 0
		}
	}

	if !s.vGrid && !s.hGrid {
		return
	}
	grid := plotter.NewGrid()
	grid.Vertical.Color = s.grid
	grid.Horizontal.Color = s.grid
	grid.Vertical.Width = vg.Points(0.5)
	grid.Horizontal.Width = vg.Points(0.5)
	if !s.vGrid {
		grid.Vertical.Color = nil
	}
	if !s.hGrid {
		grid.Horizontal.Color = nil
	}
	p.Add(grid)
}
