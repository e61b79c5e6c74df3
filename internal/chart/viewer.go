package chart

import (
	"fmt"
	"io"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/plot/plotter"
)

// Viewer displays a chart.
type Viewer interface {
	View(s Spec) error
}

// ViewerFunc adapts a function to the Viewer interface.
type ViewerFunc func(s Spec) error

// View calls f(s).
func (f ViewerFunc) View(s Spec) error { return f(s) }

// TerminalViewer draws a text rendition of the chart: one boxplot line
// above histogram bars.
type TerminalViewer struct {
	out   io.Writer
	width int
}

// NewTerminalViewer creates a TerminalViewer writing lines of at most width
// characters. A non-positive width selects 60.
func NewTerminalViewer(out io.Writer, width int) *TerminalViewer {
	if width <= 0 {
		width = 60
	}
	return &TerminalViewer{out: out, width: width}
}

// View writes the chart to the viewer's stream.
func (v *TerminalViewer) View(s Spec) (err error) {
	if len(s.Values) == 0 {
		return ErrEmptyChart
	}
	data := stats.Float64Data(s.Values)
	lo, _ := data.Min()
	hi, _ := data.Max()
	q := stats.Quartiles{Q1: lo, Q2: lo, Q3: lo}
	if len(data) > 1 {
		if q, err = stats.Quartile(data); err != nil {
			return err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", s.Title)
	fmt.Fprintf(&b, "%s\n", v.boxLine(lo, hi, q))

	h, err := plotter.NewHist(plotter.Values(s.Values), s.Bins)
	if err != nil {
		return fmt.Errorf("failed to bin values: %w", err)
	}
	peak := 0.0
	for _, bin := range h.Bins {
		peak = max(peak, bin.Weight)
	}
	barWidth := max(v.width-24, minBarWidth)
	for _, bin := range h.Bins {
		n := 0
		if peak > 0 {
			n = int(bin.Weight / peak * float64(barWidth))
		}
		fmt.Fprintf(&b, "%10.4g %6d |%s\n", bin.Min, int(bin.Weight), strings.Repeat("#", n))
	}
	fmt.Fprintf(&b, "%s\n", s.XLabel)

	_, err = io.WriteString(v.out, b.String())
	return err
}

// minBarWidth is the longest bar on viewers too narrow for the label columns.
const minBarWidth = 10

// boxLine maps min, quartiles and max onto a single line: whiskers as '-',
// the box as '=' and the median as '|'.
func (v *TerminalViewer) boxLine(lo, hi float64, q stats.Quartiles) string {
	line := []rune(strings.Repeat(" ", v.width))
	pos := func(x float64) int {
		if hi == lo {
			return v.width / 2
		}
		return int((x - lo) / (hi - lo) * float64(v.width-1))
	}
	for i := pos(lo); i <= pos(hi); i++ {
		line[i] = '-'
	}
	for i := pos(q.Q1); i <= pos(q.Q3); i++ {
		line[i] = '='
	}
	line[pos(lo)] = '['
	line[pos(hi)] = ']'
	line[pos(q.Q2)] = '|'
	return string(line)
}
