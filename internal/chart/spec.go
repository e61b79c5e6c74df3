package chart

import (
	"fmt"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Default chart geometry.
const (
	DefaultWidth  = 6.0 // inches
	DefaultHeight = 5.0 // inches

	boxShare  = 1
	histShare = 4
)

// Spec describes the combined chart of one report.
// It holds only plain data so that it can be snapshotted and compared.
type Spec struct {
	Title   string    `msgpack:"title"`
	XLabel  string    `msgpack:"x_label"`
	Values  []float64 `msgpack:"values"`
	Palette Palette   `msgpack:"palette"`
	Theme   string    `msgpack:"theme"`
	Bins    int       `msgpack:"bins"`

	// Ratio is the height ratio of the boxplot and histogram panels.
	Ratio [2]int `msgpack:"ratio"`

	// Width and Height are the rendered size in inches.
	Width  float64 `msgpack:"width"`
	Height float64 `msgpack:"height"`
}

// Options styles a new Spec.
type Options struct {
	Palette Palette
	Theme   Theme
	Bins    int
}

// NewSpec builds a Spec over the finite entries of values.
func NewSpec(title, xLabel string, values []float64, opts Options) Spec {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	return Spec{
		Title:   title,
		XLabel:  xLabel,
		Values:  finite,
		Palette: opts.Palette,
		Theme:   opts.Theme.String(),
		Bins:    opts.Bins,
		Ratio:   [2]int{boxShare, histShare},
		Width:   DefaultWidth,
		Height:  DefaultHeight,
	}
}

// Plots builds the boxplot and histogram panels with a shared x range.
func (s Spec) Plots() (box, hist *plot.Plot, err error) {
	if len(s.Values) == 0 {
		return nil, nil, ErrEmptyChart
	}
	theme, err := ParseTheme(s.Theme)
	if err != nil {
		return nil, nil, err
	}
	border, fill := mustColor(s.Palette.Border), mustColor(s.Palette.Fill)
	values := plotter.Values(s.Values)

	box = plot.New()
	theme.apply(box)
	b, err := plotter.NewBoxPlot(vg.Points(20), 0, values)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build boxplot: %w", err)
	}
	b.Horizontal = true
	b.FillColor = fill
	b.BoxStyle.Color = border
	b.MedianStyle.Color = border
	b.WhiskerStyle.Color = border
	b.GlyphStyle.Color = border
	box.Add(b)
	box.Title.Text = s.Title
	box.HideAxes()

	hist = plot.New()
	theme.apply(hist)
	h, err := plotter.NewHist(values, s.Bins)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build histogram: %w", err)
	}
	h.FillColor = fill
	h.LineStyle.Color = border
	hist.Add(h)
	hist.X.Label.Text = s.XLabel
	hist.Y.Label.Text = "Count"

	lo, hi := math.Min(box.X.Min, hist.X.Min), math.Max(box.X.Max, hist.X.Max)
	box.X.Min, box.X.Max = lo, hi
	hist.X.Min, hist.X.Max = lo, hi

	return box, hist, nil
}

// Draw draws the boxplot above the histogram on dc.
func (s Spec) Draw(dc draw.Canvas) error {
	box, hist, err := s.Plots()
	if err != nil {
		return err
	}
	boxCanvas, histCanvas := s.layout(dc, box, hist)
	box.Draw(boxCanvas)
	hist.Draw(histCanvas)
	return nil
}

// layout splits dc into the box and histogram canvases by the height ratio.
// The box canvas is shifted horizontally until its data area spans the same
// x interval as the histogram's, so a value lands on the same column in
// both panels.
func (s Spec) layout(dc draw.Canvas, box, hist *plot.Plot) (boxCanvas, histCanvas draw.Canvas) {
	ratio := s.Ratio
	if ratio[0] <= 0 || ratio[1] <= 0 {
		ratio = [2]int{boxShare, histShare}
	}
	height := dc.Max.Y - dc.Min.Y
	boxHeight := height * vg.Length(ratio[0]) / vg.Length(ratio[0]+ratio[1])

	boxCanvas = draw.Crop(dc, 0, 0, height-boxHeight, 0)
	histCanvas = draw.Crop(dc, 0, 0, 0, -boxHeight)

	target := hist.DataCanvas(histCanvas)
	// Glyph padding of the box panel depends slightly on its width.
	for i := 0; i < alignPasses; i++ {
		data := box.DataCanvas(boxCanvas)
		left, right := target.Min.X-data.Min.X, target.Max.X-data.Max.X
		if math.Abs(float64(left)) < alignTolerance && math.Abs(float64(right)) < alignTolerance {
			break
		}
		boxCanvas.Min.X += left
		boxCanvas.Max.X += right
	}
	return boxCanvas, histCanvas
}

const (
	alignPasses    = 4
	alignTolerance = 0.01
)

// Encode renders the chart in the given gonum/plot format
// ("png", "jpg", "tiff", "svg", "pdf", "eps") and writes it to w.
func (s Spec) Encode(w io.Writer, format string) error {
	width, height := s.Width, s.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	c, err := draw.NewFormattedCanvas(vg.Length(width)*vg.Inch, vg.Length(height)*vg.Inch, format)
	if err != nil {
		return err
	}
	if err := s.Draw(draw.New(c)); err != nil {
		return err
	}
	_, err = c.WriteTo(w)
	return err
}
