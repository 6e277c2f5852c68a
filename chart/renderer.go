// Package chart draws computed dashboard charts as static images.
package chart

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"airbnb-dashboard/models"
)

// ErrUnsupportedKind is returned for chart kinds that have no static form.
var ErrUnsupportedKind = errors.New("chart: unsupported kind")

// Renderer draws one chart.
type Renderer interface {
	Render(w io.Writer, c *models.Chart) error
}

// PNGRenderer draws charts as PNG images with gonum/plot.
type PNGRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPNGRenderer returns a renderer producing 8x5 inch images.
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

// Supports reports whether kind can be drawn.
func (r *PNGRenderer) Supports(kind models.ChartKind) bool {
	switch kind {
	case models.KindBar, models.KindLine, models.KindBox,
		models.KindScatter, models.KindMap, models.KindHeatmap:
		return true
	}
	return false
}

// Render writes c to w as a PNG. A chart without data is drawn as an empty
// titled frame.
func (r *PNGRenderer) Render(w io.Writer, c *models.Chart) error {
	if !r.Supports(c.Kind) {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, c.Kind)
	}

	p := plot.New()
	p.Title.Text = c.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)

	if c.Empty() {
		p.X.Label.Text = "No data for this selection"
	} else {
		var err error
		switch c.Kind {
		case models.KindBar:
			err = drawBars(p, c)
		case models.KindLine:
			err = drawLines(p, c)
		case models.KindBox:
			err = drawBoxes(p, c)
		case models.KindScatter, models.KindMap:
			err = drawPoints(p, c)
		case models.KindHeatmap:
			err = drawHeatmap(p, c)
		}
		if err != nil {
			return fmt.Errorf("chart: draw %s: %w", c.ID, err)
		}
	}

	wt, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return fmt.Errorf("chart: encode %s: %w", c.ID, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("chart: write %s: %w", c.ID, err)
	}
	return nil
}

func drawBars(p *plot.Plot, c *models.Chart) error {
	cats, series := seriesOf(c)
	width := vg.Points(48) / vg.Length(len(series))

	for i, s := range series {
		values := make(plotter.Values, len(s.values))
		for j, v := range s.values {
			if !math.IsNaN(v) {
				values[j] = v
			}
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return err
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(i)*width - vg.Length(len(series)-1)*width/2
		p.Add(bars)
		if len(series) > 1 {
			p.Legend.Add(s.name, bars)
		}
	}

	p.NominalX(cats...)
	rotateTicks(p, cats)
	p.X.Label.Text = keysName(c)
	if len(series) == 1 {
		p.Y.Label.Text = series[0].name
	}
	p.Legend.Top = true
	return nil
}

func drawLines(p *plot.Plot, c *models.Chart) error {
	cats, series := seriesOf(c)
	p.Add(plotter.NewGrid())

	for i, s := range series {
		pts := make(plotter.XYs, 0, len(s.values))
		for j, v := range s.values {
			if math.IsNaN(v) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(j), Y: v})
		}
		if len(pts) == 0 {
			continue
		}
		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		points.Color = plotutil.Color(i)
		points.Shape = draw.CircleGlyph{}
		p.Add(line, points)
		if len(series) > 1 {
			p.Legend.Add(s.name, line, points)
		}
	}

	p.NominalX(cats...)
	rotateTicks(p, cats)
	p.X.Label.Text = keysName(c)
	if len(series) == 1 {
		p.Y.Label.Text = series[0].name
	}
	p.Legend.Top = true
	return nil
}

// boxSeries exposes five-number summaries as error bars centred on the
// median.
type boxSeries struct {
	boxes    []models.BoxStats
	quartile bool
}

func (b boxSeries) Len() int { return len(b.boxes) }

func (b boxSeries) XY(i int) (float64, float64) { return float64(i), b.boxes[i].Median }

func (b boxSeries) YError(i int) (float64, float64) {
	s := b.boxes[i]
	if b.quartile {
		return s.Median - s.Q1, s.Q3 - s.Median
	}
	return s.Median - s.Min, s.Max - s.Median
}

func drawBoxes(p *plot.Plot, c *models.Chart) error {
	whiskers, err := plotter.NewYErrorBars(boxSeries{boxes: c.Boxes})
	if err != nil {
		return err
	}
	whiskers.CapWidth = vg.Points(8)

	box, err := plotter.NewYErrorBars(boxSeries{boxes: c.Boxes, quartile: true})
	if err != nil {
		return err
	}
	box.LineStyle.Width = vg.Points(10)
	box.LineStyle.Color = plotutil.Color(0)
	box.CapWidth = 0

	medians, err := plotter.NewScatter(boxSeries{boxes: c.Boxes})
	if err != nil {
		return err
	}
	medians.Shape = draw.BoxGlyph{}
	medians.Color = color.White

	p.Add(plotter.NewGrid(), whiskers, box, medians)

	labels := make([]string, len(c.Boxes))
	for i, b := range c.Boxes {
		labels[i] = b.Key
	}
	p.NominalX(labels...)
	p.X.Label.Text = keysName(c)
	if len(c.Series) > 0 {
		p.Y.Label.Text = axisLabel(c, string(c.Series[0]))
	}
	return nil
}

func drawPoints(p *plot.Plot, c *models.Chart) error {
	pts := make(plotter.XYs, len(c.Points))
	for i, pt := range c.Points {
		pts[i] = plotter.XY{X: pt.Longitude, Y: pt.Latitude}
	}
	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = plotutil.Color(0)

	p.Add(plotter.NewGrid(), scatter)
	p.X.Label.Text = axisLabel(c, string(models.MeasureLongitude))
	p.Y.Label.Text = axisLabel(c, string(models.MeasureLatitude))
	return nil
}

// grid adapts a row-major matrix to plotter.GridXYZ with unit cell spacing.
type grid struct {
	cells    [][]float64
	min, max float64
}

func newGrid(cells [][]float64) grid {
	g := grid{cells: cells, min: math.Inf(1), max: math.Inf(-1)}
	for _, row := range cells {
		for _, v := range row {
			if math.IsNaN(v) {
				continue
			}
			g.min = math.Min(g.min, v)
			g.max = math.Max(g.max, v)
		}
	}
	if math.IsInf(g.min, 1) {
		g.min, g.max = 0, 1
	}
	if g.min == g.max {
		g.max = g.min + 1
	}
	return g
}

func (g grid) Dims() (c, r int)   { return len(g.cells[0]), len(g.cells) }
func (g grid) Z(c, r int) float64 { return g.cells[r][c] }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }
func (g grid) Min() float64       { return g.min }
func (g grid) Max() float64       { return g.max }

func drawHeatmap(p *plot.Plot, c *models.Chart) error {
	var (
		g          grid
		rows, cols []string
	)
	switch {
	case !c.Pivot.Empty():
		g = newGrid(c.Pivot.Cells)
		rows, cols = c.Pivot.Rows, c.Pivot.Cols
		p.X.Label.Text = axisLabel(c, string(c.Pivot.ColKey))
		p.Y.Label.Text = axisLabel(c, string(c.Pivot.RowKey))
	case !c.Correlation.Empty():
		g = newGrid(c.Correlation.Values)
		g.min, g.max = -1, 1
		for _, m := range c.Correlation.Columns {
			rows = append(rows, axisLabel(c, string(m)))
		}
		cols = rows
	default:
		return errors.New("heatmap without a matrix")
	}

	h := plotter.NewHeatMap(g, palette.Heat(12, 1))
	h.NaN = color.Gray{Y: 220}
	p.Add(h)
	p.NominalX(cols...)
	p.NominalY(rows...)
	rotateTicks(p, cols)
	return nil
}

type series struct {
	name   string
	values []float64
}

// seriesOf lays the chart's rows out as categories along X. A single
// measure grouped by two or more keys becomes one series per trailing key
// combination; otherwise each measure is a series.
func seriesOf(c *models.Chart) ([]string, []series) {
	bySecondKey := len(c.Keys) > 1 && len(c.Series) == 1
	category := func(r models.AggregateRow) string {
		switch {
		case len(r.Keys) == 0:
			return "all"
		case bySecondKey:
			return r.Keys[0]
		}
		return strings.Join(r.Keys, " / ")
	}

	var cats []string
	index := make(map[string]int)
	for _, r := range c.Rows {
		k := category(r)
		if _, ok := index[k]; !ok {
			index[k] = len(cats)
			cats = append(cats, k)
		}
	}
	blank := func() []float64 {
		v := make([]float64, len(cats))
		for i := range v {
			v[i] = math.NaN()
		}
		return v
	}

	if bySecondKey {
		var out []series
		named := make(map[string]int)
		for _, r := range c.Rows {
			name := strings.Join(r.Keys[1:], " / ")
			i, ok := named[name]
			if !ok {
				i = len(out)
				named[name] = i
				out = append(out, series{name: name, values: blank()})
			}
			out[i].values[index[category(r)]] = r.Values[0]
		}
		return cats, out
	}

	out := make([]series, len(c.Series))
	for i, m := range c.Series {
		out[i] = series{name: axisLabel(c, string(m)), values: blank()}
	}
	for _, r := range c.Rows {
		for i, v := range r.Values {
			if i < len(out) {
				out[i].values[index[category(r)]] = v
			}
		}
	}
	return cats, out
}

func keysName(c *models.Chart) string {
	if len(c.Keys) == 0 {
		return ""
	}
	if len(c.Keys) > 1 && len(c.Series) == 1 {
		return axisLabel(c, string(c.Keys[0]))
	}
	names := make([]string, len(c.Keys))
	for i, k := range c.Keys {
		names[i] = axisLabel(c, string(k))
	}
	return strings.Join(names, " / ")
}

func axisLabel(c *models.Chart, name string) string {
	if l, ok := c.Labels[name]; ok {
		return l
	}
	return name
}

// rotateTicks tilts crowded category labels.
func rotateTicks(p *plot.Plot, labels []string) {
	long := 0
	for _, l := range labels {
		long += len(l)
	}
	if long > 60 {
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
	}
}
