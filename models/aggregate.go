package models

import (
	"encoding/json"
	"math"
)

// Float is a float64 that marshals NaN and infinities as JSON null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// AggregateRow is one group of a group-by-reduce result.
type AggregateRow struct {
	Keys   []string  `json:"keys"`
	Values []float64 `json:"values"`
	Count  int       `json:"count"`
}

// MarshalJSON writes Values with NaN as null.
func (r AggregateRow) MarshalJSON() ([]byte, error) {
	vals := make([]Float, len(r.Values))
	for i, v := range r.Values {
		vals[i] = Float(v)
	}
	return json.Marshal(struct {
		Keys   []string `json:"keys"`
		Values []Float  `json:"values"`
		Count  int      `json:"count"`
	}{r.Keys, vals, r.Count})
}

// Pivot is a two-key aggregate reshaped into a matrix. Cells without
// contributing rows are NaN.
type Pivot struct {
	RowKey Dimension   `json:"row_key"`
	ColKey Dimension   `json:"col_key"`
	Rows   []string    `json:"rows"`
	Cols   []string    `json:"cols"`
	Cells  [][]float64 `json:"-"`
}

// Empty reports whether the pivot has no cells.
func (p *Pivot) Empty() bool {
	return p == nil || len(p.Rows) == 0 || len(p.Cols) == 0
}

// At returns the cell for the given row and column labels.
func (p *Pivot) At(row, col string) float64 {
	ri, ci := indexOf(p.Rows, row), indexOf(p.Cols, col)
	if ri < 0 || ci < 0 {
		return math.NaN()
	}
	return p.Cells[ri][ci]
}

func (p *Pivot) MarshalJSON() ([]byte, error) {
	type alias Pivot
	return json.Marshal(struct {
		*alias
		Cells [][]Float `json:"cells"`
	}{(*alias)(p), floatMatrix(p.Cells)})
}

// CorrelationMatrix holds pairwise Pearson coefficients. Cells that cannot
// be computed are NaN.
type CorrelationMatrix struct {
	Columns []Measure   `json:"columns"`
	Values  [][]float64 `json:"-"`
}

// Empty reports whether no coefficients were computed.
func (m *CorrelationMatrix) Empty() bool {
	return m == nil || len(m.Values) == 0
}

// At returns the coefficient between columns a and b.
func (m *CorrelationMatrix) At(a, b Measure) float64 {
	ai, bi := -1, -1
	for i, c := range m.Columns {
		if c == a {
			ai = i
		}
		if c == b {
			bi = i
		}
	}
	if ai < 0 || bi < 0 || m.Empty() {
		return math.NaN()
	}
	return m.Values[ai][bi]
}

func (m *CorrelationMatrix) MarshalJSON() ([]byte, error) {
	type alias CorrelationMatrix
	return json.Marshal(struct {
		*alias
		Values [][]Float `json:"values"`
	}{(*alias)(m), floatMatrix(m.Values)})
}

// ScoredListing is a listing's price with its standard score.
type ScoredListing struct {
	Index   int     `json:"index"`
	Price   float64 `json:"price"`
	Z       float64 `json:"z"`
	Outlier bool    `json:"outlier"`
}

// OutlierReport is the result of z-score outlier detection over prices.
type OutlierReport struct {
	Threshold float64         `json:"threshold"`
	Mean      Float           `json:"mean"`
	StdDev    Float           `json:"std_dev"`
	Scored    []ScoredListing `json:"scored"`
	Outliers  []ScoredListing `json:"outliers"`
}

// Empty reports whether no prices were scored.
func (r *OutlierReport) Empty() bool {
	return r == nil || len(r.Scored) == 0
}

// BoxStats is the five-number summary of one group.
type BoxStats struct {
	Key    string  `json:"key"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Point is one located listing for scatter and map charts.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Price     Float   `json:"price"`
	Label     string  `json:"label,omitempty"`
}

// ChartKind hints the presentation layer at how to draw an aggregate.
type ChartKind string

const (
	KindBar      ChartKind = "bar"
	KindLine     ChartKind = "line"
	KindBox      ChartKind = "box"
	KindScatter  ChartKind = "scatter"
	KindHeatmap  ChartKind = "heatmap"
	KindSunburst ChartKind = "sunburst"
	KindMap      ChartKind = "map"
	KindTable    ChartKind = "table"
)

// Chart is an aggregate ready for a renderer. Exactly one of the payload
// fields is set, according to the operation that produced it.
type Chart struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Kind   ChartKind         `json:"kind"`
	Labels map[string]string `json:"labels,omitempty"`
	Keys   []Dimension       `json:"keys,omitempty"`
	Series []Measure         `json:"series,omitempty"`

	Rows        []AggregateRow     `json:"rows,omitempty"`
	Pivot       *Pivot             `json:"pivot,omitempty"`
	Correlation *CorrelationMatrix `json:"correlation,omitempty"`
	Outliers    *OutlierReport     `json:"outliers,omitempty"`
	Boxes       []BoxStats         `json:"boxes,omitempty"`
	Points      []Point            `json:"points,omitempty"`
}

// Empty reports whether the chart carries no data.
func (c *Chart) Empty() bool {
	return len(c.Rows) == 0 && c.Pivot.Empty() && c.Correlation.Empty() &&
		c.Outliers.Empty() && len(c.Boxes) == 0 && len(c.Points) == 0
}

// ViewResult is every chart of one dashboard view for one selection.
type ViewResult struct {
	View      string          `json:"view"`
	Title     string          `json:"title"`
	Selection FilterSelection `json:"selection"`
	Matched   int             `json:"matched"`
	Charts    []*Chart        `json:"charts"`
}

func floatMatrix(m [][]float64) [][]Float {
	out := make([][]Float, len(m))
	for i, row := range m {
		out[i] = make([]Float, len(row))
		for j, v := range row {
			out[i][j] = Float(v)
		}
	}
	return out
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
