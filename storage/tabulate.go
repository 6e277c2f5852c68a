package storage

import (
	"math"
	"strconv"

	"airbnb-dashboard/models"
)

// Tabulate flattens a chart payload into a header row followed by data rows.
// Missing values are written as empty cells.
func Tabulate(c *models.Chart) [][]any {
	switch {
	case c.Pivot != nil:
		return tabulatePivot(c.Pivot)
	case c.Correlation != nil:
		return tabulateCorrelation(c.Correlation)
	case c.Outliers != nil:
		return tabulateOutliers(c.Outliers)
	case len(c.Boxes) > 0:
		out := [][]any{{"key", "min", "q1", "median", "q3", "max", "count"}}
		for _, b := range c.Boxes {
			out = append(out, []any{b.Key, b.Min, b.Q1, b.Median, b.Q3, b.Max, b.Count})
		}
		return out
	case len(c.Points) > 0:
		out := [][]any{{"latitude", "longitude", "price", "label"}}
		for _, p := range c.Points {
			out = append(out, []any{p.Latitude, p.Longitude, cell(float64(p.Price)), p.Label})
		}
		return out
	}

	header := make([]any, 0, len(c.Keys)+len(c.Series)+1)
	for _, k := range c.Keys {
		header = append(header, string(k))
	}
	for _, s := range c.Series {
		header = append(header, string(s))
	}
	header = append(header, "count")

	out := [][]any{header}
	for _, r := range c.Rows {
		row := make([]any, 0, len(header))
		for _, k := range r.Keys {
			row = append(row, k)
		}
		for _, v := range r.Values {
			row = append(row, cell(v))
		}
		row = append(row, r.Count)
		out = append(out, row)
	}
	return out
}

func tabulatePivot(p *models.Pivot) [][]any {
	header := []any{string(p.RowKey) + `\` + string(p.ColKey)}
	for _, c := range p.Cols {
		header = append(header, c)
	}
	out := [][]any{header}
	for i, r := range p.Rows {
		row := []any{r}
		for _, v := range p.Cells[i] {
			row = append(row, cell(v))
		}
		out = append(out, row)
	}
	return out
}

func tabulateCorrelation(m *models.CorrelationMatrix) [][]any {
	header := []any{""}
	for _, c := range m.Columns {
		header = append(header, string(c))
	}
	out := [][]any{header}
	for i, c := range m.Columns {
		row := []any{string(c)}
		if i < len(m.Values) {
			for _, v := range m.Values[i] {
				row = append(row, cell(v))
			}
		}
		out = append(out, row)
	}
	return out
}

func tabulateOutliers(r *models.OutlierReport) [][]any {
	out := [][]any{{"row", "price", "z", "outlier"}}
	for _, s := range r.Scored {
		out = append(out, []any{s.Index, s.Price, s.Z, s.Outlier})
	}
	return out
}

// cell maps NaN to an empty cell.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}

// formatCell renders a tabulated value as CSV text.
func formatCell(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}
