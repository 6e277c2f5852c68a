package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"airbnb-dashboard/models"
)

// reducer collapses the valid values of one group into a single number.
type reducer func(values []float64) float64

func mean(values []float64) float64 { return stat.Mean(values, nil) }
func sum(values []float64) float64  { return floats.Sum(values) }

// group holds the rows sharing one key tuple, split into per-measure columns
// of non-missing values.
type group struct {
	keys    []string
	columns [][]float64
	count   int
}

// groupRows buckets rows by the tuple of their values for keys. Rows lacking
// a key (month or year without a review date) are skipped, as are missing
// measure values. Groups where no measure had a value are dropped.
func groupRows(rows []models.Listing, keys []models.Dimension, measures []models.Measure) []*group {
	index := make(map[string]*group)
	var groups []*group

	tuple := make([]string, len(keys))
	for i := range rows {
		l := &rows[i]
		ok := true
		for k, d := range keys {
			v, has := l.Key(d)
			if !has {
				ok = false
				break
			}
			tuple[k] = v
		}
		if !ok {
			continue
		}

		id := strings.Join(tuple, "\x1f")
		g, seen := index[id]
		if !seen {
			g = &group{
				keys:    append([]string(nil), tuple...),
				columns: make([][]float64, len(measures)),
			}
			index[id] = g
			groups = append(groups, g)
		}

		contributed := false
		for m, measure := range measures {
			v := l.Value(measure)
			if models.Missing(v) || math.IsInf(v, 0) {
				continue
			}
			g.columns[m] = append(g.columns[m], v)
			contributed = true
		}
		if contributed {
			g.count++
		}
	}

	kept := groups[:0]
	for _, g := range groups {
		if g.count > 0 {
			kept = append(kept, g)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return lessKeys(kept[i].keys, kept[j].keys) })
	return kept
}

func reduce(rows []models.Listing, keys []models.Dimension, measures []models.Measure, fn reducer) []models.AggregateRow {
	groups := groupRows(rows, keys, measures)
	out := make([]models.AggregateRow, 0, len(groups))
	for _, g := range groups {
		vals := make([]float64, len(measures))
		for m, col := range g.columns {
			if len(col) == 0 {
				vals[m] = math.NaN()
				continue
			}
			vals[m] = fn(col)
		}
		out = append(out, models.AggregateRow{Keys: g.keys, Values: vals, Count: g.count})
	}
	return out
}

// MeanBy groups rows by keys and averages each measure. Missing values are
// left out of both numerator and denominator; groups without any value are
// not emitted.
func MeanBy(rows []models.Listing, keys []models.Dimension, measures ...models.Measure) []models.AggregateRow {
	return reduce(rows, keys, measures, mean)
}

// SumBy groups rows by keys and totals each measure, skipping missing values.
func SumBy(rows []models.Listing, keys []models.Dimension, measures ...models.Measure) []models.AggregateRow {
	return reduce(rows, keys, measures, sum)
}

// PivotMean averages measure over (rowKey, colKey) pairs and lays the means
// out as a matrix. Pairs with no values are NaN cells.
func PivotMean(rows []models.Listing, rowKey, colKey models.Dimension, measure models.Measure) *models.Pivot {
	p := &models.Pivot{RowKey: rowKey, ColKey: colKey}
	agg := MeanBy(rows, []models.Dimension{rowKey, colKey}, measure)
	if len(agg) == 0 {
		return p
	}

	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	for _, r := range agg {
		if _, ok := rowIdx[r.Keys[0]]; !ok {
			rowIdx[r.Keys[0]] = len(p.Rows)
			p.Rows = append(p.Rows, r.Keys[0])
		}
		if _, ok := colIdx[r.Keys[1]]; !ok {
			colIdx[r.Keys[1]] = len(p.Cols)
			p.Cols = append(p.Cols, r.Keys[1])
		}
	}
	sortLabels(p.Cols)
	for i, c := range p.Cols {
		colIdx[c] = i
	}

	p.Cells = make([][]float64, len(p.Rows))
	for i := range p.Cells {
		p.Cells[i] = make([]float64, len(p.Cols))
		for j := range p.Cells[i] {
			p.Cells[i][j] = math.NaN()
		}
	}
	for _, r := range agg {
		p.Cells[rowIdx[r.Keys[0]]][colIdx[r.Keys[1]]] = r.Values[0]
	}
	return p
}

// Points projects rows onto map coordinates, dropping rows without both.
func Points(rows []models.Listing) []models.Point {
	out := make([]models.Point, 0, len(rows))
	for i := range rows {
		l := &rows[i]
		if models.Missing(l.Latitude) || models.Missing(l.Longitude) {
			continue
		}
		label := l.Name
		if label == "" {
			label = l.Country
		}
		out = append(out, models.Point{
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			Price:     models.Float(l.Price),
			Label:     label,
		})
	}
	return out
}

// Center returns the mean latitude and longitude of points. ok is false when
// there are none.
func Center(points []models.Point) (lat, lon float64, ok bool) {
	if len(points) == 0 {
		return 0, 0, false
	}
	for _, p := range points {
		lat += p.Latitude
		lon += p.Longitude
	}
	n := float64(len(points))
	return lat / n, lon / n, true
}

// lessKeys orders key tuples element by element, numerically when both
// elements are numbers.
func lessKeys(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		return lessLabel(a[i], b[i])
	}
	return len(a) < len(b)
}

func lessLabel(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		return fa < fb
	case errA == nil:
		return true
	case errB == nil:
		return false
	}
	return a < b
}

func sortLabels(s []string) {
	sort.SliceStable(s, func(i, j int) bool { return lessLabel(s[i], s[j]) })
}
