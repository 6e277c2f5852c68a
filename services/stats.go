package services

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"

	"airbnb-dashboard/models"
)

// OutlierThreshold is the absolute standard score above which a price is an
// outlier.
const OutlierThreshold = 3.0

// minCorrelationRows is the fewest pairwise-complete rows a coefficient needs.
const minCorrelationRows = 2

// DefaultCorrelationMeasures are the columns correlated by the price view.
var DefaultCorrelationMeasures = []models.Measure{
	models.MeasurePrice, models.MeasureLatitude, models.MeasureLongitude,
}

// DetectOutliers scores every listing with a price against the sample mean
// and standard deviation of those prices. When the deviation is zero or
// undefined (fewer than two prices) every score is zero and nothing is
// flagged.
func DetectOutliers(rows []models.Listing) *models.OutlierReport {
	report := &models.OutlierReport{
		Threshold: OutlierThreshold,
		Mean:      models.Float(math.NaN()),
		StdDev:    models.Float(math.NaN()),
		Scored:    []models.ScoredListing{},
		Outliers:  []models.ScoredListing{},
	}

	var prices []float64
	var index []int
	for i := range rows {
		p := rows[i].Price
		if models.Missing(p) || math.IsInf(p, 0) {
			continue
		}
		prices = append(prices, p)
		index = append(index, i)
	}
	if len(prices) == 0 {
		return report
	}

	m, sd := stat.Mean(prices, nil), math.NaN()
	if len(prices) > 1 {
		m, sd = stat.MeanStdDev(prices, nil)
	}
	report.Mean = models.Float(m)
	report.StdDev = models.Float(sd)
	degenerate := math.IsNaN(sd) || sd == 0

	for k, p := range prices {
		s := models.ScoredListing{Index: index[k], Price: p}
		if !degenerate {
			s.Z = stat.StdScore(p, m, sd)
			s.Outlier = math.Abs(s.Z) > OutlierThreshold
		}
		report.Scored = append(report.Scored, s)
		if s.Outlier {
			report.Outliers = append(report.Outliers, s)
		}
	}
	return report
}

// Correlate computes the Pearson correlation matrix of measures over rows.
// Each pair uses only rows where both values are present. A cell is NaN when
// fewer than two such rows exist or either column has no variance over them.
// An empty input yields an empty matrix.
func Correlate(rows []models.Listing, measures []models.Measure) *models.CorrelationMatrix {
	m := &models.CorrelationMatrix{Columns: measures}
	if len(rows) == 0 || len(measures) == 0 {
		return m
	}

	n := len(measures)
	m.Values = make([][]float64, n)
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := pairwise(rows, measures[i], measures[j])
			r := pearson(x, y, i == j)
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwise(rows []models.Listing, a, b models.Measure) (x, y []float64) {
	for i := range rows {
		va, vb := rows[i].Value(a), rows[i].Value(b)
		if models.Missing(va) || models.Missing(vb) || math.IsInf(va, 0) || math.IsInf(vb, 0) {
			continue
		}
		x = append(x, va)
		y = append(y, vb)
	}
	return x, y
}

func pearson(x, y []float64, diagonal bool) float64 {
	if len(x) < minCorrelationRows {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	if diagonal {
		return 1
	}
	r := stat.Correlation(x, y, nil)
	// Rounding can push |r| a hair past 1.
	return math.Max(-1, math.Min(1, r))
}

// overallKey labels the single box of an ungrouped BoxBy.
const overallKey = "All"

// BoxBy summarises measure per key tuple with min, quartiles and max. With no
// keys every row falls into one box labelled "All". Groups without values are
// omitted.
func BoxBy(rows []models.Listing, keys []models.Dimension, measure models.Measure) []models.BoxStats {
	groups := groupRows(rows, keys, []models.Measure{measure})
	out := make([]models.BoxStats, 0, len(groups))
	for _, g := range groups {
		vals := append([]float64(nil), g.columns[0]...)
		sort.Float64s(vals)
		key := overallKey
		if len(g.keys) > 0 {
			key = strings.Join(g.keys, " / ")
		}
		out = append(out, models.BoxStats{
			Key:    key,
			Min:    vals[0],
			Q1:     quantile(0.25, vals),
			Median: quantile(0.5, vals),
			Q3:     quantile(0.75, vals),
			Max:    vals[len(vals)-1],
			Count:  len(vals),
		})
	}
	return out
}

// quantile returns the p-quantile of sorted, interpolating linearly between
// the closest ranks at h = (n-1)p.
func quantile(p float64, sorted []float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	hi := math.Ceil(h)
	x0, x1 := sorted[int(lo)], sorted[int(hi)]
	return x0 + (h-lo)*(x1-x0)
}
