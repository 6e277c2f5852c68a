package services

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/fatih/color"

	"airbnb-dashboard/models"
)

const (
	reportWidth = 64
	barWidth    = 24
	maxListed   = 10
)

var (
	bannerColor  = color.New(color.FgMagenta, color.Bold)
	headingColor = color.New(color.FgYellow, color.Bold)
	valueColor   = color.New(color.FgGreen, color.Bold)
	alertColor   = color.New(color.FgRed, color.Bold)
)

// ReportPrinter writes a dashboard view as a plain terminal report.
type ReportPrinter struct {
	out io.Writer
}

// NewReportPrinter returns a printer writing to w.
func NewReportPrinter(w io.Writer) *ReportPrinter {
	return &ReportPrinter{out: w}
}

// Print writes every chart of v, followed by a closing rule.
func (p *ReportPrinter) Print(v *models.ViewResult) {
	sep := strings.Repeat("═", reportWidth)

	fmt.Fprintf(p.out, "\n%s\n", bannerColor.Sprint(sep))
	fmt.Fprintf(p.out, "%s\n", bannerColor.Sprintf("  %s", strings.ToUpper(v.Title)))
	fmt.Fprintf(p.out, "%s\n\n", bannerColor.Sprint(sep))

	fmt.Fprintf(p.out, "  Selection        : %s\n", describeSelection(v.Selection))
	fmt.Fprintf(p.out, "  Matching listings: %s\n\n", valueColor.Sprintf("%d", v.Matched))

	for _, c := range v.Charts {
		p.printChart(c)
	}

	fmt.Fprintf(p.out, "%s\n\n", bannerColor.Sprint(sep))
}

func (p *ReportPrinter) printChart(c *models.Chart) {
	thin := strings.Repeat("─", reportWidth)
	fmt.Fprintf(p.out, "%s\n", headingColor.Sprintf("  %s", c.Title))
	fmt.Fprintf(p.out, "  %s\n", thin)

	if c.Empty() {
		fmt.Fprintf(p.out, "  No data for this selection\n\n")
		return
	}

	switch {
	case c.Pivot != nil:
		p.printMatrix(c.Pivot.Rows, c.Pivot.Cols, c.Pivot.Cells)
	case c.Correlation != nil:
		names := make([]string, len(c.Correlation.Columns))
		for i, m := range c.Correlation.Columns {
			names[i] = string(m)
		}
		p.printMatrix(names, names, c.Correlation.Values)
	case c.Outliers != nil:
		p.printOutliers(c.Outliers)
	case len(c.Boxes) > 0:
		fmt.Fprintf(p.out, "  %-14s %10s %10s %10s %10s %10s\n", "", "min", "q1", "median", "q3", "max")
		for _, b := range c.Boxes {
			fmt.Fprintf(p.out, "  %-14s %10.2f %10.2f %10.2f %10.2f %10.2f\n",
				truncate(b.Key, 14), b.Min, b.Q1, b.Median, b.Q3, b.Max)
		}
	case len(c.Points) > 0:
		lat, lon, _ := Center(c.Points)
		fmt.Fprintf(p.out, "  Located listings : %s\n", valueColor.Sprintf("%d", len(c.Points)))
		fmt.Fprintf(p.out, "  Map centre       : %.4f, %.4f\n", lat, lon)
	default:
		p.printRows(c)
	}
	fmt.Fprintln(p.out)
}

// printRows lists each group with its values and a bar scaled to the first
// series.
func (p *ReportPrinter) printRows(c *models.Chart) {
	var top float64
	for _, r := range c.Rows {
		if len(r.Values) > 0 && !math.IsNaN(r.Values[0]) {
			top = math.Max(top, math.Abs(r.Values[0]))
		}
	}

	series := make([]string, len(c.Series))
	for i, s := range c.Series {
		series[i] = string(s)
	}
	fmt.Fprintf(p.out, "  %-30s %s\n", "", strings.Join(series, " | "))

	for _, r := range c.Rows {
		vals := make([]string, len(r.Values))
		for i, v := range r.Values {
			vals[i] = formatValue(v)
		}
		bar := ""
		if top > 0 && len(r.Values) > 0 && !math.IsNaN(r.Values[0]) {
			bar = strings.Repeat("█", int(math.Round(math.Abs(r.Values[0])/top*barWidth)))
		}
		fmt.Fprintf(p.out, "  %-30s %s %s\n",
			truncate(strings.Join(r.Keys, " / "), 28), valueColor.Sprint(strings.Join(vals, " | ")), bar)
	}
}

func (p *ReportPrinter) printMatrix(rows, cols []string, cells [][]float64) {
	fmt.Fprintf(p.out, "  %-14s", "")
	for _, c := range cols {
		fmt.Fprintf(p.out, " %10s", truncate(c, 10))
	}
	fmt.Fprintln(p.out)
	for i, r := range rows {
		fmt.Fprintf(p.out, "  %-14s", truncate(r, 14))
		for _, v := range cells[i] {
			fmt.Fprintf(p.out, " %10s", formatValue(v))
		}
		fmt.Fprintln(p.out)
	}
}

func (p *ReportPrinter) printOutliers(r *models.OutlierReport) {
	fmt.Fprintf(p.out, "  Scored prices : %d\n", len(r.Scored))
	fmt.Fprintf(p.out, "  Mean / StdDev : %s / %s\n",
		formatValue(float64(r.Mean)), formatValue(float64(r.StdDev)))
	fmt.Fprintf(p.out, "  Outliers (|z| > %.0f): %s\n", r.Threshold, alertColor.Sprintf("%d", len(r.Outliers)))
	for i, o := range r.Outliers {
		if i == maxListed {
			fmt.Fprintf(p.out, "  ... %d more\n", len(r.Outliers)-maxListed)
			break
		}
		fmt.Fprintf(p.out, "  row %-6d price %12.2f  z %6.2f\n", o.Index, o.Price, o.Z)
	}
}

func describeSelection(s models.FilterSelection) string {
	var parts []string
	for _, d := range models.FilterFields {
		if v := s.Get(d); v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", d, v))
		}
	}
	if len(parts) == 0 {
		return "all listings"
	}
	return strings.Join(parts, ", ")
}

func formatValue(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
