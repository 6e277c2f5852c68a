package services

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"airbnb-dashboard/models"
)

func TestReportPrinter(t *testing.T) {
	color.NoColor = true
	d, err := LoadDashboard("")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		view string
		sel  models.FilterSelection
		want []string
	}{
		{
			view: "price",
			sel:  models.FilterSelection{Country: "United States"},
			want: []string{"PRICE ANALYSIS AND VISUALIZATION", "country=United States", "Price by Property Type", "Apartment", "Outliers (|z| > 3)"},
		},
		{
			view: "availability",
			sel:  models.FilterSelection{Country: "Atlantis"},
			want: []string{"Matching listings: 0", "No data for this selection"},
		},
		{
			view: "geospatial",
			want: []string{"all listings", "Host Response Rate Over Time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.view, func(t *testing.T) {
			res, err := d.Run(sampleRows(), tt.view, tt.sel)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			NewReportPrinter(&buf).Print(res)
			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("report missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestFormatValue(t *testing.T) {
	if got := formatValue(nan); got != "-" {
		t.Errorf("formatValue(NaN) = %q, want -", got)
	}
	if got := formatValue(12.5); got != "12.50" {
		t.Errorf("formatValue(12.5) = %q, want 12.50", got)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Entire home/apt", 10); got != "Entire ..." {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
}
