package storage

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
)

func TestCSVSourceLoad(t *testing.T) {
	ds, err := NewCSVSource(filepath.Join("testdata", "listings.csv")).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())

	first := ds.Listings[0]
	assert.Equal(t, "Harbour loft", first.Name)
	assert.Equal(t, "Australia", first.Country)
	assert.Equal(t, "Entire home/apt", first.RoomType)
	assert.Equal(t, 1250.0, first.Price, "currency symbol and separator stripped")
	assert.Equal(t, 2019, first.Year)
	assert.Equal(t, 3, first.Month)
	assert.Equal(t, time.Date(2019, 3, 11, 0, 0, 0, 0, time.UTC), first.LastReview)
}

func TestCSVSourceDayFirstDate(t *testing.T) {
	ds, err := NewCSVSource(filepath.Join("testdata", "listings.csv")).Load(context.Background())
	require.NoError(t, err)

	l := ds.Listings[1]
	assert.Equal(t, 2018, l.Year)
	assert.Equal(t, 7, l.Month)
	assert.Equal(t, 5, l.LastReview.Day())
}

func TestCSVSourceMissingCells(t *testing.T) {
	ds, err := NewCSVSource(filepath.Join("testdata", "listings.csv")).Load(context.Background())
	require.NoError(t, err)

	l := ds.Listings[3]
	assert.True(t, math.IsNaN(l.Price), "blank price is NaN, not zero")
	assert.True(t, math.IsNaN(l.ReviewScores))
	assert.Equal(t, models.Unknown, l.RoomType)
	assert.True(t, l.LastReview.IsZero())
	assert.Zero(t, l.Year)
	assert.Zero(t, l.Month)
}

func TestCSVSourceMissingFile(t *testing.T) {
	_, err := NewCSVSource(filepath.Join("testdata", "nope.csv")).Load(context.Background())

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Source, "nope.csv")
}

func TestCSVSourceMissingColumns(t *testing.T) {
	_, err := NewCSVSource(filepath.Join("testdata", "missing_columns.csv")).Load(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumns))
	assert.Contains(t, err.Error(), "room_type")
	assert.Contains(t, err.Error(), "last_review")
}

func TestCSVSourceBadNumber(t *testing.T) {
	_, err := NewCSVSource(filepath.Join("testdata", "bad_number.csv")).Load(context.Background())

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Line)
	assert.Equal(t, "price", le.Column)
}

func TestReadListingsEmptyInput(t *testing.T) {
	_, err := readListings(context.Background(), "empty", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrMissingColumns)
}

func TestReadListingsRaggedRow(t *testing.T) {
	header := strings.Join(models.RequiredColumns, ",")
	_, err := readListings(context.Background(), "ragged", strings.NewReader(header+"\nUS,New York\n"))

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, 2, le.Line)
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"120", 120},
		{"$1,200.50", 1200.50},
		{" 95% ", 95},
		{"-33.86", -33.86},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}

	for _, blank := range []string{"", "NaN", "null", " "} {
		got, err := parseNumber(blank)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(got), "parseNumber(%q) should be NaN", blank)
	}

	_, err := parseNumber("free")
	assert.Error(t, err)
}

func TestParseDateKeepsCalendarDay(t *testing.T) {
	got, err := parseDate("2019-12-31T23:30:00-05:00")
	require.NoError(t, err)
	assert.Equal(t, 2019, got.Year(), "no shift into the next UTC year")
	assert.Equal(t, time.December, got.Month())
	assert.Equal(t, 31, got.Day())
}
