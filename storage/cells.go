package storage

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"airbnb-dashboard/models"
)

// dateLayouts are tried in order for last_review cells.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// cellError names the column whose cell failed to parse.
type cellError struct {
	column string
	err    error
}

func (e *cellError) Error() string { return fmt.Sprintf("%s: %v", e.column, e.err) }
func (e *cellError) Unwrap() error { return e.err }

// parseNumber converts a numeric cell. Blank, "nan" and "null" cells are NaN.
// Currency symbols, thousands separators and a trailing percent sign are
// stripped first.
func parseNumber(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "n/a":
		return math.NaN(), nil
	}
	s = strings.TrimLeft(s, "$€£¥฿ ")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), fmt.Errorf("not a number: %q", raw)
	}
	return v, nil
}

// parseDate parses a last_review cell as a civil date. The calendar fields
// are kept as written; no timezone conversion is applied.
func parseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nan", "nat", "null", "none":
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("not a date: %q", raw)
}

// category normalises a categorical cell, mapping blanks to models.Unknown.
func category(raw string) string {
	s := strings.Join(strings.Fields(raw), " ")
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		return models.Unknown
	}
	return s
}

// listingFromCells builds a Listing from column-name keyed cells.
func listingFromCells(get func(column string) string) (models.Listing, error) {
	l := models.Listing{
		Name:             strings.TrimSpace(get("name")),
		Street:           strings.TrimSpace(get("street")),
		GovernmentArea:   strings.TrimSpace(get("government_area")),
		Country:          category(get("country")),
		Market:           category(get("market")),
		PropertyType:     category(get("property_type")),
		RoomType:         category(get("room_type")),
		BedType:          category(get("bed_type")),
		IsLocationExact:  category(get("is_location_exact")),
		HostResponseTime: category(get("host_response_time")),
	}

	numbers := []struct {
		column string
		dst    *float64
	}{
		{"price", &l.Price},
		{"latitude", &l.Latitude},
		{"longitude", &l.Longitude},
		{"number_of_reviews", &l.NumberOfReviews},
		{"availability_30", &l.Availability30},
		{"availability_60", &l.Availability60},
		{"availability_90", &l.Availability90},
		{"availability_365", &l.Availability365},
		{"review_scores", &l.ReviewScores},
		{"host_response_rate", &l.HostResponseRate},
	}
	for _, n := range numbers {
		v, err := parseNumber(get(n.column))
		if err != nil {
			return l, &cellError{column: n.column, err: err}
		}
		*n.dst = v
	}

	date, err := parseDate(get("last_review"))
	if err != nil {
		return l, &cellError{column: "last_review", err: err}
	}
	l.SetLastReview(date)
	return l, nil
}
