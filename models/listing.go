package models

import (
	"math"
	"time"
)

// Unknown replaces blank categorical cells so every row stays reachable
// through a filter value.
const Unknown = "Unknown"

// RequiredColumns lists the header names a listing source must carry.
var RequiredColumns = []string{
	"country", "market", "property_type", "room_type", "bed_type",
	"is_location_exact", "host_response_time", "price", "latitude", "longitude",
	"number_of_reviews", "availability_30", "availability_60", "availability_90",
	"availability_365", "review_scores", "host_response_rate", "last_review",
}

// OptionalColumns are display-only columns read when present.
var OptionalColumns = []string{"name", "street", "government_area"}

// Listing is one typed rental observation. Numeric fields hold NaN when the
// source cell was empty.
type Listing struct {
	Name           string
	Street         string
	GovernmentArea string

	Country          string
	Market           string
	PropertyType     string
	RoomType         string
	BedType          string
	IsLocationExact  string
	HostResponseTime string

	Price            float64
	Latitude         float64
	Longitude        float64
	NumberOfReviews  float64
	Availability30   float64
	Availability60   float64
	Availability90   float64
	Availability365  float64
	ReviewScores     float64
	HostResponseRate float64

	LastReview time.Time
	Month      int
	Year       int
}

// SetLastReview stores the review date and derives Month and Year from the
// same civil date. A zero time clears all three.
func (l *Listing) SetLastReview(t time.Time) {
	l.LastReview = t
	if t.IsZero() {
		l.Month, l.Year = 0, 0
		return
	}
	l.Month = int(t.Month())
	l.Year = t.Year()
}

// Dataset is the immutable set of listings loaded for a session.
type Dataset struct {
	Source   string
	LoadedAt time.Time
	Listings []Listing
}

// Len returns the number of listings.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Listings)
}

// Missing reports whether a numeric cell is absent.
func Missing(v float64) bool {
	return math.IsNaN(v)
}
