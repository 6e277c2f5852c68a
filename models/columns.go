package models

import (
	"math"
	"strconv"
)

// Dimension names a categorical column usable as a filter or grouping key.
type Dimension string

const (
	DimCountry          Dimension = "country"
	DimMarket           Dimension = "market"
	DimPropertyType     Dimension = "property_type"
	DimRoomType         Dimension = "room_type"
	DimBedType          Dimension = "bed_type"
	DimIsLocationExact  Dimension = "is_location_exact"
	DimHostResponseTime Dimension = "host_response_time"
	DimMonth            Dimension = "month"
	DimYear             Dimension = "year"
)

// Measure names a numeric column, or a value derived from several columns.
type Measure string

const (
	MeasurePrice            Measure = "price"
	MeasureLatitude         Measure = "latitude"
	MeasureLongitude        Measure = "longitude"
	MeasureNumberOfReviews  Measure = "number_of_reviews"
	MeasureAvailability30   Measure = "availability_30"
	MeasureAvailability60   Measure = "availability_60"
	MeasureAvailability90   Measure = "availability_90"
	MeasureAvailability365  Measure = "availability_365"
	MeasureReviewScores     Measure = "review_scores"
	MeasureHostResponseRate Measure = "host_response_rate"
	MeasureOccupancy        Measure = "occupancy"
)

// Key returns the listing's value for d. ok is false when the dimension is
// unknown or, for month/year, when the listing has no review date.
func (l *Listing) Key(d Dimension) (string, bool) {
	switch d {
	case DimCountry:
		return l.Country, true
	case DimMarket:
		return l.Market, true
	case DimPropertyType:
		return l.PropertyType, true
	case DimRoomType:
		return l.RoomType, true
	case DimBedType:
		return l.BedType, true
	case DimIsLocationExact:
		return l.IsLocationExact, true
	case DimHostResponseTime:
		return l.HostResponseTime, true
	case DimMonth:
		if l.Month == 0 {
			return "", false
		}
		return strconv.Itoa(l.Month), true
	case DimYear:
		if l.Year == 0 {
			return "", false
		}
		return strconv.Itoa(l.Year), true
	}
	return "", false
}

// Value returns the listing's value for m, or NaN when it is missing or
// undefined.
func (l *Listing) Value(m Measure) float64 {
	switch m {
	case MeasurePrice:
		return l.Price
	case MeasureLatitude:
		return l.Latitude
	case MeasureLongitude:
		return l.Longitude
	case MeasureNumberOfReviews:
		return l.NumberOfReviews
	case MeasureAvailability30:
		return l.Availability30
	case MeasureAvailability60:
		return l.Availability60
	case MeasureAvailability90:
		return l.Availability90
	case MeasureAvailability365:
		return l.Availability365
	case MeasureReviewScores:
		return l.ReviewScores
	case MeasureHostResponseRate:
		return l.HostResponseRate
	case MeasureOccupancy:
		return l.Occupancy()
	}
	return math.NaN()
}

// Occupancy is number_of_reviews / availability_365 * 100. It is NaN when
// availability_365 is zero or either input is missing.
func (l *Listing) Occupancy() float64 {
	if Missing(l.NumberOfReviews) || Missing(l.Availability365) || l.Availability365 == 0 {
		return math.NaN()
	}
	return l.NumberOfReviews / l.Availability365 * 100
}

// ValidDimension reports whether d names a known dimension.
func ValidDimension(d Dimension) bool {
	switch d {
	case DimCountry, DimMarket, DimPropertyType, DimRoomType, DimBedType,
		DimIsLocationExact, DimHostResponseTime, DimMonth, DimYear:
		return true
	}
	return false
}

// ValidMeasure reports whether m names a known measure.
func ValidMeasure(m Measure) bool {
	switch m {
	case MeasurePrice, MeasureLatitude, MeasureLongitude, MeasureNumberOfReviews,
		MeasureAvailability30, MeasureAvailability60, MeasureAvailability90,
		MeasureAvailability365, MeasureReviewScores, MeasureHostResponseRate,
		MeasureOccupancy:
		return true
	}
	return false
}
