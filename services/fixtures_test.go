package services

import (
	"fmt"
	"math"
	"time"

	"airbnb-dashboard/models"
)

var nan = math.NaN()

// listing builds a row with the given categories and price; every other
// numeric field starts missing.
func listing(country, roomType, market, propertyType string, price float64) models.Listing {
	return models.Listing{
		Country:          country,
		RoomType:         roomType,
		Market:           market,
		PropertyType:     propertyType,
		BedType:          "Real Bed",
		IsLocationExact:  "True",
		HostResponseTime: "within an hour",
		Price:            price,
		Latitude:         nan,
		Longitude:        nan,
		NumberOfReviews:  nan,
		Availability30:   nan,
		Availability60:   nan,
		Availability90:   nan,
		Availability365:  nan,
		ReviewScores:     nan,
		HostResponseRate: nan,
	}
}

func reviewed(l models.Listing, year int, month time.Month) models.Listing {
	l.SetLastReview(time.Date(year, month, 15, 0, 0, 0, 0, time.UTC))
	return l
}

func withOccupancy(l models.Listing, reviews, avail365 float64) models.Listing {
	l.NumberOfReviews = reviews
	l.Availability365 = avail365
	return l
}

func located(l models.Listing, lat, lon float64) models.Listing {
	l.Latitude = lat
	l.Longitude = lon
	return l
}

// sampleRows is a small mixed dataset spanning two countries and years.
func sampleRows() []models.Listing {
	return []models.Listing{
		reviewed(listing("United States", "Entire home/apt", "New York", "Apartment", 150), 2019, time.January),
		reviewed(listing("United States", "Private room", "New York", "Apartment", 80), 2019, time.February),
		reviewed(listing("United States", "Entire home/apt", "Kauai", "House", 420), 2018, time.July),
		reviewed(listing("Portugal", "Entire home/apt", "Porto", "Apartment", 60), 2019, time.March),
		reviewed(listing("Portugal", "Shared room", "Porto", "Hostel", 20), 2019, time.March),
		listing("Portugal", "Private room", "Porto", "House", 45),
		reviewed(listing("Spain", "Entire home/apt", "Barcelona", "Condominium", nan), 2018, time.December),
	}
}

// fingerprint renders rows as text so slices holding NaN fields compare
// equal when their contents match.
func fingerprint(rows []models.Listing) string {
	return fmt.Sprintf("%d %+v", len(rows), rows)
}
