package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"airbnb-dashboard/models"
)

func sampleListing() models.Listing {
	l := models.Listing{
		Country:          "Spain",
		Market:           "Barcelona",
		PropertyType:     "Apartment",
		RoomType:         "Private room",
		BedType:          "Real Bed",
		IsLocationExact:  "True",
		HostResponseTime: "within an hour",
		Price:            75,
		Latitude:         41.38,
		Longitude:        2.17,
		NumberOfReviews:  10,
		Availability30:   3,
		Availability60:   math.NaN(),
		Availability90:   30,
		Availability365:  100,
		ReviewScores:     math.NaN(),
		HostResponseRate: 98,
	}
	l.SetLastReview(time.Date(2019, 2, 14, 0, 0, 0, 0, time.UTC))
	return l
}

func TestPostgresRowConversion(t *testing.T) {
	in := sampleListing()
	row := toPG(in)

	assert.True(t, row.Price.Valid)
	assert.False(t, row.Availability60.Valid, "NaN is stored as NULL")
	assert.False(t, row.ReviewScores.Valid)

	out := fromPG(row)
	assert.Equal(t, in.Country, out.Country)
	assert.Equal(t, in.Price, out.Price)
	assert.True(t, math.IsNaN(out.Availability60))
	assert.Equal(t, 2019, out.Year)
	assert.Equal(t, 2, out.Month)
}

func TestMongoDocumentConversion(t *testing.T) {
	in := sampleListing()
	doc := toMongo(7, in)

	assert.Equal(t, 7, doc.Seq)
	assert.Nil(t, doc.Availability60)
	if assert.NotNil(t, doc.Price) {
		assert.Equal(t, 75.0, *doc.Price)
	}

	out := fromMongo(doc)
	assert.Equal(t, in.RoomType, out.RoomType)
	assert.True(t, math.IsNaN(out.ReviewScores))
	assert.Equal(t, in.LastReview, out.LastReview)
}

func TestMongoDocumentBlankCategory(t *testing.T) {
	out := fromMongo(mongoListing{Country: "", Market: "Porto"})
	assert.Equal(t, models.Unknown, out.Country)
	assert.True(t, math.IsNaN(out.Price))
	assert.Zero(t, out.Year)
}
