package services

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
)

func TestMeanByCategory(t *testing.T) {
	rows := []models.Listing{
		listing("US", "Entire home/apt", "NY", "House", 300),
		listing("US", "Entire home/apt", "NY", "Apartment", 100),
		listing("US", "Entire home/apt", "NY", "Apartment", 200),
		listing("US", "Entire home/apt", "NY", "Condominium", nan),
	}

	got := MeanBy(rows, []models.Dimension{models.DimPropertyType}, models.MeasurePrice)
	require.Len(t, got, 2, "the group whose only price is missing is omitted")

	assert.Equal(t, []string{"Apartment"}, got[0].Keys)
	assert.InDelta(t, 150, got[0].Values[0], 1e-9)
	assert.Equal(t, 2, got[0].Count)

	assert.Equal(t, []string{"House"}, got[1].Keys)
	assert.InDelta(t, 300, got[1].Values[0], 1e-9)
}

func TestMeanByNeverEmitsEmptyGroups(t *testing.T) {
	rows := sampleRows()
	for _, key := range []models.Dimension{models.DimCountry, models.DimPropertyType, models.DimMonth, models.DimRoomType} {
		for _, r := range MeanBy(rows, []models.Dimension{key}, models.MeasurePrice) {
			assert.Positive(t, r.Count, "key %s group %v", key, r.Keys)
			assert.False(t, math.IsNaN(r.Values[0]), "key %s group %v", key, r.Keys)
		}
	}
}

func TestMeanBySortsMonthsNumerically(t *testing.T) {
	rows := []models.Listing{
		reviewed(listing("US", "r", "m", "p", 10), 2019, time.October),
		reviewed(listing("US", "r", "m", "p", 2), 2019, time.February),
		reviewed(listing("US", "r", "m", "p", 1), 2019, time.January),
	}
	got := MeanBy(rows, []models.Dimension{models.DimMonth}, models.MeasurePrice)
	require.Len(t, got, 3)
	assert.Equal(t, "1", got[0].Keys[0])
	assert.Equal(t, "2", got[1].Keys[0])
	assert.Equal(t, "10", got[2].Keys[0])
}

func TestMeanBySkipsRowsWithoutKey(t *testing.T) {
	rows := []models.Listing{
		reviewed(listing("US", "r", "m", "p", 100), 2019, time.May),
		listing("US", "r", "m", "p", 900),
	}
	got := MeanBy(rows, []models.Dimension{models.DimMonth}, models.MeasurePrice)
	require.Len(t, got, 1)
	assert.InDelta(t, 100, got[0].Values[0], 1e-9)
}

func TestMeanByMultipleMeasures(t *testing.T) {
	rows := []models.Listing{
		withOccupancy(reviewed(listing("US", "r", "m", "p", 100), 2019, time.March), 10, 100),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 200), 2019, time.March), 30, 100),
		withOccupancy(reviewed(listing("US", "r", "m", "p", nan), 2019, time.April), 5, 50),
	}
	got := MeanBy(rows, []models.Dimension{models.DimMonth}, models.MeasureOccupancy, models.MeasurePrice)
	require.Len(t, got, 2)

	assert.InDelta(t, 20, got[0].Values[0], 1e-9)
	assert.InDelta(t, 150, got[0].Values[1], 1e-9)

	assert.InDelta(t, 10, got[1].Values[0], 1e-9)
	assert.True(t, math.IsNaN(got[1].Values[1]), "April has no price")
}

func TestOccupancyExcludesZeroAvailability(t *testing.T) {
	rows := []models.Listing{
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.January), 10, 100),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.January), 5, 0),
		withOccupancy(reviewed(listing("PT", "r", "m", "p", 1), 2019, time.January), 7, 0),
	}

	means := MeanBy(rows, []models.Dimension{models.DimCountry, models.DimMonth}, models.MeasureOccupancy)
	require.Len(t, means, 1, "PT has only undefined occupancy and is dropped")
	assert.Equal(t, []string{"US", "1"}, means[0].Keys)
	assert.Equal(t, 1, means[0].Count)
	assert.InDelta(t, 10, means[0].Values[0], 1e-9)
}

func TestPivotMean(t *testing.T) {
	rows := []models.Listing{
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.January), 10, 100),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.January), 30, 100),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.December), 50, 100),
		withOccupancy(reviewed(listing("PT", "r", "m", "p", 1), 2019, time.February), 1, 4),
		withOccupancy(reviewed(listing("PT", "r", "m", "p", 1), 2019, time.March), 1, 0),
	}

	p := PivotMean(rows, models.DimCountry, models.DimMonth, models.MeasureOccupancy)
	require.False(t, p.Empty())
	assert.Equal(t, []string{"PT", "US"}, p.Rows)
	assert.Equal(t, []string{"1", "2", "12"}, p.Cols, "March only had zero availability")

	assert.InDelta(t, 20, p.At("US", "1"), 1e-9)
	assert.InDelta(t, 50, p.At("US", "12"), 1e-9)
	assert.InDelta(t, 25, p.At("PT", "2"), 1e-9)
	assert.True(t, math.IsNaN(p.At("PT", "1")))
	assert.True(t, math.IsNaN(p.At("US", "2")))
}

func TestSumBy(t *testing.T) {
	rows := []models.Listing{
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.June), 4, 10),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.June), 6, 10),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.July), nan, 10),
		withOccupancy(reviewed(listing("US", "r", "m", "p", 1), 2019, time.August), 3, 10),
	}
	got := SumBy(rows, []models.Dimension{models.DimMonth}, models.MeasureNumberOfReviews)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"6"}, got[0].Keys)
	assert.InDelta(t, 10, got[0].Values[0], 1e-9)
	assert.Equal(t, []string{"8"}, got[1].Keys)
	assert.InDelta(t, 3, got[1].Values[0], 1e-9)
}

func TestSumByHierarchy(t *testing.T) {
	a := listing("US", "Entire home/apt", "m", "p", 1)
	a.Availability30 = 10
	b := listing("US", "Entire home/apt", "m", "p", 1)
	b.Availability30 = 5
	c := listing("US", "Entire home/apt", "m", "p", 1)
	c.Availability30 = 7
	c.IsLocationExact = "False"

	keys := []models.Dimension{models.DimRoomType, models.DimBedType, models.DimIsLocationExact}
	got := SumBy([]models.Listing{a, b, c}, keys, models.MeasureAvailability30)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"Entire home/apt", "Real Bed", "False"}, got[0].Keys)
	assert.InDelta(t, 7, got[0].Values[0], 1e-9)
	assert.Equal(t, []string{"Entire home/apt", "Real Bed", "True"}, got[1].Keys)
	assert.InDelta(t, 15, got[1].Values[0], 1e-9)
}

func TestPointsDropMissingCoordinates(t *testing.T) {
	rows := []models.Listing{
		located(listing("US", "r", "m", "p", 100), 40, -74),
		located(listing("US", "r", "m", "p", 200), nan, -73),
		located(listing("US", "r", "m", "p", 300), 42, -72),
	}
	pts := Points(rows)
	require.Len(t, pts, 2)

	lat, lon, ok := Center(pts)
	require.True(t, ok)
	assert.InDelta(t, 41, lat, 1e-9)
	assert.InDelta(t, -73, lon, 1e-9)

	_, _, ok = Center(nil)
	assert.False(t, ok)
}

func TestEmptyInputYieldsEmptyAggregates(t *testing.T) {
	filtered := Filter(sampleRows(), models.FilterSelection{Country: "Atlantis"})
	require.Empty(t, filtered)

	assert.Empty(t, MeanBy(filtered, []models.Dimension{models.DimPropertyType}, models.MeasurePrice))
	assert.Empty(t, SumBy(filtered, []models.Dimension{models.DimMonth}, models.MeasureNumberOfReviews))
	assert.True(t, PivotMean(filtered, models.DimCountry, models.DimMonth, models.MeasureOccupancy).Empty())
	assert.True(t, DetectOutliers(filtered).Empty())
	assert.True(t, Correlate(filtered, DefaultCorrelationMeasures).Empty())
	assert.Empty(t, BoxBy(filtered, []models.Dimension{models.DimMonth}, models.MeasurePrice))
	assert.Empty(t, Points(filtered))
}

func TestLessLabel(t *testing.T) {
	assert.True(t, lessLabel("2", "10"))
	assert.True(t, lessLabel("9", "Apartment"), "numbers sort before words")
	assert.True(t, lessLabel("Apartment", "House"))
	assert.False(t, lessLabel("House", "Apartment"))
}
