package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airbnb-dashboard/models"
)

func TestFilterIdempotent(t *testing.T) {
	rows := sampleRows()
	selections := []models.FilterSelection{
		{},
		{Country: "United States"},
		{Country: "Portugal", RoomType: "Private room"},
		{Country: "United States", Market: "New York", Year: 2019},
		{PropertyType: "Apartment"},
		{Country: "Atlantis"},
	}

	for _, sel := range selections {
		once := Filter(rows, sel)
		twice := Filter(once, sel)
		assert.Equal(t, fingerprint(once), fingerprint(twice), "selection %+v", sel)
	}
}

func TestFilterPartitionsByCountry(t *testing.T) {
	rows := sampleRows()
	choices := Options(rows, []models.Dimension{models.DimCountry}, models.FilterSelection{})
	require.Len(t, choices, 1)

	total := 0
	for _, country := range choices[0].Values {
		part := Filter(rows, models.FilterSelection{Country: country})
		require.NotEmpty(t, part)
		for _, l := range part {
			assert.Equal(t, country, l.Country)
		}
		total += len(part)
	}
	assert.Equal(t, len(rows), total, "every row lands in exactly one partition")
}

func TestFilterKeepsOrder(t *testing.T) {
	got := Filter(sampleRows(), models.FilterSelection{Country: "Portugal"})
	require.Len(t, got, 3)
	assert.Equal(t, 60.0, got[0].Price)
	assert.Equal(t, 20.0, got[1].Price)
	assert.Equal(t, 45.0, got[2].Price)
}

func TestFilterAllImposesNoConstraint(t *testing.T) {
	rows := sampleRows()
	got := Filter(rows, models.FilterSelection{Country: "All", RoomType: "all", Market: " "})
	assert.Equal(t, fingerprint(rows), fingerprint(got))
}

func TestFilterYearUsesDerivedYear(t *testing.T) {
	got := Filter(sampleRows(), models.FilterSelection{Year: 2018})
	require.Len(t, got, 2)
	for _, l := range got {
		assert.Equal(t, 2018, l.Year)
	}
}

func TestFilterRowsWithoutReviewNeverMatchAYear(t *testing.T) {
	got := Filter(sampleRows(), models.FilterSelection{Country: "Portugal", RoomType: "Private room", Year: 2019})
	assert.Empty(t, got)
}

func TestFilterNoMatchIsEmptyNotNil(t *testing.T) {
	got := Filter(sampleRows(), models.FilterSelection{Country: "Atlantis"})
	assert.NotNil(t, got)
	assert.Len(t, got, 0)

	got = Filter(nil, models.FilterSelection{Country: "Portugal"})
	assert.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestFilterDoesNotAliasInput(t *testing.T) {
	rows := sampleRows()
	got := Filter(rows, models.FilterSelection{})
	got[0].Price = -1
	assert.Equal(t, 150.0, rows[0].Price)
}
