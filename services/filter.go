package services

import (
	"airbnb-dashboard/models"
)

// Filter returns, in order, the listings whose attributes equal every set
// constraint of sel. The input is never modified and the result never
// aliases it, so Filter can be applied to its own output.
func Filter(rows []models.Listing, sel models.FilterSelection) []models.Listing {
	out := make([]models.Listing, 0)
	for i := range rows {
		if Matches(&rows[i], sel) {
			out = append(out, rows[i])
		}
	}
	return out
}

// Matches reports whether l satisfies every set constraint of sel.
func Matches(l *models.Listing, sel models.FilterSelection) bool {
	if v := sel.Get(models.DimCountry); v != "" && l.Country != v {
		return false
	}
	if v := sel.Get(models.DimRoomType); v != "" && l.RoomType != v {
		return false
	}
	if v := sel.Get(models.DimMarket); v != "" && l.Market != v {
		return false
	}
	if v := sel.Get(models.DimPropertyType); v != "" && l.PropertyType != v {
		return false
	}
	if sel.Year != 0 && l.Year != sel.Year {
		return false
	}
	return true
}
