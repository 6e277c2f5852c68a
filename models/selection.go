package models

import (
	"strconv"
	"strings"
)

// FilterSelection is the set of equality constraints chosen for one
// interaction. Empty or "All" strings and a zero Year impose no constraint.
type FilterSelection struct {
	Country      string `json:"country,omitempty"`
	RoomType     string `json:"room_type,omitempty"`
	Market       string `json:"market,omitempty"`
	PropertyType string `json:"property_type,omitempty"`
	Year         int    `json:"year,omitempty"`
}

// FilterFields are the dimensions a FilterSelection can constrain, in the
// order selectors cascade.
var FilterFields = []Dimension{DimCountry, DimRoomType, DimMarket, DimPropertyType, DimYear}

// IsAll reports whether v places no constraint.
func IsAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "all")
}

// Get returns the selected value for d, or "" when unset.
func (s FilterSelection) Get(d Dimension) string {
	var v string
	switch d {
	case DimCountry:
		v = s.Country
	case DimRoomType:
		v = s.RoomType
	case DimMarket:
		v = s.Market
	case DimPropertyType:
		v = s.PropertyType
	case DimYear:
		if s.Year == 0 {
			return ""
		}
		return strconv.Itoa(s.Year)
	}
	if IsAll(v) {
		return ""
	}
	return v
}

// Only returns a copy of s keeping the constraints named in dims.
func (s FilterSelection) Only(dims []Dimension) FilterSelection {
	var out FilterSelection
	for _, d := range dims {
		switch d {
		case DimCountry:
			out.Country = s.Country
		case DimRoomType:
			out.RoomType = s.RoomType
		case DimMarket:
			out.Market = s.Market
		case DimPropertyType:
			out.PropertyType = s.PropertyType
		case DimYear:
			out.Year = s.Year
		}
	}
	return out
}

// IsEmpty reports whether s constrains nothing.
func (s FilterSelection) IsEmpty() bool {
	for _, d := range FilterFields {
		if s.Get(d) != "" {
			return false
		}
	}
	return true
}
