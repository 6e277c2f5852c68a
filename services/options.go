package services

import (
	"airbnb-dashboard/models"
)

// Choice is the set of values a selector can offer.
type Choice struct {
	Field  models.Dimension `json:"field"`
	Values []string         `json:"values"`
}

// Options computes the choices for each selector in fields. Choices for a
// field come from the rows passing the selections of the fields before it,
// so picking a country narrows the room types and markets on offer. A field
// whose upstream selection matches nothing gets an empty choice list.
func Options(rows []models.Listing, fields []models.Dimension, sel models.FilterSelection) []Choice {
	out := make([]Choice, 0, len(fields))
	for i, field := range fields {
		upstream := Filter(rows, sel.Only(fields[:i]))
		out = append(out, Choice{Field: field, Values: distinct(upstream, field)})
	}
	return out
}

func distinct(rows []models.Listing, d models.Dimension) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for i := range rows {
		v, ok := rows[i].Key(d)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sortLabels(values)
	return values
}
