package search

import (
	"strings"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
	"github.com/CarBotAI/carbot-mvp/engine/query"
)

// Filter keeps the cars satisfying every bound in the criteria. Callers pass
// available cars only; reserved stock is never offered.
//
// RequiredFeatures are deliberately not filtered here. They contribute score
// in Score instead, so a car missing a requested feature still surfaces,
// ranked lower.
func Filter(cars []domain.Car, c query.Criteria) []domain.Car {
	var out []domain.Car
	for _, car := range cars {
		if matches(car, c) {
			out = append(out, car)
		}
	}
	return out
}

func matches(car domain.Car, c query.Criteria) bool {
	if c.MinPrice > 0 && car.Price < c.MinPrice {
		return false
	}
	if c.MaxPrice > 0 && car.Price > c.MaxPrice {
		return false
	}
	if c.MaxMileage > 0 && car.Mileage > c.MaxMileage {
		return false
	}
	if c.Color != "" && !strings.EqualFold(car.Color, c.Color) {
		return false
	}
	if c.Make != "" && !strings.EqualFold(car.Make, c.Make) {
		return false
	}
	if c.BodyStyle != "" && !hasBodyStyle(car, c.BodyStyle) {
		return false
	}
	if c.FuelType != "" && !strings.EqualFold(car.FuelType, c.FuelType) {
		return false
	}
	return true
}

// hasBodyStyle matches the canonical style as a substring of any of the
// car's labels, so "suv" matches "SUV" and "Compact SUV" alike.
func hasBodyStyle(car domain.Car, style string) bool {
	style = strings.ToLower(style)
	for _, s := range car.BodyStyles {
		if strings.Contains(strings.ToLower(s), style) {
			return true
		}
	}
	return false
}
