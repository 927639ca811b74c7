package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
	"github.com/CarBotAI/carbot-mvp/engine/query"
	"github.com/CarBotAI/carbot-mvp/pkg/fn"
)

// Result is one ranked search hit.
type Result struct {
	domain.Car
	MatchScore   float64  `json:"match_score"`
	MatchReasons []string `json:"match_reasons"`
}

// Scoring weights. Additive: a car can collect several bonuses.
const (
	weightTextMatch    = 30 // scaled by the fraction of query words found
	weightColorExact   = 25
	weightMakeExact    = 30
	weightBodyStyle    = 25
	weightCondExcellent = 10
	weightCondVeryGood  = 5
	weightLowMileage    = 15
	weightModMileage    = 10
	weightTopSafety     = 10
	weightPerFeature    = 15
)

// Mileage tiers for the scoring bonus, in km.
const (
	lowMileageKm      = 15000
	moderateMileageKm = 25000
)

// Score rates one car against the query and criteria, returning the score
// and the human-readable reasons shown to the customer.
func Score(car domain.Car, queryText string, c query.Criteria) (float64, []string) {
	var score float64
	var reasons []string

	words := strings.Fields(strings.ToLower(queryText))
	if len(words) > 0 {
		matches := 0
		for _, w := range words {
			if strings.Contains(car.SearchText, w) {
				matches++
			}
		}
		if matches > 0 {
			score += float64(matches) / float64(len(words)) * weightTextMatch
			reasons = append(reasons, fmt.Sprintf("Coincidencia de texto (%d/%d palabras)", matches, len(words)))
		}
	}

	if c.Color != "" && strings.EqualFold(car.Color, c.Color) {
		score += weightColorExact
		reasons = append(reasons, "Color exacto: "+c.Color)
	}
	if c.Make != "" && strings.EqualFold(car.Make, c.Make) {
		score += weightMakeExact
		reasons = append(reasons, "Marca exacta: "+c.Make)
	}
	if c.BodyStyle != "" && hasBodyStyle(car, c.BodyStyle) {
		score += weightBodyStyle
		reasons = append(reasons, "Tipo de carrocería: "+c.BodyStyle)
	}

	switch car.Condition {
	case domain.ConditionExcellent:
		score += weightCondExcellent
		reasons = append(reasons, "Condición excelente")
	case domain.ConditionVeryGood:
		score += weightCondVeryGood
		reasons = append(reasons, "Muy buena condición")
	}

	if car.Mileage < lowMileageKm {
		score += weightLowMileage
		reasons = append(reasons, "Bajo kilometraje")
	} else if car.Mileage < moderateMileageKm {
		score += weightModMileage
		reasons = append(reasons, "Kilometraje moderado")
	}

	if car.SafetyRating == 5 {
		score += weightTopSafety
		reasons = append(reasons, "Máxima calificación de seguridad")
	}

	for _, req := range c.RequiredFeatures {
		if hasFeature(car, req) {
			score += weightPerFeature
			reasons = append(reasons, "Característica requerida: "+req)
		}
	}

	return score, reasons
}

func hasFeature(car domain.Car, req string) bool {
	req = strings.ToLower(req)
	for _, f := range car.Features {
		if strings.Contains(strings.ToLower(f), req) {
			return true
		}
	}
	return false
}

// rank scores every car concurrently, preserving input order, then sorts by
// descending score. The sort is stable so equal scores keep table order.
func rank(cars []domain.Car, queryText string, c query.Criteria, workers int) []Result {
	results := fn.ParMap(cars, workers, func(car domain.Car) Result {
		score, reasons := Score(car, queryText, c)
		return Result{Car: car, MatchScore: score, MatchReasons: reasons}
	})
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})
	return results
}
