package inventory

import (
	"sort"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
	"github.com/CarBotAI/carbot-mvp/pkg/fn"
)

// Stats summarizes the loaded inventory for the analytics endpoint and the
// manager's stocking decisions.
type Stats struct {
	TotalVehicles  int            `json:"total_vehicles"`
	Available      int            `json:"available"`
	Reserved       int            `json:"reserved"`
	TotalValue     int            `json:"total_value"`
	AveragePrice   float64        `json:"average_price"`
	AverageMileage float64        `json:"average_mileage"`
	MakesCount     int            `json:"makes_count"`
	TopMakes       map[string]int `json:"top_makes"`
	BodyStyles     map[string]int `json:"body_styles"`
	FuelTypes      map[string]int `json:"fuel_types"`
	Conditions     map[string]int `json:"conditions"`
	PriceRanges    map[string]int `json:"price_ranges"`
}

// Price bucket labels.
const (
	RangeUnder30K = "under_30k"
	Range30To50K  = "30k_to_50k"
	Range50To100K = "50k_to_100k"
	RangeOver100K = "over_100k"
)

const topDistributionSize = 5

// Stats computes a summary over all loaded vehicles. An unloaded or empty
// store yields zeroed stats.
func (s *Store) Stats() Stats {
	cars := s.Cars()
	st := Stats{
		TopMakes:    map[string]int{},
		BodyStyles:  map[string]int{},
		FuelTypes:   map[string]int{},
		Conditions:  map[string]int{},
		PriceRanges: map[string]int{RangeUnder30K: 0, Range30To50K: 0, Range50To100K: 0, RangeOver100K: 0},
	}
	if len(cars) == 0 {
		return st
	}

	st.TotalVehicles = len(cars)
	st.TotalValue = fn.SumBy(cars, func(c domain.Car) int { return c.Price })
	st.AveragePrice = float64(st.TotalValue) / float64(len(cars))
	st.AverageMileage = float64(fn.SumBy(cars, func(c domain.Car) int { return c.Mileage })) / float64(len(cars))

	for _, c := range cars {
		if c.Available() {
			st.Available++
		} else {
			st.Reserved++
		}
		st.PriceRanges[priceRange(c.Price)]++
	}

	makes := fn.CountBy(cars, func(c domain.Car) string { return c.Make })
	st.MakesCount = len(makes)
	st.TopMakes = topN(makes, topDistributionSize)
	st.FuelTypes = fn.CountBy(cars, func(c domain.Car) string { return c.FuelType })
	st.Conditions = fn.CountBy(cars, func(c domain.Car) string { return c.Condition })

	styles := map[string]int{}
	for _, c := range cars {
		for _, b := range c.BodyStyles {
			styles[b]++
		}
	}
	st.BodyStyles = topN(styles, topDistributionSize)

	return st
}

func priceRange(price int) string {
	switch {
	case price < 30_000:
		return RangeUnder30K
	case price < 50_000:
		return Range30To50K
	case price < 100_000:
		return Range50To100K
	default:
		return RangeOver100K
	}
}

// topN keeps the n highest counts, breaking ties by key for determinism.
func topN(counts map[string]int, n int) map[string]int {
	if len(counts) <= n {
		return counts
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	out := make(map[string]int, n)
	for _, k := range keys[:n] {
		out[k] = counts[k]
	}
	return out
}
