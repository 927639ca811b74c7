package inventory

import (
	"strconv"
	"strings"

	"github.com/CarBotAI/carbot-mvp/engine/domain"
)

// RequiredColumns must all be present in the source file. The status column
// is optional: files written before reservations existed lack it, and every
// row in them is treated as Available.
var RequiredColumns = []string{
	"year", "make", "model", "body_styles", "color", "mileage", "price",
	"fuel_type", "engine", "transmission", "safety_rating",
	"trunk_space_liters", "features", "condition", "location", "vin",
}

const statusColumn = "status"

// parseRow builds a Car from one CSV record. Numeric fields that fail to
// parse degrade to zero rather than rejecting the row; only rows that break
// identity or status invariants are rejected.
func parseRow(cols map[string]int, record []string, idx int) (domain.Car, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	c := domain.Car{
		ID:               strconv.Itoa(idx),
		Year:             atoiOrZero(get("year")),
		Make:             get("make"),
		Model:            get("model"),
		BodyStyles:       parseBodyStyles(get("body_styles")),
		Color:            get("color"),
		Mileage:          atoiOrZero(get("mileage")),
		Price:            atoiOrZero(get("price")),
		FuelType:         get("fuel_type"),
		Engine:           get("engine"),
		Transmission:     get("transmission"),
		SafetyRating:     atoiOrZero(get("safety_rating")),
		TrunkSpaceLiters: atoiOrZero(get("trunk_space_liters")),
		Features:         parseFeatures(get("features")),
		Condition:        get("condition"),
		Location:         get("location"),
		VIN:              get("vin"),
		Status:           domain.NormalizeStatus(get(statusColumn)),
	}
	if err := domain.ValidateCar(c); err != nil {
		return domain.Car{}, err
	}
	c.SearchText = domain.BuildSearchText(c)
	return c, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// parseFeatures splits a comma-separated feature list.
func parseFeatures(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseBodyStyles accepts either a plain value ("SUV") or the bracketed list
// form the source files use ("['SUV', 'Crossover']").
func parseBodyStyles(s string) []string {
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{s}
	}
	inner := s[1 : len(s)-1]
	var out []string
	for _, part := range strings.Split(inner, ",") {
		p := strings.Trim(strings.TrimSpace(part), `'"`)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{s}
	}
	return out
}

// encodeField renders one column of a row, inverse of parseRow.
func encodeField(c domain.Car, col string) string {
	switch col {
	case "year":
		return strconv.Itoa(c.Year)
	case "make":
		return c.Make
	case "model":
		return c.Model
	case "body_styles":
		return encodeBodyStyles(c.BodyStyles)
	case "color":
		return c.Color
	case "mileage":
		return strconv.Itoa(c.Mileage)
	case "price":
		return strconv.Itoa(c.Price)
	case "fuel_type":
		return c.FuelType
	case "engine":
		return c.Engine
	case "transmission":
		return c.Transmission
	case "safety_rating":
		return strconv.Itoa(c.SafetyRating)
	case "trunk_space_liters":
		return strconv.Itoa(c.TrunkSpaceLiters)
	case "features":
		return strings.Join(c.Features, ", ")
	case "condition":
		return c.Condition
	case "location":
		return c.Location
	case "vin":
		return c.VIN
	case statusColumn:
		return string(c.Status)
	default:
		return ""
	}
}

func encodeBodyStyles(styles []string) string {
	if len(styles) == 0 {
		return "[]"
	}
	quoted := make([]string, len(styles))
	for i, s := range styles {
		quoted[i] = "'" + s + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
