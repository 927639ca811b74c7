// Package query parses free-text Spanish vehicle queries into structured
// search criteria.
package query

import (
	"strconv"
	"strings"
	"unicode"
)

// Criteria is the structured form of a customer query. Zero-valued numeric
// fields and empty strings mean the dimension was not mentioned.
type Criteria struct {
	MinPrice   int    `json:"min_price,omitempty"`
	MaxPrice   int    `json:"max_price,omitempty"`
	MaxMileage int    `json:"max_mileage,omitempty"`
	Color      string `json:"color,omitempty"`
	Make       string `json:"make,omitempty"`
	BodyStyle  string `json:"body_style,omitempty"`
	FuelType   string `json:"fuel_type,omitempty"`

	// RequiredFeatures are scored as bonuses, never filtered on. Feature
	// labels in the inventory are too free-form for a hard match to be safe.
	RequiredFeatures []string `json:"required_features,omitempty"`
}

// Empty reports whether nothing was extracted from the query.
func (c Criteria) Empty() bool {
	return c.MinPrice == 0 && c.MaxPrice == 0 && c.MaxMileage == 0 &&
		c.Color == "" && c.Make == "" && c.BodyStyle == "" && c.FuelType == "" &&
		len(c.RequiredFeatures) == 0
}

// Parse extracts search criteria from a free-text query. Each dimension is
// extracted independently, first matching vocabulary entry wins, except
// features which collect every match.
func Parse(q string) Criteria {
	q = strings.ToLower(q)
	var c Criteria

	for _, p := range PricePatterns {
		m := p.Re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		if p.Range {
			c.MinPrice, _ = strconv.Atoi(m[1])
			c.MaxPrice, _ = strconv.Atoi(m[2])
		} else {
			c.MaxPrice, _ = strconv.Atoi(m[1])
		}
		break
	}

	for _, p := range MileagePatterns {
		m := p.Re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		if p.Cap > 0 {
			c.MaxMileage = p.Cap
		} else {
			c.MaxMileage, _ = strconv.Atoi(m[1])
		}
		break
	}

	for _, color := range Colors {
		if strings.Contains(q, color) {
			c.Color = capitalize(color)
			break
		}
	}

	for _, bs := range BodyStyles {
		if containsAny(q, bs.Keywords) {
			c.BodyStyle = bs.Canonical
			break
		}
	}

	for _, make := range Makes {
		if strings.Contains(q, make) {
			c.Make = titleWords(make)
			break
		}
	}

	for _, ft := range FuelTypes {
		if containsAny(q, ft.Keywords) {
			c.FuelType = capitalize(ft.Canonical)
			break
		}
	}

	for _, f := range Features {
		if containsAny(q, f.Keywords) {
			c.RequiredFeatures = append(c.RequiredFeatures, f.Canonical)
		}
	}

	return c
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// capitalize uppercases the first rune: "híbrido" becomes "Híbrido".
func capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// titleWords capitalizes each space-separated word: "land rover" becomes
// "Land Rover".
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}
