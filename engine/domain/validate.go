package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// VIN format: 17 alphanumeric characters, excluding I, O, Q.
var vinRegex = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

const (
	MinModelYear = 1980
	MaxModelYear = 2030
)

// ValidVIN reports whether the VIN has the standard 17-character format.
func ValidVIN(vin string) bool {
	return vinRegex.MatchString(strings.ToUpper(strings.TrimSpace(vin)))
}

// ValidateCar checks the invariants a loaded row must satisfy. It does not
// validate VIN format: legacy rows carry dealer-internal identifiers.
func ValidateCar(c Car) error {
	if strings.TrimSpace(c.VIN) == "" {
		return NewRowError(c.VIN, "vin", ErrInvalidVIN)
	}
	if c.Year != 0 && (c.Year < MinModelYear || c.Year > MaxModelYear) {
		return NewRowError(c.VIN, "year", ErrYearOutOfRange)
	}
	if !ValidStatuses[c.Status] {
		return NewRowError(c.VIN, "status", ErrInvalidStatus)
	}
	return nil
}

// NormalizeStatus maps empty or unknown status strings to Available.
// Rows written before reservations existed have no status column at all.
func NormalizeStatus(s string) Status {
	st := Status(strings.TrimSpace(s))
	if !ValidStatuses[st] {
		return StatusAvailable
	}
	return st
}

// BuildSearchText assembles the lowercase searchable text for a row:
// year, make, model, color, fuel type, condition, features, body styles,
// and status, space-joined.
func BuildSearchText(c Car) string {
	parts := []string{
		strconv.Itoa(c.Year),
		c.Make,
		c.Model,
		c.Color,
		c.FuelType,
		c.Condition,
		strings.Join(c.Features, " "),
		strings.Join(c.BodyStyles, " "),
		string(c.Status),
	}
	return strings.ToLower(strings.Join(parts, " "))
}
