// Package domain defines the core inventory domain types, constants, and
// validation shared by the store, search, and agent layers.
package domain

// Status is the availability state of a vehicle record.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusReserved  Status = "Reserved"
)

// ValidStatuses is the set of recognised vehicle statuses.
var ValidStatuses = map[Status]bool{
	StatusAvailable: true,
	StatusReserved:  true,
}

// Condition tiers used by relevance scoring. The inventory data is
// Spanish-labelled, matching the dealership's source file.
const (
	ConditionExcellent = "Excelente"
	ConditionVeryGood  = "Muy bueno"
)

// Car is one physical vehicle in the inventory table.
//
// ID is an opaque row handle, stable for the lifetime of the loaded table
// but not across reloads. VIN is the durable identity.
type Car struct {
	ID               string   `json:"car_id"`
	Year             int      `json:"year"`
	Make             string   `json:"make"`
	Model            string   `json:"model"`
	BodyStyles       []string `json:"body_styles"`
	Color            string   `json:"color"`
	Mileage          int      `json:"mileage"`
	Price            int      `json:"price"`
	FuelType         string   `json:"fuel_type"`
	Engine           string   `json:"engine"`
	Transmission     string   `json:"transmission"`
	SafetyRating     int      `json:"safety_rating"`
	TrunkSpaceLiters int      `json:"trunk_space_liters"`
	Features         []string `json:"features"`
	Condition        string   `json:"condition"`
	Location         string   `json:"location"`
	VIN              string   `json:"vin"`
	Status           Status   `json:"status"`

	// SearchText is a lowercase concatenation of the descriptive fields,
	// recomputed on load and used for substring scoring.
	SearchText string `json:"-"`
}

// Available reports whether the car can be offered to a customer.
func (c Car) Available() bool { return c.Status == StatusAvailable }
