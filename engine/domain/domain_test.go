package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		in   string
		want Status
	}{
		{"Available", StatusAvailable},
		{"Reserved", StatusReserved},
		{"", StatusAvailable},
		{"  Reserved  ", StatusReserved},
		{"Sold", StatusAvailable},
		{"available", StatusAvailable}, // status matching is case-sensitive
	}
	for _, c := range cases {
		if got := NormalizeStatus(c.in); got != c.want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestValidVIN(t *testing.T) {
	valid := []string{
		"5YJ3E1EA1NF123456",
		"  wba8e9g50gnt12345  ", // trimmed and upper-cased
	}
	for _, v := range valid {
		if !ValidVIN(v) {
			t.Errorf("expected valid VIN %q", v)
		}
	}
	invalid := []string{
		"",
		"SHORT",
		"5YJ3E1EA1IF123456", // contains I
		"5YJ3E1EA1OF123456", // contains O
		"5YJ3E1EA1NF1234567",
	}
	for _, v := range invalid {
		if ValidVIN(v) {
			t.Errorf("expected invalid VIN %q", v)
		}
	}
}

func TestValidateCar(t *testing.T) {
	ok := Car{VIN: "VIN001", Year: 2022, Status: StatusAvailable}
	if err := ValidateCar(ok); err != nil {
		t.Fatalf("expected valid car, got %v", err)
	}

	if err := ValidateCar(Car{VIN: "  ", Year: 2022, Status: StatusAvailable}); !errors.Is(err, ErrInvalidVIN) {
		t.Errorf("expected ErrInvalidVIN, got %v", err)
	}
	if err := ValidateCar(Car{VIN: "VIN001", Year: 1950, Status: StatusAvailable}); !errors.Is(err, ErrYearOutOfRange) {
		t.Errorf("expected ErrYearOutOfRange, got %v", err)
	}
	if err := ValidateCar(Car{VIN: "VIN001", Year: 2022, Status: "Sold"}); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRowError_Unwrap(t *testing.T) {
	re := NewRowError("VIN001", "status", ErrInvalidStatus)
	if !errors.Is(re, ErrInvalidStatus) {
		t.Error("Unwrap should expose ErrInvalidStatus")
	}
	var target *RowError
	if !errors.As(re, &target) {
		t.Fatal("errors.As should work for *RowError")
	}
	if target.Field != "status" {
		t.Errorf("expected field=status, got %s", target.Field)
	}
}

func TestBuildSearchText(t *testing.T) {
	c := Car{
		Year:       2022,
		Make:       "BMW",
		Model:      "X5",
		Color:      "Negro",
		FuelType:   "Gasolina",
		Condition:  ConditionExcellent,
		Features:   []string{"Techo solar", "GPS"},
		BodyStyles: []string{"SUV"},
		Status:     StatusAvailable,
	}
	text := BuildSearchText(c)
	for _, want := range []string{"2022", "bmw", "x5", "negro", "gasolina", "excelente", "techo solar", "gps", "suv", "available"} {
		if !strings.Contains(text, want) {
			t.Errorf("search text missing %q: %s", want, text)
		}
	}
	if text != strings.ToLower(text) {
		t.Error("search text must be lowercase")
	}
}

func TestCarAvailable(t *testing.T) {
	if !(Car{Status: StatusAvailable}).Available() {
		t.Error("Available status should be available")
	}
	if (Car{Status: StatusReserved}).Available() {
		t.Error("Reserved status should not be available")
	}
}
