package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/google/uuid"
)

const (
	OpListCars  = "ListCars"
	OpGetCar    = "GetCar"
	OpCreateCar = "CreateCar"
	OpUpdateCar = "UpdateCar"
	OpDeleteCar = "DeleteCar"
)

var (
	ErrCarNotFound = &errors.Error{
		Code: errors.ENotFound,
		Msg:  "car not found",
	}
	ErrCarActive = &errors.Error{
		Code: errors.EConflict,
		Msg:  "car is active; deactivate it before deleting",
	}
	ErrCarBrandInvalid = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "brand ID is missing or invalid",
	}
	ErrMileageNegative = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "mileage cannot be negative",
	}
)

// FuelType is the kind of fuel a car runs on.
type FuelType int

const (
	FuelPetrol FuelType = iota + 1
	FuelDiesel
	FuelElectric
	FuelLPG
)

var fuelTypeNames = map[FuelType]string{
	FuelPetrol:   "petrol",
	FuelDiesel:   "diesel",
	FuelElectric: "electric",
	FuelLPG:      "lpg",
}

func (f FuelType) String() string {
	if s, ok := fuelTypeNames[f]; ok {
		return s
	}
	return "FuelType(" + strconv.Itoa(int(f)) + ")"
}

// Valid reports whether f is a known fuel type.
func (f FuelType) Valid() bool {
	_, ok := fuelTypeNames[f]
	return ok
}

// ParseFuelType accepts either a fuel type name or its numeric value.
func ParseFuelType(s string) (FuelType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range fuelTypeNames {
		if s == name {
			return f, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && FuelType(n).Valid() {
		return FuelType(n), nil
	}
	return 0, errors.Invalidf("invalid fuel type %q", s)
}

// Condition tells whether a car is new or used.
type Condition int

const (
	ConditionNew Condition = iota + 1
	ConditionUsed
)

var conditionNames = map[Condition]string{
	ConditionNew:  "new",
	ConditionUsed: "used",
}

func (c Condition) String() string {
	if s, ok := conditionNames[c]; ok {
		return s
	}
	return "Condition(" + strconv.Itoa(int(c)) + ")"
}

// Valid reports whether c is a known condition.
func (c Condition) Valid() bool {
	_, ok := conditionNames[c]
	return ok
}

// ParseCondition accepts either a condition name or its numeric value.
func ParseCondition(s string) (Condition, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c, name := range conditionNames {
		if s == name {
			return c, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Condition(n).Valid() {
		return Condition(n), nil
	}
	return 0, errors.Invalidf("invalid condition %q", s)
}

// Car is a single vehicle listed in the catalog.
type Car struct {
	ID          uuid.UUID `json:"id" db:"id"`
	BrandID     uuid.UUID `json:"brandID" db:"brand_id"`
	Series      string    `json:"series" db:"series"`
	Color       string    `json:"color" db:"color"`
	Year        int       `json:"year" db:"year"`
	FuelType    FuelType  `json:"fuelType" db:"fuel_type"`
	Condition   Condition `json:"condition" db:"condition"`
	Mileage     int       `json:"mileage" db:"mileage"`
	EnginePower string    `json:"enginePower" db:"engine_power"`
	IsActive    bool      `json:"isActive" db:"is_active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// CarCreate holds the writable fields of a car. IsActive defaults to true.
type CarCreate struct {
	BrandID     uuid.UUID `json:"brandID"`
	Series      string    `json:"series"`
	Color       string    `json:"color"`
	Year        int       `json:"year"`
	FuelType    FuelType  `json:"fuelType"`
	Condition   Condition `json:"condition"`
	Mileage     int       `json:"mileage"`
	EnginePower string    `json:"enginePower"`
	IsActive    *bool     `json:"isActive,omitempty"`
}

// Active returns the requested active flag, defaulting to true.
func (c CarCreate) Active() bool {
	if c.IsActive == nil {
		return true
	}
	return *c.IsActive
}

// OK trims the request in place and validates every field against now.
// It does not check that the brand exists.
func (c *CarCreate) OK(now time.Time) error {
	c.Series = strings.TrimSpace(c.Series)
	c.Color = strings.TrimSpace(c.Color)
	c.EnginePower = strings.TrimSpace(c.EnginePower)

	switch {
	case c.BrandID == uuid.Nil:
		return ErrCarBrandInvalid
	case c.Series == "":
		return fieldRequiredError("series")
	case c.Color == "":
		return fieldRequiredError("color")
	case c.EnginePower == "":
		return fieldRequiredError("enginePower")
	case c.Year < 0 || c.Year > now.Year():
		return errors.Invalidf("year must be between 0 and %d", now.Year())
	case c.Mileage < 0:
		return ErrMileageNegative
	case !c.FuelType.Valid():
		return errors.Invalidf("invalid fuel type %d", c.FuelType)
	case !c.Condition.Valid():
		return errors.Invalidf("invalid condition %d", c.Condition)
	}
	return nil
}

// CarUpdate replaces every writable field of a car.
type CarUpdate CarCreate

// OK trims the request in place and validates every field against now.
func (c *CarUpdate) OK(now time.Time) error {
	return (*CarCreate)(c).OK(now)
}

// Active returns the requested active flag, defaulting to true.
func (c CarUpdate) Active() bool {
	return CarCreate(c).Active()
}

// CarFilter selects cars.
type CarFilter struct {
	BrandID  *uuid.UUID
	IsActive *bool
	Page
}

func fieldRequiredError(field string) error {
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("%s required", field),
	}
}

//go:generate go run github.com/golang/mock/mockgen -package mock -destination mock/car_service.go github.com/carcatalog/catalog CarService

// CarService manages cars.
type CarService interface {
	// ListCars returns the cars matching filter, oldest first.
	ListCars(ctx context.Context, filter CarFilter) ([]*Car, error)

	// GetCar returns a single car by ID.
	GetCar(ctx context.Context, id uuid.UUID) (*Car, error)

	// CreateCar creates a car for an existing brand.
	CreateCar(ctx context.Context, create CarCreate) (*Car, error)

	// UpdateCar replaces the writable fields of a car.
	UpdateCar(ctx context.Context, id uuid.UUID, update CarUpdate) (*Car, error)

	// DeleteCar deletes an inactive car. Active cars cannot be deleted.
	DeleteCar(ctx context.Context, id uuid.UUID) error
}
