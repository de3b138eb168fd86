package catalog

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/google/uuid"
)

const (
	OpListBrands  = "ListBrands"
	OpGetBrand    = "GetBrand"
	OpCreateBrand = "CreateBrand"
	OpUpdateBrand = "UpdateBrand"
	OpDeleteBrand = "DeleteBrand"
)

// MaxBrandNameLength is the longest brand name accepted, in characters.
const MaxBrandNameLength = 255

var (
	ErrBrandNotFound = &errors.Error{
		Code: errors.ENotFound,
		Msg:  "brand not found",
	}
	ErrBrandNameRequired = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "brand name is required",
	}
	ErrBrandNameTooLong = errors.Invalidf("brand name must be at most %d characters", MaxBrandNameLength)
)

// ErrBrandExists is returned when another brand already uses name, compared case-insensitively.
func ErrBrandExists(name string) *errors.Error {
	return &errors.Error{
		Code: errors.EConflict,
		Msg:  `brand "` + name + `" already exists`,
	}
}

// Brand is a car manufacturer.
type Brand struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// BrandCreate holds the writable fields of a new brand.
type BrandCreate struct {
	Name string `json:"name"`
}

// OK trims the request in place and validates it.
func (b *BrandCreate) OK() error {
	b.Name = strings.TrimSpace(b.Name)
	return validateBrandName(b.Name)
}

// BrandUpdate replaces the name of an existing brand.
type BrandUpdate struct {
	Name string `json:"name"`
}

// OK trims the request in place and validates it.
func (b *BrandUpdate) OK() error {
	b.Name = strings.TrimSpace(b.Name)
	return validateBrandName(b.Name)
}

func validateBrandName(name string) error {
	if name == "" {
		return ErrBrandNameRequired
	}
	if utf8.RuneCountInString(name) > MaxBrandNameLength {
		return ErrBrandNameTooLong
	}
	return nil
}

// BrandFilter selects brands. Name matches exactly, ignoring case and
// surrounding whitespace.
type BrandFilter struct {
	Name *string
	Page
}

// NormalizeBrandName is the key brand names are compared by.
func NormalizeBrandName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

//go:generate go run github.com/golang/mock/mockgen -package mock -destination mock/brand_service.go github.com/carcatalog/catalog BrandService

// BrandService manages brands.
type BrandService interface {
	// ListBrands returns the brands matching filter, ordered by name.
	ListBrands(ctx context.Context, filter BrandFilter) ([]*Brand, error)

	// GetBrand returns a single brand by ID.
	GetBrand(ctx context.Context, id uuid.UUID) (*Brand, error)

	// CreateBrand creates a brand. Names are unique, ignoring case.
	CreateBrand(ctx context.Context, create BrandCreate) (*Brand, error)

	// UpdateBrand renames a brand.
	UpdateBrand(ctx context.Context, id uuid.UUID, update BrandUpdate) (*Brand, error)

	// DeleteBrand deletes a brand along with all of its cars.
	DeleteBrand(ctx context.Context, id uuid.UUID) error
}
