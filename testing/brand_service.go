package testing

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/mock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// BrandFields will include the IDGenerator, the service clock and the brands
// and cars stored before the test runs.
type BrandFields struct {
	IDGenerator catalog.IDGenerator
	Now         time.Time
	Brands      []*catalog.Brand
	Cars        []*catalog.Car
}

type brandServiceF func(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
)

// BrandService tests all the service functions.
func BrandService(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
) {
	tests := []struct {
		name string
		fn   brandServiceF
	}{
		{
			name: "CreateBrand",
			fn:   CreateBrand,
		},
		{
			name: "ListBrands",
			fn:   ListBrands,
		},
		{
			name: "GetBrand",
			fn:   GetBrand,
		},
		{
			name: "UpdateBrand",
			fn:   UpdateBrand,
		},
		{
			name: "DeleteBrand",
			fn:   DeleteBrand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(init, t)
		})
	}
}

func seededBrand(id uuid.UUID, name string) *catalog.Brand {
	return &catalog.Brand{
		ID:        id,
		Name:      name,
		CreatedAt: seedTime,
		UpdatedAt: seedTime,
	}
}

// CreateBrand testing
func CreateBrand(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
) {
	type args struct {
		create catalog.BrandCreate
	}
	type wants struct {
		err    error
		brand  *catalog.Brand
		brands []*catalog.Brand
	}

	tests := []struct {
		name   string
		fields BrandFields
		args   args
		wants  wants
	}{
		{
			name: "create brand with empty store",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
			},
			args: args{
				create: catalog.BrandCreate{Name: "Toyota"},
			},
			wants: wants{
				brand: &catalog.Brand{
					ID:        newID,
					Name:      "Toyota",
					CreatedAt: now,
					UpdatedAt: now,
				},
				brands: []*catalog.Brand{
					{
						ID:        newID,
						Name:      "Toyota",
						CreatedAt: now,
						UpdatedAt: now,
					},
				},
			},
		},
		{
			name: "name is trimmed",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      []*catalog.Brand{seededBrand(brandOneID, "Audi")},
			},
			args: args{
				create: catalog.BrandCreate{Name: "  Volvo\t"},
			},
			wants: wants{
				brand: &catalog.Brand{
					ID:        newID,
					Name:      "Volvo",
					CreatedAt: now,
					UpdatedAt: now,
				},
				brands: []*catalog.Brand{
					seededBrand(brandOneID, "Audi"),
					{
						ID:        newID,
						Name:      "Volvo",
						CreatedAt: now,
						UpdatedAt: now,
					},
				},
			},
		},
		{
			name: "names differing only in case conflict",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      []*catalog.Brand{seededBrand(brandOneID, "Toyota")},
			},
			args: args{
				create: catalog.BrandCreate{Name: " TOYOTA "},
			},
			wants: wants{
				err:    catalog.ErrBrandExists("TOYOTA"),
				brands: []*catalog.Brand{seededBrand(brandOneID, "Toyota")},
			},
		},
		{
			name: "blank name is rejected",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
			},
			args: args{
				create: catalog.BrandCreate{Name: "   "},
			},
			wants: wants{
				err:    catalog.ErrBrandNameRequired,
				brands: []*catalog.Brand{},
			},
		},
		{
			name: "overlong name is rejected",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
			},
			args: args{
				create: catalog.BrandCreate{Name: strings.Repeat("a", catalog.MaxBrandNameLength+1)},
			},
			wants: wants{
				err:    catalog.ErrBrandNameTooLong,
				brands: []*catalog.Brand{},
			},
		},
		{
			name: "name length is counted in characters",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
			},
			args: args{
				create: catalog.BrandCreate{Name: strings.Repeat("Ş", catalog.MaxBrandNameLength)},
			},
			wants: wants{
				brand: &catalog.Brand{
					ID:        newID,
					Name:      strings.Repeat("Ş", catalog.MaxBrandNameLength),
					CreatedAt: now,
					UpdatedAt: now,
				},
				brands: []*catalog.Brand{
					{
						ID:        newID,
						Name:      strings.Repeat("Ş", catalog.MaxBrandNameLength),
						CreatedAt: now,
						UpdatedAt: now,
					},
				},
			},
		},
		{
			name: "overlong multibyte name is rejected",
			fields: BrandFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
			},
			args: args{
				create: catalog.BrandCreate{Name: strings.Repeat("Ö", catalog.MaxBrandNameLength+1)},
			},
			wants: wants{
				err:    catalog.ErrBrandNameTooLong,
				brands: []*catalog.Brand{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)
			ctx := context.Background()

			brand, err := s.CreateBrand(ctx, tt.args.create)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.brand, brand); diff != "" {
				t.Errorf("brand is different -want/+got\ndiff %s", diff)
			}

			brands, err := s.ListBrands(ctx, catalog.BrandFilter{})
			if err != nil {
				t.Fatalf("failed to retrieve brands: %v", err)
			}
			if diff := cmp.Diff(tt.wants.brands, brands); diff != "" {
				t.Errorf("brands are different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// ListBrands testing
func ListBrands(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
) {
	seeded := []*catalog.Brand{
		seededBrand(brandOneID, "volvo"),
		seededBrand(brandTwoID, "Audi"),
		seededBrand(brandThreeID, "bmw"),
	}

	type args struct {
		filter catalog.BrandFilter
	}
	type wants struct {
		err    error
		brands []*catalog.Brand
	}

	tests := []struct {
		name   string
		fields BrandFields
		args   args
		wants  wants
	}{
		{
			name:   "empty store returns an empty list",
			fields: BrandFields{},
			wants: wants{
				brands: []*catalog.Brand{},
			},
		},
		{
			name:   "brands are ordered by name ignoring case",
			fields: BrandFields{Brands: seeded},
			wants: wants{
				brands: []*catalog.Brand{
					seededBrand(brandTwoID, "Audi"),
					seededBrand(brandThreeID, "bmw"),
					seededBrand(brandOneID, "volvo"),
				},
			},
		},
		{
			name:   "filter by name ignores case and surrounding space",
			fields: BrandFields{Brands: seeded},
			args: args{
				filter: catalog.BrandFilter{Name: strPtr(" AUDI ")},
			},
			wants: wants{
				brands: []*catalog.Brand{seededBrand(brandTwoID, "Audi")},
			},
		},
		{
			name:   "filter by unknown name",
			fields: BrandFields{Brands: seeded},
			args: args{
				filter: catalog.BrandFilter{Name: strPtr("saab")},
			},
			wants: wants{
				brands: []*catalog.Brand{},
			},
		},
		{
			name:   "limit",
			fields: BrandFields{Brands: seeded},
			args: args{
				filter: catalog.BrandFilter{Page: catalog.Page{Limit: 2}},
			},
			wants: wants{
				brands: []*catalog.Brand{
					seededBrand(brandTwoID, "Audi"),
					seededBrand(brandThreeID, "bmw"),
				},
			},
		},
		{
			name:   "offset without limit",
			fields: BrandFields{Brands: seeded},
			args: args{
				filter: catalog.BrandFilter{Page: catalog.Page{Offset: 1}},
			},
			wants: wants{
				brands: []*catalog.Brand{
					seededBrand(brandThreeID, "bmw"),
					seededBrand(brandOneID, "volvo"),
				},
			},
		},
		{
			name:   "offset and limit",
			fields: BrandFields{Brands: seeded},
			args: args{
				filter: catalog.BrandFilter{Page: catalog.Page{Offset: 1, Limit: 1}},
			},
			wants: wants{
				brands: []*catalog.Brand{seededBrand(brandThreeID, "bmw")},
			},
		},
		{
			name:   "negative offset is rejected",
			fields: BrandFields{Brands: seeded},
			args: args{
				filter: catalog.BrandFilter{Page: catalog.Page{Offset: -1}},
			},
			wants: wants{
				err: catalog.ErrOffsetNegative,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)

			brands, err := s.ListBrands(context.Background(), tt.args.filter)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.brands, brands); diff != "" {
				t.Errorf("brands are different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// GetBrand testing
func GetBrand(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
) {
	type args struct {
		id uuid.UUID
	}
	type wants struct {
		err   error
		brand *catalog.Brand
	}

	tests := []struct {
		name   string
		fields BrandFields
		args   args
		wants  wants
	}{
		{
			name: "basic find brand by id",
			fields: BrandFields{
				Brands: []*catalog.Brand{
					seededBrand(brandOneID, "Audi"),
					seededBrand(brandTwoID, "BMW"),
				},
			},
			args: args{
				id: brandTwoID,
			},
			wants: wants{
				brand: seededBrand(brandTwoID, "BMW"),
			},
		},
		{
			name: "find brand by id not exists",
			fields: BrandFields{
				Brands: []*catalog.Brand{seededBrand(brandOneID, "Audi")},
			},
			args: args{
				id: brandThreeID,
			},
			wants: wants{
				err: catalog.ErrBrandNotFound,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)

			brand, err := s.GetBrand(context.Background(), tt.args.id)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.brand, brand); diff != "" {
				t.Errorf("brand is different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// UpdateBrand testing
func UpdateBrand(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
) {
	type args struct {
		id     uuid.UUID
		update catalog.BrandUpdate
	}
	type wants struct {
		err   error
		brand *catalog.Brand
	}

	seeded := []*catalog.Brand{
		seededBrand(brandOneID, "Audi"),
		seededBrand(brandTwoID, "BMW"),
	}

	tests := []struct {
		name   string
		fields BrandFields
		args   args
		wants  wants
	}{
		{
			name:   "rename brand",
			fields: BrandFields{Now: now, Brands: seeded},
			args: args{
				id:     brandOneID,
				update: catalog.BrandUpdate{Name: " Audi AG "},
			},
			wants: wants{
				brand: &catalog.Brand{
					ID:        brandOneID,
					Name:      "Audi AG",
					CreatedAt: seedTime,
					UpdatedAt: now,
				},
			},
		},
		{
			name:   "rename brand to its own name in another case",
			fields: BrandFields{Now: now, Brands: seeded},
			args: args{
				id:     brandTwoID,
				update: catalog.BrandUpdate{Name: "bmw"},
			},
			wants: wants{
				brand: &catalog.Brand{
					ID:        brandTwoID,
					Name:      "bmw",
					CreatedAt: seedTime,
					UpdatedAt: now,
				},
			},
		},
		{
			name:   "rename brand to the name of another brand",
			fields: BrandFields{Now: now, Brands: seeded},
			args: args{
				id:     brandOneID,
				update: catalog.BrandUpdate{Name: "bMw"},
			},
			wants: wants{
				err: catalog.ErrBrandExists("bMw"),
			},
		},
		{
			name:   "update brand not exists",
			fields: BrandFields{Now: now, Brands: seeded},
			args: args{
				id:     brandThreeID,
				update: catalog.BrandUpdate{Name: "Saab"},
			},
			wants: wants{
				err: catalog.ErrBrandNotFound,
			},
		},
		{
			name:   "blank name is rejected",
			fields: BrandFields{Now: now, Brands: seeded},
			args: args{
				id:     brandOneID,
				update: catalog.BrandUpdate{Name: ""},
			},
			wants: wants{
				err: catalog.ErrBrandNameRequired,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)
			ctx := context.Background()

			brand, err := s.UpdateBrand(ctx, tt.args.id, tt.args.update)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.brand, brand); diff != "" {
				t.Errorf("brand is different -want/+got\ndiff %s", diff)
			}

			if tt.wants.err != nil {
				return
			}

			got, err := s.GetBrand(ctx, tt.args.id)
			if err != nil {
				t.Fatalf("failed to retrieve updated brand: %v", err)
			}
			if diff := cmp.Diff(tt.wants.brand, got); diff != "" {
				t.Errorf("stored brand is different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// DeleteBrand testing
func DeleteBrand(
	init func(BrandFields, *testing.T) catalog.BrandService,
	t *testing.T,
) {
	type args struct {
		id uuid.UUID
	}
	type wants struct {
		err    error
		brands []*catalog.Brand
	}

	tests := []struct {
		name   string
		fields BrandFields
		args   args
		wants  wants
	}{
		{
			name: "delete brand",
			fields: BrandFields{
				Brands: []*catalog.Brand{
					seededBrand(brandOneID, "Audi"),
					seededBrand(brandTwoID, "BMW"),
				},
			},
			args: args{
				id: brandOneID,
			},
			wants: wants{
				brands: []*catalog.Brand{seededBrand(brandTwoID, "BMW")},
			},
		},
		{
			name: "delete brand with cars",
			fields: BrandFields{
				Brands: []*catalog.Brand{seededBrand(brandOneID, "Audi")},
				Cars: []*catalog.Car{
					seededCar(carOneID, brandOneID, "A4", true),
					seededCar(carTwoID, brandOneID, "A6", false),
				},
			},
			args: args{
				id: brandOneID,
			},
			wants: wants{
				brands: []*catalog.Brand{},
			},
		},
		{
			name: "delete brand not exists",
			fields: BrandFields{
				Brands: []*catalog.Brand{seededBrand(brandOneID, "Audi")},
			},
			args: args{
				id: brandTwoID,
			},
			wants: wants{
				err:    catalog.ErrBrandNotFound,
				brands: []*catalog.Brand{seededBrand(brandOneID, "Audi")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)
			ctx := context.Background()

			err := s.DeleteBrand(ctx, tt.args.id)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)

			brands, err := s.ListBrands(ctx, catalog.BrandFilter{})
			if err != nil {
				t.Fatalf("failed to retrieve brands: %v", err)
			}
			if diff := cmp.Diff(tt.wants.brands, brands); diff != "" {
				t.Errorf("brands are different -want/+got\ndiff %s", diff)
			}
		})
	}
}
