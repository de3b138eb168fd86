package testing

import (
	"context"
	"testing"
	"time"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/carcatalog/catalog/mock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

// CarFields will include the IDGenerator, the service clock and the brands
// and cars stored before the test runs.
type CarFields struct {
	IDGenerator catalog.IDGenerator
	Now         time.Time
	Brands      []*catalog.Brand
	Cars        []*catalog.Car
}

type carServiceF func(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
)

// CarService tests all the service functions.
func CarService(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
) {
	tests := []struct {
		name string
		fn   carServiceF
	}{
		{
			name: "CreateCar",
			fn:   CreateCar,
		},
		{
			name: "ListCars",
			fn:   ListCars,
		},
		{
			name: "GetCar",
			fn:   GetCar,
		},
		{
			name: "UpdateCar",
			fn:   UpdateCar,
		},
		{
			name: "DeleteCar",
			fn:   DeleteCar,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(init, t)
		})
	}
}

func seededCar(id, brandID uuid.UUID, series string, active bool) *catalog.Car {
	return &catalog.Car{
		ID:          id,
		BrandID:     brandID,
		Series:      series,
		Color:       "black",
		Year:        2018,
		FuelType:    catalog.FuelPetrol,
		Condition:   catalog.ConditionUsed,
		Mileage:     42000,
		EnginePower: "150 hp",
		IsActive:    active,
		CreatedAt:   seedTime,
		UpdatedAt:   seedTime,
	}
}

func validCarCreate(brandID uuid.UUID) catalog.CarCreate {
	return catalog.CarCreate{
		BrandID:     brandID,
		Series:      "Corolla",
		Color:       "white",
		Year:        2024,
		FuelType:    catalog.FuelElectric,
		Condition:   catalog.ConditionNew,
		Mileage:     0,
		EnginePower: "110 kW",
	}
}

func carBrands() []*catalog.Brand {
	return []*catalog.Brand{
		seededBrand(brandOneID, "Toyota"),
		seededBrand(brandTwoID, "Honda"),
	}
}

// CreateCar testing
func CreateCar(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
) {
	type args struct {
		create func() catalog.CarCreate
	}
	type wants struct {
		err  error
		car  *catalog.Car
		cars []*catalog.Car
	}

	existing := seededCar(carOneID, brandOneID, "Yaris", true)

	tests := []struct {
		name   string
		fields CarFields
		args   args
		wants  wants
	}{
		{
			name: "create car defaults to active",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
				Cars:        []*catalog.Car{existing},
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.Series = "  Corolla "
					c.Color = "white\t"
					return c
				},
			},
			wants: wants{
				car: &catalog.Car{
					ID:          newID,
					BrandID:     brandOneID,
					Series:      "Corolla",
					Color:       "white",
					Year:        2024,
					FuelType:    catalog.FuelElectric,
					Condition:   catalog.ConditionNew,
					EnginePower: "110 kW",
					IsActive:    true,
					CreatedAt:   now,
					UpdatedAt:   now,
				},
				cars: []*catalog.Car{
					existing,
					{
						ID:          newID,
						BrandID:     brandOneID,
						Series:      "Corolla",
						Color:       "white",
						Year:        2024,
						FuelType:    catalog.FuelElectric,
						Condition:   catalog.ConditionNew,
						EnginePower: "110 kW",
						IsActive:    true,
						CreatedAt:   now,
						UpdatedAt:   now,
					},
				},
			},
		},
		{
			name: "create inactive car from year zero",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandTwoID)
					c.Year = 0
					c.Mileage = 1
					c.IsActive = boolPtr(false)
					return c
				},
			},
			wants: wants{
				car: &catalog.Car{
					ID:          newID,
					BrandID:     brandTwoID,
					Series:      "Corolla",
					Color:       "white",
					Year:        0,
					FuelType:    catalog.FuelElectric,
					Condition:   catalog.ConditionNew,
					Mileage:     1,
					EnginePower: "110 kW",
					IsActive:    false,
					CreatedAt:   now,
					UpdatedAt:   now,
				},
				cars: []*catalog.Car{
					{
						ID:          newID,
						BrandID:     brandTwoID,
						Series:      "Corolla",
						Color:       "white",
						Year:        0,
						FuelType:    catalog.FuelElectric,
						Condition:   catalog.ConditionNew,
						Mileage:     1,
						EnginePower: "110 kW",
						IsActive:    false,
						CreatedAt:   now,
						UpdatedAt:   now,
					},
				},
			},
		},
		{
			name: "unknown brand is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
				Cars:        []*catalog.Car{existing},
			},
			args: args{
				create: func() catalog.CarCreate {
					return validCarCreate(brandThreeID)
				},
			},
			wants: wants{
				err:  catalog.ErrCarBrandInvalid,
				cars: []*catalog.Car{existing},
			},
		},
		{
			name: "missing brand is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					return validCarCreate(uuid.Nil)
				},
			},
			wants: wants{
				err:  catalog.ErrCarBrandInvalid,
				cars: []*catalog.Car{},
			},
		},
		{
			name: "year after the current year is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.Year = 2025
					return c
				},
			},
			wants: wants{
				err:  errors.Invalidf("year must be between 0 and 2024"),
				cars: []*catalog.Car{},
			},
		},
		{
			name: "negative year is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.Year = -1
					return c
				},
			},
			wants: wants{
				err:  errors.Invalidf("year must be between 0 and 2024"),
				cars: []*catalog.Car{},
			},
		},
		{
			name: "negative mileage is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.Mileage = -10
					return c
				},
			},
			wants: wants{
				err:  catalog.ErrMileageNegative,
				cars: []*catalog.Car{},
			},
		},
		{
			name: "unknown fuel type is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.FuelType = 5
					return c
				},
			},
			wants: wants{
				err:  errors.Invalidf("invalid fuel type 5"),
				cars: []*catalog.Car{},
			},
		},
		{
			name: "missing condition is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.Condition = 0
					return c
				},
			},
			wants: wants{
				err:  errors.Invalidf("invalid condition 0"),
				cars: []*catalog.Car{},
			},
		},
		{
			name: "blank series is rejected",
			fields: CarFields{
				IDGenerator: mock.NewIDGenerator(newID.String(), t),
				Now:         now,
				Brands:      carBrands(),
			},
			args: args{
				create: func() catalog.CarCreate {
					c := validCarCreate(brandOneID)
					c.Series = " "
					return c
				},
			},
			wants: wants{
				err:  errors.Invalidf("series required"),
				cars: []*catalog.Car{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)
			ctx := context.Background()

			car, err := s.CreateCar(ctx, tt.args.create())
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.car, car); diff != "" {
				t.Errorf("car is different -want/+got\ndiff %s", diff)
			}

			cars, err := s.ListCars(ctx, catalog.CarFilter{})
			if err != nil {
				t.Fatalf("failed to retrieve cars: %v", err)
			}
			if diff := cmp.Diff(tt.wants.cars, cars); diff != "" {
				t.Errorf("cars are different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// ListCars testing
func ListCars(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
) {
	seeded := []*catalog.Car{
		seededCar(carOneID, brandOneID, "Yaris", true),
		seededCar(carTwoID, brandTwoID, "Civic", false),
		seededCar(carThreeID, brandOneID, "Camry", false),
	}
	fields := CarFields{
		Brands: carBrands(),
		Cars:   seeded,
	}

	type args struct {
		filter catalog.CarFilter
	}
	type wants struct {
		err  error
		cars []*catalog.Car
	}

	tests := []struct {
		name   string
		fields CarFields
		args   args
		wants  wants
	}{
		{
			name:   "empty store returns an empty list",
			fields: CarFields{Brands: carBrands()},
			wants: wants{
				cars: []*catalog.Car{},
			},
		},
		{
			name:   "all cars oldest first",
			fields: fields,
			wants: wants{
				cars: seeded,
			},
		},
		{
			name:   "filter by brand",
			fields: fields,
			args: args{
				filter: catalog.CarFilter{BrandID: &brandOneID},
			},
			wants: wants{
				cars: []*catalog.Car{seeded[0], seeded[2]},
			},
		},
		{
			name:   "filter by unknown brand",
			fields: fields,
			args: args{
				filter: catalog.CarFilter{BrandID: &brandThreeID},
			},
			wants: wants{
				cars: []*catalog.Car{},
			},
		},
		{
			name:   "filter inactive",
			fields: fields,
			args: args{
				filter: catalog.CarFilter{IsActive: boolPtr(false)},
			},
			wants: wants{
				cars: []*catalog.Car{seeded[1], seeded[2]},
			},
		},
		{
			name:   "filter by brand and active",
			fields: fields,
			args: args{
				filter: catalog.CarFilter{BrandID: &brandOneID, IsActive: boolPtr(true)},
			},
			wants: wants{
				cars: []*catalog.Car{seeded[0]},
			},
		},
		{
			name:   "offset and limit",
			fields: fields,
			args: args{
				filter: catalog.CarFilter{Page: catalog.Page{Offset: 1, Limit: 1}},
			},
			wants: wants{
				cars: []*catalog.Car{seeded[1]},
			},
		},
		{
			name:   "limit above the maximum is rejected",
			fields: fields,
			args: args{
				filter: catalog.CarFilter{Page: catalog.Page{Limit: catalog.MaxPageSize + 1}},
			},
			wants: wants{
				err: catalog.ErrLimitTooLarge,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)

			cars, err := s.ListCars(context.Background(), tt.args.filter)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.cars, cars); diff != "" {
				t.Errorf("cars are different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// GetCar testing
func GetCar(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
) {
	type args struct {
		id uuid.UUID
	}
	type wants struct {
		err error
		car *catalog.Car
	}

	fields := CarFields{
		Brands: carBrands(),
		Cars: []*catalog.Car{
			seededCar(carOneID, brandOneID, "Yaris", true),
			seededCar(carTwoID, brandTwoID, "Civic", false),
		},
	}

	tests := []struct {
		name   string
		fields CarFields
		args   args
		wants  wants
	}{
		{
			name:   "basic find car by id",
			fields: fields,
			args: args{
				id: carTwoID,
			},
			wants: wants{
				car: seededCar(carTwoID, brandTwoID, "Civic", false),
			},
		},
		{
			name:   "find car by id not exists",
			fields: fields,
			args: args{
				id: carThreeID,
			},
			wants: wants{
				err: catalog.ErrCarNotFound,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)

			car, err := s.GetCar(context.Background(), tt.args.id)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.car, car); diff != "" {
				t.Errorf("car is different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// UpdateCar testing
func UpdateCar(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
) {
	type args struct {
		id     uuid.UUID
		update catalog.CarUpdate
	}
	type wants struct {
		err error
		car *catalog.Car
	}

	fields := CarFields{
		Now:    now,
		Brands: carBrands(),
		Cars: []*catalog.Car{
			seededCar(carOneID, brandOneID, "Yaris", true),
		},
	}

	replacement := catalog.CarUpdate{
		BrandID:     brandTwoID,
		Series:      " Jazz ",
		Color:       "silver",
		Year:        2019,
		FuelType:    catalog.FuelLPG,
		Condition:   catalog.ConditionUsed,
		Mileage:     61000,
		EnginePower: "102 hp",
		IsActive:    boolPtr(false),
	}

	withYear := func(u catalog.CarUpdate, year int) catalog.CarUpdate {
		u.Year = year
		return u
	}
	withBrand := func(u catalog.CarUpdate, id uuid.UUID) catalog.CarUpdate {
		u.BrandID = id
		return u
	}
	withoutActive := func(u catalog.CarUpdate) catalog.CarUpdate {
		u.IsActive = nil
		return u
	}

	tests := []struct {
		name   string
		fields CarFields
		args   args
		wants  wants
	}{
		{
			name:   "replace every field",
			fields: fields,
			args: args{
				id:     carOneID,
				update: replacement,
			},
			wants: wants{
				car: &catalog.Car{
					ID:          carOneID,
					BrandID:     brandTwoID,
					Series:      "Jazz",
					Color:       "silver",
					Year:        2019,
					FuelType:    catalog.FuelLPG,
					Condition:   catalog.ConditionUsed,
					Mileage:     61000,
					EnginePower: "102 hp",
					IsActive:    false,
					CreatedAt:   seedTime,
					UpdatedAt:   now,
				},
			},
		},
		{
			name:   "omitted active flag resets to active",
			fields: fields,
			args: args{
				id:     carOneID,
				update: withoutActive(replacement),
			},
			wants: wants{
				car: &catalog.Car{
					ID:          carOneID,
					BrandID:     brandTwoID,
					Series:      "Jazz",
					Color:       "silver",
					Year:        2019,
					FuelType:    catalog.FuelLPG,
					Condition:   catalog.ConditionUsed,
					Mileage:     61000,
					EnginePower: "102 hp",
					IsActive:    true,
					CreatedAt:   seedTime,
					UpdatedAt:   now,
				},
			},
		},
		{
			name:   "update car not exists",
			fields: fields,
			args: args{
				id:     carTwoID,
				update: replacement,
			},
			wants: wants{
				err: catalog.ErrCarNotFound,
			},
		},
		{
			name:   "unknown brand is rejected",
			fields: fields,
			args: args{
				id:     carOneID,
				update: withBrand(replacement, brandThreeID),
			},
			wants: wants{
				err: catalog.ErrCarBrandInvalid,
			},
		},
		{
			name:   "unknown brand is reported before unknown car",
			fields: fields,
			args: args{
				id:     carTwoID,
				update: withBrand(replacement, brandThreeID),
			},
			wants: wants{
				err: catalog.ErrCarBrandInvalid,
			},
		},
		{
			name:   "year after the current year is rejected",
			fields: fields,
			args: args{
				id:     carOneID,
				update: withYear(replacement, 2030),
			},
			wants: wants{
				err: errors.Invalidf("year must be between 0 and 2024"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)
			ctx := context.Background()

			car, err := s.UpdateCar(ctx, tt.args.id, tt.args.update)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)
			if diff := cmp.Diff(tt.wants.car, car); diff != "" {
				t.Errorf("car is different -want/+got\ndiff %s", diff)
			}

			if tt.wants.err != nil {
				return
			}

			got, err := s.GetCar(ctx, tt.args.id)
			if err != nil {
				t.Fatalf("failed to retrieve updated car: %v", err)
			}
			if diff := cmp.Diff(tt.wants.car, got); diff != "" {
				t.Errorf("stored car is different -want/+got\ndiff %s", diff)
			}
		})
	}
}

// DeleteCar testing
func DeleteCar(
	init func(CarFields, *testing.T) catalog.CarService,
	t *testing.T,
) {
	type args struct {
		id uuid.UUID
	}
	type wants struct {
		err  error
		cars []*catalog.Car
	}

	active := seededCar(carOneID, brandOneID, "Yaris", true)
	inactive := seededCar(carTwoID, brandOneID, "Corolla", false)
	fields := CarFields{
		Brands: carBrands(),
		Cars:   []*catalog.Car{active, inactive},
	}

	tests := []struct {
		name   string
		fields CarFields
		args   args
		wants  wants
	}{
		{
			name:   "delete inactive car",
			fields: fields,
			args: args{
				id: carTwoID,
			},
			wants: wants{
				cars: []*catalog.Car{active},
			},
		},
		{
			name:   "active car is kept",
			fields: fields,
			args: args{
				id: carOneID,
			},
			wants: wants{
				err:  catalog.ErrCarActive,
				cars: []*catalog.Car{active, inactive},
			},
		},
		{
			name:   "delete car not exists",
			fields: fields,
			args: args{
				id: carThreeID,
			},
			wants: wants{
				err:  catalog.ErrCarNotFound,
				cars: []*catalog.Car{active, inactive},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := init(tt.fields, t)
			ctx := context.Background()

			err := s.DeleteCar(ctx, tt.args.id)
			diffPlatformErrors(tt.name, err, tt.wants.err, t)

			cars, err := s.ListCars(ctx, catalog.CarFilter{})
			if err != nil {
				t.Fatalf("failed to retrieve cars: %v", err)
			}
			if diff := cmp.Diff(tt.wants.cars, cars); diff != "" {
				t.Errorf("cars are different -want/+got\ndiff %s", diff)
			}
		})
	}
}
