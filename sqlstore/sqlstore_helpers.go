package sqlstore

import (
	"context"
	"testing"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/sqlstore/migrations"
	"go.uber.org/zap/zaptest"
)

// NewTestStore returns an in-memory sqlite store with the catalog schema
// applied. It is closed when the test finishes.
func NewTestStore(t testing.TB) *SqlStore {
	t.Helper()

	store, err := NewSqlStore(DriverSQLite, InmemPath, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("unable to open testing database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("closing testing database: %v", err)
		}
	})

	MustMigrate(t, store)
	return store
}

// MustMigrate applies the catalog schema for the store's driver.
func MustMigrate(t testing.TB, store *SqlStore) {
	t.Helper()

	source, err := migrations.ForDriver(store.Driver())
	if err != nil {
		t.Fatal(err)
	}
	if err := NewMigrator(store, zaptest.NewLogger(t)).Up(context.Background(), source); err != nil {
		t.Fatalf("unable to migrate testing database: %v", err)
	}
}

// SeedBrands inserts brands exactly as given, bypassing validation.
func SeedBrands(t testing.TB, store *SqlStore, brands ...*catalog.Brand) {
	t.Helper()

	for _, b := range brands {
		q, args, err := store.Builder().
			Insert("brands").
			Columns("id", "name", "name_key", "created_at", "updated_at").
			Values(b.ID, b.Name, catalog.NormalizeBrandName(b.Name), b.CreatedAt, b.UpdatedAt).
			ToSql()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.DB.ExecContext(context.Background(), q, args...); err != nil {
			t.Fatalf("seeding brand %q: %v", b.Name, err)
		}
	}
}

// SeedCars inserts cars exactly as given, bypassing validation.
func SeedCars(t testing.TB, store *SqlStore, cars ...*catalog.Car) {
	t.Helper()

	for _, c := range cars {
		q, args, err := store.Builder().
			Insert("cars").
			Columns(
				"id", "brand_id", "series", "color", "year", "fuel_type", "condition",
				"mileage", "engine_power", "is_active", "created_at", "updated_at",
			).
			Values(
				c.ID, c.BrandID, c.Series, c.Color, c.Year, c.FuelType, c.Condition,
				c.Mileage, c.EnginePower, c.IsActive, c.CreatedAt, c.UpdatedAt,
			).
			ToSql()
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.DB.ExecContext(context.Background(), q, args...); err != nil {
			t.Fatalf("seeding car %s: %v", c.ID, err)
		}
	}
}
