package cars

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/benbjohnson/clock"
	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/idgen"
	ierrors "github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/carcatalog/catalog/kit/tracing"
	"github.com/carcatalog/catalog/sqlstore"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

var _ catalog.CarService = (*Service)(nil)

var carColumns = []string{
	"id", "brand_id", "series", "color", "year", "fuel_type", "condition",
	"mileage", "engine_power", "is_active", "created_at", "updated_at",
}

type Service struct {
	store       *sqlstore.SqlStore
	log         *zap.Logger
	idGenerator catalog.IDGenerator
	clock       clock.Clock
}

// Option configures a Service.
type Option func(*Service)

func WithIDGenerator(g catalog.IDGenerator) Option {
	return func(s *Service) {
		s.idGenerator = g
	}
}

// WithClock sets the clock used for timestamps and for the upper bound of
// the model year.
func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func NewService(logger *zap.Logger, store *sqlstore.SqlStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		log:         logger,
		idGenerator: idgen.NewIDGenerator(),
		clock:       clock.New(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Microsecond)
}

// ListCars returns the cars matching filter, oldest first.
func (s *Service) ListCars(ctx context.Context, filter catalog.CarFilter) ([]*catalog.Car, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "cars.ListCars")
	defer span.Finish()

	if err := filter.Page.OK(); err != nil {
		return nil, err
	}

	q := s.store.Builder().
		Select(carColumns...).
		From("cars").
		OrderBy("created_at", "id")
	if filter.BrandID != nil {
		q = q.Where(sq.Eq{"brand_id": *filter.BrandID})
	}
	if filter.IsActive != nil {
		q = q.Where(sq.Eq{"is_active": *filter.IsActive})
	}
	q = sqlstore.Paginate(q, filter.Offset, filter.Limit)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpListCars, err)
	}

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	cs := []*catalog.Car{}
	if err := s.store.DB.SelectContext(ctx, &cs, query, args...); err != nil {
		return nil, tracing.LogError(span, ierrors.Internal(catalog.OpListCars, err))
	}

	return cs, nil
}

func (s *Service) GetCar(ctx context.Context, id uuid.UUID) (*catalog.Car, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "cars.GetCar")
	defer span.Finish()

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	return s.getCar(ctx, s.store.DB, id)
}

// CreateCar validates create and inserts it. The brand must exist.
func (s *Service) CreateCar(ctx context.Context, create catalog.CarCreate) (*catalog.Car, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "cars.CreateCar")
	defer span.Finish()

	now := s.now()
	if err := create.OK(now); err != nil {
		return nil, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	tx, err := s.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, ierrors.Internal(catalog.OpCreateCar, err)
	}
	defer tx.Rollback()

	if err := s.checkBrand(ctx, tx, catalog.OpCreateCar, create.BrandID); err != nil {
		return nil, err
	}

	id := s.idGenerator.ID()
	query, args, err := s.store.Builder().
		Insert("cars").
		Columns(carColumns...).
		Values(
			id, create.BrandID, create.Series, create.Color, create.Year, create.FuelType, create.Condition,
			create.Mileage, create.EnginePower, create.Active(), now, now,
		).
		ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpCreateCar, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, tracing.LogError(span, writeError(catalog.OpCreateCar, err))
	}

	c, err := s.getCar(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, ierrors.Internal(catalog.OpCreateCar, err)
	}

	return c, nil
}

// UpdateCar replaces every writable field of the car.
func (s *Service) UpdateCar(ctx context.Context, id uuid.UUID, update catalog.CarUpdate) (*catalog.Car, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "cars.UpdateCar")
	defer span.Finish()

	now := s.now()
	if err := update.OK(now); err != nil {
		return nil, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	tx, err := s.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, ierrors.Internal(catalog.OpUpdateCar, err)
	}
	defer tx.Rollback()

	// The brand is checked before the car, so an update naming both an
	// unknown car and an unknown brand is invalid rather than not found.
	if err := s.checkBrand(ctx, tx, catalog.OpUpdateCar, update.BrandID); err != nil {
		return nil, err
	}

	if _, err := s.getCar(ctx, tx, id); err != nil {
		return nil, err
	}

	query, args, err := s.store.Builder().
		Update("cars").
		SetMap(sq.Eq{
			"brand_id":     update.BrandID,
			"series":       update.Series,
			"color":        update.Color,
			"year":         update.Year,
			"fuel_type":    update.FuelType,
			"condition":    update.Condition,
			"mileage":      update.Mileage,
			"engine_power": update.EnginePower,
			"is_active":    update.Active(),
			"updated_at":   now,
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpUpdateCar, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, tracing.LogError(span, writeError(catalog.OpUpdateCar, err))
	}

	c, err := s.getCar(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, ierrors.Internal(catalog.OpUpdateCar, err)
	}

	return c, nil
}

// DeleteCar removes an inactive car.
func (s *Service) DeleteCar(ctx context.Context, id uuid.UUID) error {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "cars.DeleteCar")
	defer span.Finish()

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	tx, err := s.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return ierrors.Internal(catalog.OpDeleteCar, err)
	}
	defer tx.Rollback()

	c, err := s.getCar(ctx, tx, id)
	if err != nil {
		return err
	}
	if c.IsActive {
		return catalog.ErrCarActive
	}

	query, args, err := s.store.Builder().
		Delete("cars").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return ierrors.Internal(catalog.OpDeleteCar, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return tracing.LogError(span, ierrors.Internal(catalog.OpDeleteCar, err))
	}

	if err := tx.Commit(); err != nil {
		return ierrors.Internal(catalog.OpDeleteCar, err)
	}

	return nil
}

func (s *Service) getCar(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID) (*catalog.Car, error) {
	query, args, err := s.store.Builder().
		Select(carColumns...).
		From("cars").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpGetCar, err)
	}

	var c catalog.Car
	if err := sqlx.GetContext(ctx, db, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrCarNotFound
		}
		return nil, ierrors.Internal(catalog.OpGetCar, err)
	}

	return &c, nil
}

// checkBrand returns ErrCarBrandInvalid unless brandID names a stored brand.
func (s *Service) checkBrand(ctx context.Context, tx *sqlx.Tx, op string, brandID uuid.UUID) error {
	query, args, err := s.store.Builder().
		Select("COUNT(*)").
		From("brands").
		Where(sq.Eq{"id": brandID}).
		ToSql()
	if err != nil {
		return ierrors.Internal(op, err)
	}

	var n int
	if err := tx.GetContext(ctx, &n, query, args...); err != nil {
		return ierrors.Internal(op, err)
	}
	if n == 0 {
		return catalog.ErrCarBrandInvalid
	}
	return nil
}

func writeError(op string, err error) error {
	if sqlstore.IsForeignKeyViolation(err) {
		return catalog.ErrCarBrandInvalid
	}
	return ierrors.Internal(op, err)
}
