package brands

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

var _ catalog.BrandService = (*Service)(nil)

var brandColumns = []string{"id", "name", "created_at", "updated_at"}

type Service struct {
	store       *sqlstore.SqlStore
	log         *zap.Logger
	idGenerator catalog.IDGenerator
	clock       clock.Clock
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator overrides how brand IDs are generated.
func WithIDGenerator(g catalog.IDGenerator) Option {
	return func(s *Service) {
		s.idGenerator = g
	}
}

// WithClock overrides the clock used for timestamps.
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

// ListBrands returns brands ordered by name, case-insensitively.
func (s *Service) ListBrands(ctx context.Context, filter catalog.BrandFilter) ([]*catalog.Brand, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "brands.ListBrands")
	defer span.Finish()

	if err := filter.Page.OK(); err != nil {
		return nil, err
	}

	q := s.store.Builder().
		Select(brandColumns...).
		From("brands").
		OrderBy("name_key", "id")
	if filter.Name != nil {
		q = q.Where(sq.Eq{"name_key": catalog.NormalizeBrandName(*filter.Name)})
	}
	q = sqlstore.Paginate(q, filter.Offset, filter.Limit)

	query, args, err := q.ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpListBrands, err)
	}

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	bs := []*catalog.Brand{}
	if err := s.store.DB.SelectContext(ctx, &bs, query, args...); err != nil {
		return nil, tracing.LogError(span, ierrors.Internal(catalog.OpListBrands, err))
	}

	return bs, nil
}

// GetBrand gets a single brand by ID.
func (s *Service) GetBrand(ctx context.Context, id uuid.UUID) (*catalog.Brand, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "brands.GetBrand")
	defer span.Finish()

	s.store.Mu.RLock()
	defer s.store.Mu.RUnlock()

	b, err := s.getBrand(ctx, s.store.DB, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// CreateBrand inserts a brand, refusing names already taken by another brand.
func (s *Service) CreateBrand(ctx context.Context, create catalog.BrandCreate) (*catalog.Brand, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "brands.CreateBrand")
	defer span.Finish()

	if err := create.OK(); err != nil {
		return nil, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	tx, err := s.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, ierrors.Internal(catalog.OpCreateBrand, err)
	}
	defer tx.Rollback()

	if err := s.checkNameFree(ctx, tx, catalog.OpCreateBrand, create.Name, uuid.Nil); err != nil {
		return nil, err
	}

	id := s.idGenerator.ID()
	now := s.now()
	query, args, err := s.store.Builder().
		Insert("brands").
		Columns("id", "name", "name_key", "created_at", "updated_at").
		Values(id, create.Name, catalog.NormalizeBrandName(create.Name), now, now).
		ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpCreateBrand, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, tracing.LogError(span, writeError(catalog.OpCreateBrand, create.Name, err))
	}

	b, err := s.getBrand(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, ierrors.Internal(catalog.OpCreateBrand, err)
	}

	return b, nil
}

// UpdateBrand renames a brand. Renaming a brand to its own name in another
// casing is allowed.
func (s *Service) UpdateBrand(ctx context.Context, id uuid.UUID, update catalog.BrandUpdate) (*catalog.Brand, error) {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "brands.UpdateBrand")
	defer span.Finish()

	if err := update.OK(); err != nil {
		return nil, err
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	tx, err := s.store.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, ierrors.Internal(catalog.OpUpdateBrand, err)
	}
	defer tx.Rollback()

	if _, err := s.getBrand(ctx, tx, id); err != nil {
		return nil, err
	}

	if err := s.checkNameFree(ctx, tx, catalog.OpUpdateBrand, update.Name, id); err != nil {
		return nil, err
	}

	query, args, err := s.store.Builder().
		Update("brands").
		SetMap(sq.Eq{
			"name":       update.Name,
			"name_key":   catalog.NormalizeBrandName(update.Name),
			"updated_at": s.now(),
		}).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpUpdateBrand, err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, tracing.LogError(span, writeError(catalog.OpUpdateBrand, update.Name, err))
	}

	b, err := s.getBrand(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, ierrors.Internal(catalog.OpUpdateBrand, err)
	}

	return b, nil
}

// DeleteBrand deletes a brand. Its cars are removed by the foreign key cascade.
func (s *Service) DeleteBrand(ctx context.Context, id uuid.UUID) error {
	span, ctx := tracing.StartSpanFromContextWithOperationName(ctx, "brands.DeleteBrand")
	defer span.Finish()

	query, args, err := s.store.Builder().
		Delete("brands").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return ierrors.Internal(catalog.OpDeleteBrand, err)
	}

	s.store.Mu.Lock()
	defer s.store.Mu.Unlock()

	res, err := s.store.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return tracing.LogError(span, ierrors.Internal(catalog.OpDeleteBrand, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return ierrors.Internal(catalog.OpDeleteBrand, err)
	}
	if n == 0 {
		return catalog.ErrBrandNotFound
	}

	return nil
}

func (s *Service) getBrand(ctx context.Context, db sqlx.QueryerContext, id uuid.UUID) (*catalog.Brand, error) {
	query, args, err := s.store.Builder().
		Select(brandColumns...).
		From("brands").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, ierrors.Internal(catalog.OpGetBrand, err)
	}

	var b catalog.Brand
	if err := sqlx.GetContext(ctx, db, &b, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalog.ErrBrandNotFound
		}
		return nil, ierrors.Internal(catalog.OpGetBrand, err)
	}

	return &b, nil
}

// checkNameFree returns a conflict when a brand other than self already uses
// name, compared case-insensitively.
func (s *Service) checkNameFree(ctx context.Context, tx *sqlx.Tx, op, name string, self uuid.UUID) error {
	q := s.store.Builder().
		Select("id").
		From("brands").
		Where(sq.Eq{"name_key": catalog.NormalizeBrandName(name)})
	if self != uuid.Nil {
		q = q.Where(sq.NotEq{"id": self})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return ierrors.Internal(op, err)
	}

	var ids []uuid.UUID
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return ierrors.Internal(op, err)
	}
	if len(ids) > 0 {
		return catalog.ErrBrandExists(name)
	}
	return nil
}

func writeError(op, name string, err error) error {
	if sqlstore.IsUniqueViolation(err) {
		return catalog.ErrBrandExists(name)
	}
	return ierrors.Internal(op, err)
}
