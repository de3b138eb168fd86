package brands

import (
	"context"
	"time"

	"github.com/carcatalog/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func NewLoggingService(logger *zap.Logger, underlying catalog.BrandService) *loggingService {
	return &loggingService{
		logger:     logger,
		underlying: underlying,
	}
}

type loggingService struct {
	logger     *zap.Logger
	underlying catalog.BrandService
}

var _ catalog.BrandService = (*loggingService)(nil)

func (l loggingService) ListBrands(ctx context.Context, filter catalog.BrandFilter) (bs []*catalog.Brand, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find brands", zap.Error(err), dur)
			return
		}
		l.logger.Debug("brands find", zap.Int("count", len(bs)), dur)
	}(time.Now())
	return l.underlying.ListBrands(ctx, filter)
}

func (l loggingService) GetBrand(ctx context.Context, id uuid.UUID) (b *catalog.Brand, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find brand by ID", zap.Stringer("id", id), zap.Error(err), dur)
			return
		}
		l.logger.Debug("brand find by ID", dur)
	}(time.Now())
	return l.underlying.GetBrand(ctx, id)
}

func (l loggingService) CreateBrand(ctx context.Context, create catalog.BrandCreate) (b *catalog.Brand, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to create brand", zap.Error(err), dur)
			return
		}
		l.logger.Debug("brand create", zap.Stringer("id", b.ID), dur)
	}(time.Now())
	return l.underlying.CreateBrand(ctx, create)
}

func (l loggingService) UpdateBrand(ctx context.Context, id uuid.UUID, update catalog.BrandUpdate) (b *catalog.Brand, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to update brand", zap.Stringer("id", id), zap.Error(err), dur)
			return
		}
		l.logger.Debug("brand update", dur)
	}(time.Now())
	return l.underlying.UpdateBrand(ctx, id, update)
}

func (l loggingService) DeleteBrand(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to delete brand", zap.Stringer("id", id), zap.Error(err), dur)
			return
		}
		l.logger.Debug("brand delete", dur)
	}(time.Now())
	return l.underlying.DeleteBrand(ctx, id)
}
