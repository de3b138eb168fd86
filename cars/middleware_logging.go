package cars

import (
	"context"
	"time"

	"github.com/carcatalog/catalog"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func NewLoggingService(logger *zap.Logger, underlying catalog.CarService) *loggingService {
	return &loggingService{
		logger:     logger,
		underlying: underlying,
	}
}

type loggingService struct {
	logger     *zap.Logger
	underlying catalog.CarService
}

var _ catalog.CarService = (*loggingService)(nil)

func (l loggingService) ListCars(ctx context.Context, filter catalog.CarFilter) (cs []*catalog.Car, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find cars", zap.Error(err), dur)
			return
		}
		l.logger.Debug("cars find", zap.Int("count", len(cs)), dur)
	}(time.Now())
	return l.underlying.ListCars(ctx, filter)
}

func (l loggingService) GetCar(ctx context.Context, id uuid.UUID) (c *catalog.Car, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to find car by ID", zap.Stringer("id", id), zap.Error(err), dur)
			return
		}
		l.logger.Debug("car find by ID", dur)
	}(time.Now())
	return l.underlying.GetCar(ctx, id)
}

func (l loggingService) CreateCar(ctx context.Context, create catalog.CarCreate) (c *catalog.Car, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to create car", zap.Stringer("brand_id", create.BrandID), zap.Error(err), dur)
			return
		}
		l.logger.Debug("car create", zap.Stringer("id", c.ID), dur)
	}(time.Now())
	return l.underlying.CreateCar(ctx, create)
}

func (l loggingService) UpdateCar(ctx context.Context, id uuid.UUID, update catalog.CarUpdate) (c *catalog.Car, err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to update car", zap.Stringer("id", id), zap.Error(err), dur)
			return
		}
		l.logger.Debug("car update", dur)
	}(time.Now())
	return l.underlying.UpdateCar(ctx, id, update)
}

func (l loggingService) DeleteCar(ctx context.Context, id uuid.UUID) (err error) {
	defer func(start time.Time) {
		dur := zap.Duration("took", time.Since(start))
		if err != nil {
			l.logger.Debug("failed to delete car", zap.Stringer("id", id), zap.Error(err), dur)
			return
		}
		l.logger.Debug("car delete", dur)
	}(time.Now())
	return l.underlying.DeleteCar(ctx, id)
}
