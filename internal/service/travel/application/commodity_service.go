package application

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
)

// CommodityService provides commodity CRUD. It never adjusts quantity on
// behalf of bookings; that stays with the ledger's dedicated paths.
type CommodityService struct {
	uow    domain.UnitOfWork
	tracer trace.Tracer
}

func NewCommodityService(uow domain.UnitOfWork, tracer trace.Tracer) *CommodityService {
	return &CommodityService{uow: uow, tracer: tracer}
}

func (s *CommodityService) Create(ctx context.Context, req *CreateCommodityRequest) (*domain.Commodity, error) {
	ctx, span := s.tracer.Start(ctx, "commodity.Create")
	defer span.End()

	commodity, err := domain.NewCommodity(req.Name, req.Description, req.Price, req.Quantity)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Commodities.Save(ctx, commodity)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("commodity_id", commodity.ID).Str("name", commodity.Name).Msg("commodity created")
	return commodity, nil
}

func (s *CommodityService) Update(ctx context.Context, id int64, req *CreateCommodityRequest) (*domain.Commodity, error) {
	ctx, span := s.tracer.Start(ctx, "commodity.Update")
	defer span.End()

	updated, err := domain.NewCommodity(req.Name, req.Description, req.Price, req.Quantity)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Commodities.FindByID(ctx, id); err != nil {
			return err
		}
		updated.ID = id
		return repos.Commodities.Update(ctx, updated)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}

// Delete removes a commodity and all bookings referencing it in one atomic
// unit. The deleted bookings return no quantity: the commodity is gone.
func (s *CommodityService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "commodity.Delete")
	defer span.End()

	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Commodities.FindByID(ctx, id); err != nil {
			return err
		}
		if err := repos.Bookings.DeleteByCommodity(ctx, id); err != nil {
			return err
		}
		return repos.Commodities.Delete(ctx, id)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Int64("commodity_id", id).Msg("commodity deleted with dependent bookings")
	return nil
}

func (s *CommodityService) FindByID(ctx context.Context, id int64) (*domain.Commodity, error) {
	var commodity *domain.Commodity
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		commodity, err = repos.Commodities.FindByID(ctx, id)
		return err
	})
	return commodity, err
}

func (s *CommodityService) FindAll(ctx context.Context) ([]*domain.Commodity, error) {
	var commodities []*domain.Commodity
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		commodities, err = repos.Commodities.FindAll(ctx)
		return err
	})
	return commodities, err
}

// FindAvailable lists commodities with at least one unit left.
func (s *CommodityService) FindAvailable(ctx context.Context) ([]*domain.Commodity, error) {
	var commodities []*domain.Commodity
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		commodities, err = repos.Commodities.FindAvailable(ctx)
		return err
	})
	return commodities, err
}
