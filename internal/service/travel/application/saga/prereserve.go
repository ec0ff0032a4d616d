package saga

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/port"
)

// PrereserveHandler is the optional fast-fail guard for high-demand flight
// commodities. It skips itself when the trip is not flagged or no
// pre-reservation service is wired.
type PrereserveHandler struct {
	NextHandler
}

func (h *PrereserveHandler) Handle(tripCtx *TripContext) error {
	trip := tripCtx.Trip
	if !trip.HighDemand || tripCtx.Prereserve == nil {
		return h.executeNext(tripCtx)
	}

	ctx, span := tripCtx.Tracer.Start(tripCtx.Ctx, "saga.PrereserveSeat")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("commodity.id", trip.FlightCommodityID),
		attribute.Int64("customer.id", trip.CustomerID),
	)

	result, err := tripCtx.Prereserve.Attempt(ctx, trip.FlightCommodityID, trip.CustomerID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "seat pre-reservation failed")
		return err
	}

	switch result {
	case port.PrereserveSuccess:
		span.AddEvent("Seat pre-reserved.")
		tripCtx.AddCompensation(func(compCtx context.Context) {
			compCtx, compSpan := tripCtx.Tracer.Start(compCtx, "saga.compensation.ReleaseSeat")
			defer compSpan.End()
			if err := tripCtx.Prereserve.Release(compCtx, trip.FlightCommodityID, trip.CustomerID); err != nil {
				compSpan.RecordError(err)
				logger.Ctx(compCtx).Error().Err(err).
					Int64("commodity_id", trip.FlightCommodityID).
					Msg("seat release failed, counter needs manual reconciliation")
			}
		})
		return h.executeNext(tripCtx)

	case port.PrereserveSoldOut:
		span.SetStatus(codes.Error, domain.ErrSeatSoldOut.Error())
		return domain.ErrSeatSoldOut

	case port.PrereserveDuplicate:
		span.SetStatus(codes.Error, domain.ErrSeatAlreadyReserved.Error())
		return domain.ErrSeatAlreadyReserved

	default:
		err = fmt.Errorf("unknown pre-reservation result: %v", result)
		span.RecordError(err)
		return err
	}
}
