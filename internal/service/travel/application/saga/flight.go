package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voyage/internal/pkg/logger"
)

// FlightHandler books the flight leg against the local ledger. Ledger
// rejections (not found, duplicate, out of stock) interrupt the saga exactly
// like a remote gateway failure would.
type FlightHandler struct {
	NextHandler
}

func (h *FlightHandler) Handle(tripCtx *TripContext) error {
	ctx, span := tripCtx.Tracer.Start(tripCtx.Ctx, "saga.BookFlight")
	defer span.End()

	trip := tripCtx.Trip
	span.SetAttributes(
		attribute.Int64("commodity.id", trip.FlightCommodityID),
		attribute.Int64("customer.id", trip.CustomerID),
	)

	booking, err := tripCtx.Ledger.Create(ctx, trip.CustomerID, trip.FlightCommodityID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flight booking failed")
		return err
	}
	bookingID := booking.ID
	trip.FlightBookingID = &bookingID
	span.AddEvent("Flight leg booked in local ledger.")

	tripCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := tripCtx.Tracer.Start(compCtx, "saga.compensation.CancelFlight")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int64("flight.booking.id", bookingID))

		if err := tripCtx.Ledger.Cancel(compCtx, bookingID); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).
				Int64("flight_booking_id", bookingID).
				Msg("flight cancellation failed, ledger needs manual reconciliation")
		}
	})

	return h.executeNext(tripCtx)
}
