package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/port"
)

// HotelHandler books the hotel leg, the first forward step.
type HotelHandler struct {
	NextHandler
}

func (h *HotelHandler) Handle(tripCtx *TripContext) error {
	ctx, span := tripCtx.Tracer.Start(tripCtx.Ctx, "saga.BookHotel")
	defer span.End()

	trip := tripCtx.Trip
	span.SetAttributes(
		attribute.Int64("hotel.id", trip.HotelID),
		attribute.Int64("customer.id", trip.CustomerID),
	)

	bookingID, err := tripCtx.Hotel.Create(ctx, port.HotelBookingRequest{
		CustomerID: trip.CustomerID,
		HotelID:    trip.HotelID,
		Date:       trip.Date,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hotel booking failed")
		return err
	}
	trip.HotelBookingID = &bookingID
	span.AddEvent("Hotel leg booked.")

	tripCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := tripCtx.Tracer.Start(compCtx, "saga.compensation.CancelHotel")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int64("hotel.booking.id", bookingID))

		if err := tripCtx.Hotel.Cancel(compCtx, bookingID); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).
				Int64("hotel_booking_id", bookingID).
				Msg("hotel cancellation failed, booking needs manual reconciliation")
		}
	})

	return h.executeNext(tripCtx)
}
