package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/port"
)

// TaxiHandler books the taxi leg, the last side-effecting forward step.
type TaxiHandler struct {
	NextHandler
}

func (h *TaxiHandler) Handle(tripCtx *TripContext) error {
	ctx, span := tripCtx.Tracer.Start(tripCtx.Ctx, "saga.BookTaxi")
	defer span.End()

	trip := tripCtx.Trip
	span.SetAttributes(
		attribute.Int64("taxi.id", trip.TaxiID),
		attribute.Int64("customer.id", trip.CustomerID),
	)

	bookingID, err := tripCtx.Taxi.Create(ctx, port.TaxiBookingRequest{
		CustomerID:        trip.CustomerID,
		TaxiID:            trip.TaxiID,
		BookingDate:       trip.Date,
		DepartureDate:     trip.Date,
		DepartureLocation: trip.DepartureLocation,
		Destination:       trip.Destination,
		PassengerCount:    trip.PassengerCount,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "taxi booking failed")
		return err
	}
	trip.TaxiBookingID = &bookingID
	span.AddEvent("Taxi leg booked.")

	tripCtx.AddCompensation(func(compCtx context.Context) {
		compCtx, compSpan := tripCtx.Tracer.Start(compCtx, "saga.compensation.CancelTaxi")
		defer compSpan.End()
		compSpan.SetAttributes(attribute.Int64("taxi.booking.id", bookingID))

		if err := tripCtx.Taxi.Cancel(compCtx, bookingID); err != nil {
			compSpan.RecordError(err)
			logger.Ctx(compCtx).Error().Err(err).
				Int64("taxi_booking_id", bookingID).
				Msg("taxi cancellation failed, booking needs manual reconciliation")
		}
	})

	return h.executeNext(tripCtx)
}
