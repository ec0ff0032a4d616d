package saga

import (
	"go.opentelemetry.io/otel/attribute"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
)

// NotifyHandler closes the chain by publishing the trip-booked event. Failing
// to notify is a non-critical-path failure: logged and traced, never undoing
// three bookings that already succeeded.
type NotifyHandler struct {
	NextHandler
}

func (h *NotifyHandler) Handle(tripCtx *TripContext) error {
	ctx, span := tripCtx.Tracer.Start(tripCtx.Ctx, "saga.Notify")
	defer span.End()

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination.topic", "trip-notifications"),
	)

	if tripCtx.Notifier == nil {
		return h.executeNext(tripCtx)
	}

	trip := tripCtx.Trip
	event := &domain.TripBooked{
		EventID:         uuid.New().String(),
		TraceID:         trace.SpanContextFromContext(ctx).TraceID().String(),
		CustomerID:      trip.CustomerID,
		HotelBookingID:  *trip.HotelBookingID,
		FlightBookingID: *trip.FlightBookingID,
		TaxiBookingID:   *trip.TaxiBookingID,
		Date:            trip.Date,
	}
	if err := tripCtx.Notifier.SendTripBooked(ctx, event); err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Warn().Err(err).
			Int64("customer_id", trip.CustomerID).
			Msg("failed to publish trip-booked notification")
	}

	return h.executeNext(tripCtx)
}
