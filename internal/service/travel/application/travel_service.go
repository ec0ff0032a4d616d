package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/application/saga"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/port"
)

var (
	tripOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voyage_trip_bookings_total",
		Help: "Travel package bookings by final status.",
	}, []string{"status"})

	tripCompensations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voyage_trip_compensations_total",
		Help: "Saga compensation passes executed.",
	})
)

// TravelService orchestrates the hotel → flight → taxi booking saga. It owns
// no saga persistence: each call's state lives on the stack, and a process
// crash mid-sequence leaves remote bookings for manual reconciliation.
type TravelService struct {
	ledger     *BookingService
	hotel      port.HotelBookingService
	taxi       port.TaxiBookingService
	prereserve port.SeatPrereserveService // optional
	notifier   port.NotificationProducer  // optional
	policy     domain.PolicyEngine        // optional
	policyExpr string

	highDemand map[int64]bool
	timeout    time.Duration
	tracer     trace.Tracer
}

// TravelServiceConfig wires the optional collaborators.
type TravelServiceConfig struct {
	Prereserve port.SeatPrereserveService
	Notifier   port.NotificationProducer
	Policy     domain.PolicyEngine
	PolicyExpr string

	// HighDemandCommodities routes these flight commodities through the
	// pre-reservation guard.
	HighDemandCommodities []int64

	// Timeout bounds the whole forward sequence; remote calls inherit it from
	// the context. Zero means no bound beyond the caller's own deadline.
	Timeout time.Duration
}

func NewTravelService(ledger *BookingService, hotel port.HotelBookingService, taxi port.TaxiBookingService, cfg TravelServiceConfig, tracer trace.Tracer) *TravelService {
	hot := make(map[int64]bool, len(cfg.HighDemandCommodities))
	for _, id := range cfg.HighDemandCommodities {
		hot[id] = true
	}
	return &TravelService{
		ledger:     ledger,
		hotel:      hotel,
		taxi:       taxi,
		prereserve: cfg.Prereserve,
		notifier:   cfg.Notifier,
		policy:     cfg.Policy,
		policyExpr: cfg.PolicyExpr,
		highDemand: hot,
		timeout:    cfg.Timeout,
		tracer:     tracer,
	}
}

// BookTravelPackage books hotel, flight and taxi in fixed order and answers
// with a structured result in every outcome. On any step failure the already
// booked legs are cancelled in reverse order of acquisition, best effort, and
// the response keeps their ids with Compensated set. A non-nil error is only
// returned for requests rejected before any side effect ran (policy
// violations); saga failures answer FAILED with a nil error.
func (s *TravelService) BookTravelPackage(ctx context.Context, req *TravelBookingRequest) (*TravelBookingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "travel.BookTravelPackage")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("customer.id", req.CustomerID),
		attribute.Int64("hotel.id", req.HotelID),
		attribute.Int64("commodity.id", req.FlightCommodityID),
		attribute.Int64("taxi.id", req.TaxiID),
	)

	applyTripDefaults(req)

	if err := s.checkPolicy(req); err != nil {
		span.SetStatus(codes.Error, err.Error())
		tripOutcomes.WithLabelValues(TripStatusFailed).Inc()
		return &TravelBookingResponse{
			Status:  TripStatusFailed,
			Message: err.Error(),
		}, err
	}

	// The forward sequence must survive the caller going away: a client that
	// abandons the HTTP request cannot abort a half-booked trip. Only the
	// service's own timeout bounds the remote calls.
	processingCtx := context.WithoutCancel(ctx)
	if s.timeout > 0 {
		var cancel context.CancelFunc
		processingCtx, cancel = context.WithTimeout(processingCtx, s.timeout)
		defer cancel()
	}

	tripCtx := &saga.TripContext{
		Ctx: processingCtx,
		Trip: &saga.Trip{
			CustomerID:        req.CustomerID,
			HotelID:           req.HotelID,
			FlightCommodityID: req.FlightCommodityID,
			TaxiID:            req.TaxiID,
			Date:              req.Date,
			DepartureLocation: req.DepartureLocation,
			Destination:       req.Destination,
			PassengerCount:    req.PassengerCount,
			HighDemand:        s.highDemand[req.FlightCommodityID],
		},
		Tracer:     s.tracer,
		Hotel:      s.hotel,
		Taxi:       s.taxi,
		Ledger:     s.ledger,
		Prereserve: s.prereserve,
		Notifier:   s.notifier,
	}

	logger.Ctx(ctx).Info().
		Int64("customer_id", req.CustomerID).
		Int64("hotel_id", req.HotelID).
		Int64("flight_commodity_id", req.FlightCommodityID).
		Int64("taxi_id", req.TaxiID).
		Msg("starting travel package saga")

	if err := s.buildChain().Handle(tripCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "travel saga failed")

		// The triggering error may have been a step timeout, so the
		// compensation pass runs on a fresh context that keeps only the trace
		// linkage of the dead one.
		compCtx := trace.ContextWithRemoteSpanContext(context.Background(), trace.SpanContextFromContext(ctx))
		compCtx, cancel := context.WithTimeout(compCtx, 30*time.Second)
		defer cancel()

		tripCtx.TriggerCompensation(compCtx)
		tripCompensations.Inc()
		s.notifyFailure(compCtx, tripCtx.Trip, err)

		tripOutcomes.WithLabelValues(TripStatusFailed).Inc()
		return &TravelBookingResponse{
			Status:          TripStatusFailed,
			HotelBookingID:  tripCtx.Trip.HotelBookingID,
			FlightBookingID: tripCtx.Trip.FlightBookingID,
			TaxiBookingID:   tripCtx.Trip.TaxiBookingID,
			Message:         "travel booking failed: " + err.Error() + "; booked legs have been cancelled",
			Compensated:     tripCtx.Compensated(),
		}, nil
	}

	logger.Ctx(ctx).Info().
		Int64("customer_id", req.CustomerID).
		Int64("hotel_booking_id", *tripCtx.Trip.HotelBookingID).
		Int64("flight_booking_id", *tripCtx.Trip.FlightBookingID).
		Int64("taxi_booking_id", *tripCtx.Trip.TaxiBookingID).
		Msg("travel package booked")
	span.AddEvent("All three legs booked.")
	tripOutcomes.WithLabelValues(TripStatusSuccess).Inc()

	return &TravelBookingResponse{
		Status:          TripStatusSuccess,
		HotelBookingID:  tripCtx.Trip.HotelBookingID,
		FlightBookingID: tripCtx.Trip.FlightBookingID,
		TaxiBookingID:   tripCtx.Trip.TaxiBookingID,
		Message:         "travel booking completed",
	}, nil
}

// buildChain assembles the fixed forward sequence.
func (s *TravelService) buildChain() saga.Handler {
	chain := new(saga.PrereserveHandler)
	chain.
		SetNext(new(saga.HotelHandler)).
		SetNext(new(saga.FlightHandler)).
		SetNext(new(saga.TaxiHandler)).
		SetNext(new(saga.NotifyHandler))
	return chain
}

func (s *TravelService) checkPolicy(req *TravelBookingRequest) error {
	if s.policy == nil || s.policyExpr == "" {
		return nil
	}
	fact := map[string]interface{}{
		"customerId":        req.CustomerID,
		"passengerCount":    req.PassengerCount,
		"departureLocation": req.DepartureLocation,
		"destination":       req.Destination,
		"date":              req.Date,
	}
	ok, err := s.policy.Evaluate(s.policyExpr, fact)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrPolicyViolation
	}
	return nil
}

func (s *TravelService) notifyFailure(ctx context.Context, trip *saga.Trip, cause error) {
	if s.notifier == nil {
		return
	}
	event := &domain.TripFailed{
		EventID:    uuid.New().String(),
		TraceID:    trace.SpanContextFromContext(ctx).TraceID().String(),
		CustomerID: trip.CustomerID,
		Reason:     cause.Error(),
	}
	if err := s.notifier.SendTripFailed(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("failed to publish trip-failed notification")
	}
}

func applyTripDefaults(req *TravelBookingRequest) {
	if req.DepartureLocation == "" {
		req.DepartureLocation = "Airport"
	}
	if req.Destination == "" {
		req.Destination = "Hotel"
	}
	if req.PassengerCount <= 0 {
		req.PassengerCount = 1
	}
}
