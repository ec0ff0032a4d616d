package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"

	"voyage/internal/pkg/bootstrap"
	"voyage/internal/pkg/logger"
)

const serviceName = "taxi-service"

// faultyTaxiID triggers an injected failure so reverse compensation of the
// hotel and flight legs can be demonstrated.
const faultyTaxiID = 666

var tracer = otel.Tracer(serviceName)

type taxiBooking struct {
	ID                int64  `json:"id"`
	CustomerID        int64  `json:"customerId"`
	TaxiID            int64  `json:"taxiId"`
	BookingDate       string `json:"bookingDate"`
	DepartureDate     string `json:"departureDate"`
	DepartureLocation string `json:"departureLocation"`
	Destination       string `json:"destination"`
	PassengerCount    int    `json:"passengerCount"`
}

type bookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]taxiBooking
}

func newBookingStore() *bookingStore {
	return &bookingStore{nextID: 1, bookings: make(map[int64]taxiBooking)}
}

func (s *bookingStore) create(b taxiBooking) taxiBooking {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.nextID
	s.nextID++
	s.bookings[b.ID] = b
	return b
}

func (s *bookingStore) delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[id]; !ok {
		return false
	}
	delete(s.bookings, id)
	return true
}

func (s *bookingStore) list() []taxiBooking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]taxiBooking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	return out
}

func main() {
	store := newBookingStore()
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8083,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			appCtx.Mux.HandleFunc("POST /bookings", createHandler(store))
			appCtx.Mux.HandleFunc("GET /bookings", listHandler(store))
			appCtx.Mux.HandleFunc("DELETE /bookings/{id}", deleteHandler(store))
		},
	})
}

func createHandler(store *bookingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propagator := otel.GetTextMapPropagator()
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = logger.WithTrace(ctx)
		ctx, span := tracer.Start(ctx, "taxi-service.CreateBooking")
		defer span.End()

		var b taxiBooking
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if b.PassengerCount <= 0 {
			b.PassengerCount = 1
		}

		span.SetAttributes(
			attribute.Int64("taxi.id", b.TaxiID),
			attribute.Int64("customer.id", b.CustomerID),
			attribute.Int("taxi.passenger_count", b.PassengerCount),
		)

		if b.TaxiID == faultyTaxiID {
			time.Sleep(200 * time.Millisecond)
			err := fmt.Errorf("no taxi %d available", b.TaxiID)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		b = store.create(b)
		logger.Ctx(ctx).Info().Int64("booking_id", b.ID).Int64("taxi_id", b.TaxiID).Msg("taxi booking created")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(b)
	}
}

func listHandler(store *bookingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(store.list())
	}
}

func deleteHandler(store *bookingStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propagator := otel.GetTextMapPropagator()
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx = logger.WithTrace(ctx)
		ctx, span := tracer.Start(ctx, "taxi-service.CancelBooking")
		defer span.End()

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		span.SetAttributes(attribute.Int64("booking.id", id))

		if !store.delete(id) {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}
		logger.Ctx(ctx).Info().Int64("booking_id", id).Msg("taxi booking cancelled")
		w.WriteHeader(http.StatusNoContent)
	}
}
