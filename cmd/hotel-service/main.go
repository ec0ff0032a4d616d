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

const serviceName = "hotel-service"

// faultyHotelID triggers an injected failure, for exercising the travel
// agent's compensation path end to end.
const faultyHotelID = 666

var tracer = otel.Tracer(serviceName)

type hotelBooking struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	HotelID    int64  `json:"hotelId"`
	Date       string `json:"date"`
}

type bookingStore struct {
	mu       sync.Mutex
	nextID   int64
	bookings map[int64]hotelBooking
}

func newBookingStore() *bookingStore {
	return &bookingStore{nextID: 1, bookings: make(map[int64]hotelBooking)}
}

func (s *bookingStore) create(b hotelBooking) hotelBooking {
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

func (s *bookingStore) list() []hotelBooking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]hotelBooking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, b)
	}
	return out
}

func main() {
	store := newBookingStore()
	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        8082,
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
		ctx, span := tracer.Start(ctx, "hotel-service.CreateBooking")
		defer span.End()

		var b hotelBooking
		if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int64("hotel.id", b.HotelID),
			attribute.Int64("customer.id", b.CustomerID),
		)

		if b.HotelID == faultyHotelID {
			time.Sleep(200 * time.Millisecond)
			err := fmt.Errorf("hotel %d has no vacancy", b.HotelID)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		b = store.create(b)
		logger.Ctx(ctx).Info().Int64("booking_id", b.ID).Int64("hotel_id", b.HotelID).Msg("hotel booking created")

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
		ctx, span := tracer.Start(ctx, "hotel-service.CancelBooking")
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
		logger.Ctx(ctx).Info().Int64("booking_id", id).Msg("hotel booking cancelled")
		w.WriteHeader(http.StatusNoContent)
	}
}
