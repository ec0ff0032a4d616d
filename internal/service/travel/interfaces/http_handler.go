package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/sync/errgroup"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/application"
	"voyage/internal/service/travel/domain"
)

// ReadinessCheck probes one downstream dependency for the /readyz endpoint.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// TravelHandler exposes the travel agent REST API.
type TravelHandler struct {
	travel      *application.TravelService
	bookings    *application.BookingService
	customers   *application.CustomerService
	commodities *application.CommodityService
	guests      *application.GuestService
	readiness   []ReadinessCheck
}

func NewTravelHandler(
	travel *application.TravelService,
	bookings *application.BookingService,
	customers *application.CustomerService,
	commodities *application.CommodityService,
	guests *application.GuestService,
	readiness []ReadinessCheck,
) *TravelHandler {
	return &TravelHandler{
		travel:      travel,
		bookings:    bookings,
		customers:   customers,
		commodities: commodities,
		guests:      guests,
		readiness:   readiness,
	}
}

// RegisterRoutes registers all routes on the ServeMux.
func (h *TravelHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("/readyz", h.handleReadiness)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("POST /travel-agent/bookings", h.handleBookTravelPackage)
	mux.HandleFunc("POST /guest-bookings", h.handleGuestBooking)

	mux.HandleFunc("POST /bookings", h.handleCreateBooking)
	mux.HandleFunc("GET /bookings", h.handleListBookings)
	mux.HandleFunc("GET /bookings/{id}", h.handleGetBooking)
	mux.HandleFunc("DELETE /bookings/{id}", h.handleCancelBooking)

	mux.HandleFunc("POST /customers", h.handleCreateCustomer)
	mux.HandleFunc("GET /customers", h.handleListCustomers)
	mux.HandleFunc("GET /customers/{id}", h.handleGetCustomer)
	mux.HandleFunc("PUT /customers/{id}", h.handleUpdateCustomer)
	mux.HandleFunc("DELETE /customers/{id}", h.handleDeleteCustomer)

	mux.HandleFunc("POST /commodities", h.handleCreateCommodity)
	mux.HandleFunc("GET /commodities", h.handleListCommodities)
	mux.HandleFunc("GET /commodities/available", h.handleListAvailableCommodities)
	mux.HandleFunc("GET /commodities/{id}", h.handleGetCommodity)
	mux.HandleFunc("PUT /commodities/{id}", h.handleUpdateCommodity)
	mux.HandleFunc("DELETE /commodities/{id}", h.handleDeleteCommodity)
}

// requestContext extracts the upstream trace context and attaches the
// trace-scoped logger.
func requestContext(r *http.Request) context.Context {
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return logger.WithTrace(ctx)
}

func (h *TravelHandler) handleBookTravelPackage(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	var req application.TravelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.travel.BookTravelPackage(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TravelHandler) handleGuestBooking(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	var req application.GuestBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.guests.Create(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TravelHandler) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	var req application.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	booking, err := h.bookings.Create(ctx, req.CustomerID, req.CommodityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (h *TravelHandler) handleListBookings(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	if v := r.URL.Query().Get("customerId"); v != "" {
		customerID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid customerId", http.StatusBadRequest)
			return
		}
		bookings, err := h.bookings.FindByCustomer(ctx, customerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, bookings)
		return
	}

	bookings, err := h.bookings.FindAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

func (h *TravelHandler) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	booking, err := h.bookings.FindByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *TravelHandler) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.bookings.Cancel(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TravelHandler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	var req application.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	customer, err := h.customers.Create(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *TravelHandler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	customers, err := h.customers.FindAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *TravelHandler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	customer, err := h.customers.FindByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *TravelHandler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req application.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	customer, err := h.customers.Update(ctx, id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *TravelHandler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.customers.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TravelHandler) handleCreateCommodity(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	var req application.CreateCommodityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	commodity, err := h.commodities.Create(ctx, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, commodity)
}

func (h *TravelHandler) handleListCommodities(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	commodities, err := h.commodities.FindAll(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commodities)
}

func (h *TravelHandler) handleListAvailableCommodities(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	commodities, err := h.commodities.FindAvailable(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commodities)
}

func (h *TravelHandler) handleGetCommodity(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	commodity, err := h.commodities.FindByID(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commodity)
}

func (h *TravelHandler) handleUpdateCommodity(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req application.CreateCommodityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	commodity, err := h.commodities.Update(ctx, id, &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commodity)
}

func (h *TravelHandler) handleDeleteCommodity(w http.ResponseWriter, r *http.Request) {
	ctx := requestContext(r)

	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.commodities.Delete(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReadiness probes all registered downstream checks in parallel. The
// service is ready only when every check passes within the deadline.
func (h *TravelHandler) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	for _, check := range h.readiness {
		check := check
		g.Go(func() error {
			if err := check.Check(ctx); err != nil {
				return errors.Wrapf(err, "readiness check %s failed", check.Name)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Ctx(r.Context()).Warn().Err(err).Msg("readiness probe failed")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var statusCode int
	switch {
	case errors.Is(err, domain.ErrCustomerNotFound),
		errors.Is(err, domain.ErrCommodityNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		statusCode = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateBooking),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrOutOfStock),
		errors.Is(err, domain.ErrSeatSoldOut),
		errors.Is(err, domain.ErrSeatAlreadyReserved):
		statusCode = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrPolicyViolation):
		statusCode = http.StatusBadRequest
	case errors.Is(err, domain.ErrGatewayUnavailable):
		statusCode = http.StatusBadGateway
	default:
		statusCode = http.StatusInternalServerError
	}
	http.Error(w, err.Error(), statusCode)
}
