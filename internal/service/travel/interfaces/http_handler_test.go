package interfaces

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"voyage/internal/service/travel/application"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/infrastructure"
	"voyage/internal/service/travel/port"
)

type stubGateway struct {
	nextID int64
}

func (g *stubGateway) Create(context.Context, port.HotelBookingRequest) (int64, error) {
	g.nextID++
	return g.nextID, nil
}

func (g *stubGateway) Cancel(context.Context, int64) error { return nil }

type stubTaxiGateway struct {
	nextID int64
}

func (g *stubTaxiGateway) Create(context.Context, port.TaxiBookingRequest) (int64, error) {
	g.nextID++
	return g.nextID, nil
}

func (g *stubTaxiGateway) Cancel(context.Context, int64) error { return nil }

func newTestMux(readiness []ReadinessCheck) *http.ServeMux {
	store := infrastructure.NewMemoryStore()
	tracer := otel.Tracer("test")

	ledger := application.NewBookingService(store, nil, tracer)
	customers := application.NewCustomerService(store, tracer)
	commodities := application.NewCommodityService(store, tracer)
	guests := application.NewGuestService(store, tracer)
	travel := application.NewTravelService(ledger, &stubGateway{}, &stubTaxiGateway{}, application.TravelServiceConfig{}, tracer)

	handler := NewTravelHandler(travel, ledger, customers, commodities, guests, readiness)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	return mux
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestCustomerEndpoints(t *testing.T) {
	mux := newTestMux(nil)

	rec := doJSON(t, mux, http.MethodPost, "/customers", application.CreateCustomerRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)

	// Same email again maps to 409.
	rec = doJSON(t, mux, http.MethodPost, "/customers", application.CreateCustomerRequest{
		FirstName: "Augusta", LastName: "King", Email: "ada@example.com",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Invalid body fields map to 400.
	rec = doJSON(t, mux, http.MethodPost, "/customers", application.CreateCustomerRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "no-at-sign",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/customers/99999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodGet, "/customers/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/customers/"+itoa(created.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestBookingEndpoints(t *testing.T) {
	mux := newTestMux(nil)

	rec := doJSON(t, mux, http.MethodPost, "/customers", application.CreateCustomerRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var customer domain.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))

	rec = doJSON(t, mux, http.MethodPost, "/commodities", application.CreateCommodityRequest{
		Name: "flight-AMS-LIS", Price: 189.99, Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var commodity domain.Commodity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commodity))

	rec = doJSON(t, mux, http.MethodPost, "/bookings", application.CreateBookingRequest{
		CustomerID: customer.ID, CommodityID: commodity.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var booking domain.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booking))

	// Duplicate pair maps to 409.
	rec = doJSON(t, mux, http.MethodPost, "/bookings", application.CreateBookingRequest{
		CustomerID: customer.ID, CommodityID: commodity.ID,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The stock went to zero with the first booking.
	rec = doJSON(t, mux, http.MethodGet, "/commodities/available", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var available []domain.Commodity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &available))
	assert.Empty(t, available)

	rec = doJSON(t, mux, http.MethodGet, "/bookings?customerId="+itoa(customer.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list []domain.Booking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 1)

	rec = doJSON(t, mux, http.MethodDelete, "/bookings/"+itoa(booking.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, mux, http.MethodDelete, "/bookings/"+itoa(booking.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTravelAgentBookingEndpoint(t *testing.T) {
	mux := newTestMux(nil)

	rec := doJSON(t, mux, http.MethodPost, "/customers", application.CreateCustomerRequest{
		FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var customer domain.Customer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &customer))

	rec = doJSON(t, mux, http.MethodPost, "/commodities", application.CreateCommodityRequest{
		Name: "flight-AMS-LIS", Price: 189.99, Quantity: 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var commodity domain.Commodity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commodity))

	rec = doJSON(t, mux, http.MethodPost, "/travel-agent/bookings", application.TravelBookingRequest{
		CustomerID:        customer.ID,
		HotelID:           1,
		FlightCommodityID: commodity.ID,
		TaxiID:            1,
		Date:              "2026-09-14",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp application.TravelBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, application.TripStatusSuccess, resp.Status)
	require.NotNil(t, resp.FlightBookingID)
}

func TestGuestBookingEndpoint(t *testing.T) {
	mux := newTestMux(nil)

	rec := doJSON(t, mux, http.MethodPost, "/commodities", application.CreateCommodityRequest{
		Name: "flight-AMS-LIS", Price: 189.99, Quantity: 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var commodity domain.Commodity
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &commodity))

	rec = doJSON(t, mux, http.MethodPost, "/guest-bookings", application.GuestBookingRequest{
		Customer: application.CreateCustomerRequest{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		},
		CommodityID: commodity.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var resp application.GuestBookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Customer.ID)
	assert.NotZero(t, resp.Booking.ID)
}

func TestReadinessEndpoint(t *testing.T) {
	healthy := newTestMux([]ReadinessCheck{
		{Name: "hotel-service", Check: func(context.Context) error { return nil }},
		{Name: "taxi-service", Check: func(context.Context) error { return nil }},
	})
	rec := doJSON(t, healthy, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	broken := newTestMux([]ReadinessCheck{
		{Name: "hotel-service", Check: func(context.Context) error { return nil }},
		{Name: "taxi-service", Check: func(context.Context) error { return errors.New("connection refused") }},
	})
	rec = doJSON(t, broken, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "taxi-service")
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
