package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/infrastructure"
)

func TestGuestBookingCreatesBothRecords(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	commodityID := seedCommodity(t, store, 2)
	svc := NewGuestService(store, otel.Tracer("test"))

	resp, err := svc.Create(context.Background(), &GuestBookingRequest{
		Customer: CreateCustomerRequest{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		},
		CommodityID: commodityID,
	})
	require.NoError(t, err)
	assert.NotZero(t, resp.Customer.ID)
	assert.NotZero(t, resp.Booking.ID)
	assert.Equal(t, resp.Customer.ID, resp.Booking.CustomerID)
	assert.Equal(t, commodityID, resp.Booking.CommodityID)

	assert.Equal(t, 1, commodityQuantity(t, store, commodityID))
}

func TestGuestBookingRollsBackOnTakenEmail(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	seedCustomer(t, store, "grace@example.com")
	commodityID := seedCommodity(t, store, 2)
	svc := NewGuestService(store, otel.Tracer("test"))

	_, err := svc.Create(context.Background(), &GuestBookingRequest{
		Customer: CreateCustomerRequest{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		},
		CommodityID: commodityID,
	})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, 2, commodityQuantity(t, store, commodityID))
}

func TestGuestBookingRollsBackCustomerOnOutOfStock(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	commodityID := seedCommodity(t, store, 0)
	svc := NewGuestService(store, otel.Tracer("test"))

	_, err := svc.Create(context.Background(), &GuestBookingRequest{
		Customer: CreateCustomerRequest{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		},
		CommodityID: commodityID,
	})
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	// The customer insert is rolled back with the rest of the unit.
	customers := NewCustomerService(store, otel.Tracer("test"))
	all, err := customers.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGuestBookingUnknownCommodity(t *testing.T) {
	store := infrastructure.NewMemoryStore()
	svc := NewGuestService(store, otel.Tracer("test"))

	_, err := svc.Create(context.Background(), &GuestBookingRequest{
		Customer: CreateCustomerRequest{
			FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
		},
		CommodityID: 404,
	})
	assert.ErrorIs(t, err, domain.ErrCommodityNotFound)
}
