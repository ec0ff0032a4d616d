package saga

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/port"
)

// Ledger is the slice of the local booking ledger the saga needs: the forward
// flight step and its compensation.
type Ledger interface {
	Create(ctx context.Context, customerID, commodityID int64) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID int64) error
}

// Trip is the per-invocation saga state. The three booking ids start unset and
// are recorded as their steps succeed; they only exist to drive compensation
// and to fill the final result. Nothing here is persisted: a crash mid-saga
// leaves remote bookings for manual reconciliation.
type Trip struct {
	CustomerID        int64
	HotelID           int64
	FlightCommodityID int64
	TaxiID            int64
	Date              string
	DepartureLocation string
	Destination       string
	PassengerCount    int

	// HighDemand routes the request through the seat pre-reservation guard.
	HighDemand bool

	HotelBookingID  *int64
	FlightBookingID *int64
	TaxiBookingID   *int64
}

// TripContext carries the trip state and the outbound ports through the
// handler chain, plus the LIFO list of compensating actions.
type TripContext struct {
	Ctx    context.Context
	Trip   *Trip
	Tracer trace.Tracer

	Hotel      port.HotelBookingService
	Taxi       port.TaxiBookingService
	Ledger     Ledger
	Prereserve port.SeatPrereserveService
	Notifier   port.NotificationProducer

	compensations []func(ctx context.Context)
	compLock      sync.Mutex
	compensated   bool
}

// AddCompensation prepends, so TriggerCompensation undoes steps in reverse
// order of acquisition.
func (c *TripContext) AddCompensation(comp func(ctx context.Context)) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensations = append([]func(context.Context){comp}, c.compensations...)
}

// TriggerCompensation runs every registered compensation. Each closure handles
// its own failure: a broken compensation is logged and must never halt the
// remaining ones or mask the error that triggered the pass.
func (c *TripContext) TriggerCompensation(ctx context.Context) {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	c.compensated = c.compensated || len(c.compensations) > 0
	logger.Ctx(ctx).Warn().
		Int("compensations", len(c.compensations)).
		Int64("customer_id", c.Trip.CustomerID).
		Msg("executing saga compensation")
	for _, comp := range c.compensations {
		comp(ctx)
	}
	c.compensations = nil
}

// Compensated reports whether a compensation pass ran.
func (c *TripContext) Compensated() bool {
	c.compLock.Lock()
	defer c.compLock.Unlock()
	return c.compensated
}

type Handler interface {
	SetNext(handler Handler) Handler
	Handle(tripCtx *TripContext) error
}

type NextHandler struct {
	next Handler
}

func (h *NextHandler) SetNext(handler Handler) Handler {
	h.next = handler
	return handler
}

func (h *NextHandler) executeNext(tripCtx *TripContext) error {
	if h.next != nil {
		return h.next.Handle(tripCtx)
	}
	return nil
}
