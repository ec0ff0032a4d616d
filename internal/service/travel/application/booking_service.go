package application

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/port"
)

// BookingService is the inventory-consistent booking ledger. Every mutation
// runs inside one unit of work so the quantity counter and the duplicate index
// are never observed in a partial state.
type BookingService struct {
	uow    domain.UnitOfWork
	locker port.CommodityLocker // optional, for multi-instance deployments
	tracer trace.Tracer
}

func NewBookingService(uow domain.UnitOfWork, locker port.CommodityLocker, tracer trace.Tracer) *BookingService {
	return &BookingService{uow: uow, locker: locker, tracer: tracer}
}

// Create books one unit of a commodity for a customer. The four checks and two
// writes form a single atomic unit: resolve customer, resolve commodity,
// duplicate check, stock check, insert booking, decrement quantity. The
// duplicate check runs before the stock check, so double-booking an exhausted
// commodity still answers ErrDuplicateBooking.
func (s *BookingService) Create(ctx context.Context, customerID, commodityID int64) (*domain.Booking, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.CreateBooking")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("customer.id", customerID),
		attribute.Int64("commodity.id", commodityID),
	)

	release, err := s.lockCommodity(ctx, commodityID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer release()

	var created *domain.Booking
	err = s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Customers.FindByID(ctx, customerID); err != nil {
			return err
		}
		commodity, err := repos.Commodities.FindByID(ctx, commodityID)
		if err != nil {
			return err
		}

		exists, err := repos.Bookings.ExistsByCustomerAndCommodity(ctx, customerID, commodityID)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrDuplicateBooking
		}
		if !commodity.InStock() {
			return domain.ErrOutOfStock
		}

		booking := domain.NewBooking(customerID, commodityID)
		if err := repos.Bookings.Save(ctx, booking); err != nil {
			return err
		}
		if _, err := repos.Commodities.DecrementQuantity(ctx, commodityID); err != nil {
			return err
		}
		created = booking
		return nil
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Int64("booking_id", created.ID).
		Int64("customer_id", customerID).
		Int64("commodity_id", commodityID).
		Msg("booking created")
	span.AddEvent("Booking created and quantity decremented.")
	return created, nil
}

// Cancel deletes a booking and returns its unit to the commodity, again as one
// atomic unit. The increment is uncapped: a cancel always gives the unit back
// even if that exceeds the commodity's original stock level.
func (s *BookingService) Cancel(ctx context.Context, bookingID int64) error {
	ctx, span := s.tracer.Start(ctx, "ledger.CancelBooking")
	defer span.End()
	span.SetAttributes(attribute.Int64("booking.id", bookingID))

	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		booking, err := repos.Bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}
		if _, err := repos.Commodities.IncrementQuantity(ctx, booking.CommodityID); err != nil {
			return err
		}
		return repos.Bookings.Delete(ctx, bookingID)
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	logger.Ctx(ctx).Info().Int64("booking_id", bookingID).Msg("booking cancelled")
	return nil
}

func (s *BookingService) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		booking, err = repos.Bookings.FindByID(ctx, id)
		return err
	})
	return booking, err
}

func (s *BookingService) FindAll(ctx context.Context) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		bookings, err = repos.Bookings.FindAll(ctx)
		return err
	})
	return bookings, err
}

func (s *BookingService) FindByCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		bookings, err = repos.Bookings.FindByCustomer(ctx, customerID)
		return err
	})
	return bookings, err
}

// lockCommodity takes the cross-instance commodity lock when one is
// configured. The lock is never held across remote gateway calls; only the
// ledger's own atomic unit runs under it.
func (s *BookingService) lockCommodity(ctx context.Context, commodityID int64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	return s.locker.Lock(ctx, commodityID)
}
