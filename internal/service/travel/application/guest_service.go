package application

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
)

// GuestService registers a walk-in customer and books a commodity for them in
// one atomic unit: both records exist afterwards, or neither does. Both writes
// target the local store, so a single local unit of work is all the
// coordination this needs.
type GuestService struct {
	uow    domain.UnitOfWork
	tracer trace.Tracer
}

func NewGuestService(uow domain.UnitOfWork, tracer trace.Tracer) *GuestService {
	return &GuestService{uow: uow, tracer: tracer}
}

func (s *GuestService) Create(ctx context.Context, req *GuestBookingRequest) (*GuestBookingResponse, error) {
	ctx, span := s.tracer.Start(ctx, "guest.CreateBooking")
	defer span.End()

	customer, err := domain.NewCustomer(
		req.Customer.FirstName,
		req.Customer.LastName,
		req.Customer.Email,
		req.Customer.PhoneNumber,
	)
	if err != nil {
		return nil, err
	}

	var booking *domain.Booking
	err = s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		taken, err := repos.Customers.ExistsByEmail(ctx, customer.Email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}
		if err := repos.Customers.Save(ctx, customer); err != nil {
			return err
		}

		commodity, err := repos.Commodities.FindByID(ctx, req.CommodityID)
		if err != nil {
			return err
		}
		if !commodity.InStock() {
			return domain.ErrOutOfStock
		}

		booking = domain.NewBooking(customer.ID, commodity.ID)
		if err := repos.Bookings.Save(ctx, booking); err != nil {
			return err
		}
		_, err = repos.Commodities.DecrementQuantity(ctx, commodity.ID)
		return err
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	logger.Ctx(ctx).Info().
		Int64("customer_id", customer.ID).
		Int64("booking_id", booking.ID).
		Msg("guest booking created")
	return &GuestBookingResponse{Customer: customer, Booking: booking}, nil
}
