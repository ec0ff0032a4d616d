package application

import (
	"context"

	"go.opentelemetry.io/otel/trace"

	"voyage/internal/pkg/logger"
	"voyage/internal/service/travel/domain"
)

// CustomerService provides customer CRUD with an email uniqueness guarantee.
type CustomerService struct {
	uow    domain.UnitOfWork
	tracer trace.Tracer
}

func NewCustomerService(uow domain.UnitOfWork, tracer trace.Tracer) *CustomerService {
	return &CustomerService{uow: uow, tracer: tracer}
}

func (s *CustomerService) Create(ctx context.Context, req *CreateCustomerRequest) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "customer.Create")
	defer span.End()

	customer, err := domain.NewCustomer(req.FirstName, req.LastName, req.Email, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		taken, err := repos.Customers.ExistsByEmail(ctx, customer.Email)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrEmailTaken
		}
		return repos.Customers.Save(ctx, customer)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	logger.Ctx(ctx).Info().Int64("customer_id", customer.ID).Str("email", customer.Email).Msg("customer created")
	return customer, nil
}

func (s *CustomerService) Update(ctx context.Context, id int64, req *CreateCustomerRequest) (*domain.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "customer.Update")
	defer span.End()

	updated, err := domain.NewCustomer(req.FirstName, req.LastName, req.Email, req.PhoneNumber)
	if err != nil {
		return nil, err
	}

	err = s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		existing, err := repos.Customers.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if existing.Email != updated.Email {
			taken, err := repos.Customers.ExistsByEmail(ctx, updated.Email)
			if err != nil {
				return err
			}
			if taken {
				return domain.ErrEmailTaken
			}
		}
		updated.ID = id
		return repos.Customers.Update(ctx, updated)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return updated, nil
}

// Delete removes a customer together with all of their bookings. The
// dependents go first, inside the same atomic unit as the parent delete.
func (s *CustomerService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "customer.Delete")
	defer span.End()

	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Customers.FindByID(ctx, id); err != nil {
			return err
		}
		if err := repos.Bookings.DeleteByCustomer(ctx, id); err != nil {
			return err
		}
		return repos.Customers.Delete(ctx, id)
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	logger.Ctx(ctx).Info().Int64("customer_id", id).Msg("customer deleted with dependent bookings")
	return nil
}

func (s *CustomerService) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var customer *domain.Customer
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		customer, err = repos.Customers.FindByID(ctx, id)
		return err
	})
	return customer, err
}

func (s *CustomerService) FindAll(ctx context.Context) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	err := s.uow.Execute(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		customers, err = repos.Customers.FindAll(ctx)
		return err
	})
	return customers, err
}
