package domain

import "context"

// CustomerRepository persists customers.
type CustomerRepository interface {
	FindByID(ctx context.Context, id int64) (*Customer, error)
	FindAll(ctx context.Context) ([]*Customer, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, customer *Customer) error
	Update(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id int64) error
}

// CommodityRepository persists commodities. DecrementQuantity and
// IncrementQuantity are the only booking-driven quantity mutations; keeping
// them separate from Update keeps the inventory invariant auditable.
type CommodityRepository interface {
	FindByID(ctx context.Context, id int64) (*Commodity, error)
	FindAll(ctx context.Context) ([]*Commodity, error)
	FindAvailable(ctx context.Context) ([]*Commodity, error)
	Save(ctx context.Context, commodity *Commodity) error
	Update(ctx context.Context, commodity *Commodity) error
	Delete(ctx context.Context, id int64) error

	// DecrementQuantity reduces the commodity's quantity by one and returns the
	// new value. Fails with ErrOutOfStock when no quantity remains.
	DecrementQuantity(ctx context.Context, id int64) (int, error)

	// IncrementQuantity raises the commodity's quantity by one and returns the
	// new value. There is no upper cap: cancellation always returns the unit.
	IncrementQuantity(ctx context.Context, id int64) (int, error)
}

// BookingRepository persists bookings.
type BookingRepository interface {
	FindByID(ctx context.Context, id int64) (*Booking, error)
	FindAll(ctx context.Context) ([]*Booking, error)
	FindByCustomer(ctx context.Context, customerID int64) ([]*Booking, error)
	ExistsByCustomerAndCommodity(ctx context.Context, customerID, commodityID int64) (bool, error)
	Save(ctx context.Context, booking *Booking) error
	Delete(ctx context.Context, id int64) error
	DeleteByCustomer(ctx context.Context, customerID int64) error
	DeleteByCommodity(ctx context.Context, commodityID int64) error
}

// Repositories bundles the three stores as seen from inside one atomic unit.
type Repositories struct {
	Customers   CustomerRepository
	Commodities CommodityRepository
	Bookings    BookingRepository
}

// UnitOfWork runs fn as one atomic unit: no concurrent Execute observes a
// partial write, and every write is rolled back when fn returns an error.
// The MySQL implementation opens a transaction with row locking; the in-memory
// implementation serializes on a store mutex.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
