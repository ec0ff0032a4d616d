package infrastructure

import (
	"context"
	"sync"

	"voyage/internal/service/travel/domain"
)

// MemoryStore implements domain.UnitOfWork on plain maps. Execute serializes
// all units behind one mutex and snapshots the maps first, so a failing fn
// rolls back exactly like the transactional implementation. Used by tests and
// the dev mode of the travel service.
type MemoryStore struct {
	mu sync.Mutex

	customers   map[int64]*domain.Customer
	commodities map[int64]*domain.Commodity
	bookings    map[int64]*domain.Booking

	nextCustomerID  int64
	nextCommodityID int64
	nextBookingID   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		customers:   make(map[int64]*domain.Customer),
		commodities: make(map[int64]*domain.Commodity),
		bookings:    make(map[int64]*domain.Booking),
	}
}

func (s *MemoryStore) Execute(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	err := fn(ctx, domain.Repositories{
		Customers:   &memoryCustomerRepository{store: s},
		Commodities: &memoryCommodityRepository{store: s},
		Bookings:    &memoryBookingRepository{store: s},
	})
	if err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	customers   map[int64]*domain.Customer
	commodities map[int64]*domain.Commodity
	bookings    map[int64]*domain.Booking

	nextCustomerID  int64
	nextCommodityID int64
	nextBookingID   int64
}

func (s *MemoryStore) snapshot() memorySnapshot {
	snap := memorySnapshot{
		customers:       make(map[int64]*domain.Customer, len(s.customers)),
		commodities:     make(map[int64]*domain.Commodity, len(s.commodities)),
		bookings:        make(map[int64]*domain.Booking, len(s.bookings)),
		nextCustomerID:  s.nextCustomerID,
		nextCommodityID: s.nextCommodityID,
		nextBookingID:   s.nextBookingID,
	}
	for id, c := range s.customers {
		clone := *c
		snap.customers[id] = &clone
	}
	for id, c := range s.commodities {
		clone := *c
		snap.commodities[id] = &clone
	}
	for id, b := range s.bookings {
		clone := *b
		snap.bookings[id] = &clone
	}
	return snap
}

func (s *MemoryStore) restore(snap memorySnapshot) {
	s.customers = snap.customers
	s.commodities = snap.commodities
	s.bookings = snap.bookings
	s.nextCustomerID = snap.nextCustomerID
	s.nextCommodityID = snap.nextCommodityID
	s.nextBookingID = snap.nextBookingID
}

type memoryCustomerRepository struct {
	store *MemoryStore
}

func (r *memoryCustomerRepository) FindByID(_ context.Context, id int64) (*domain.Customer, error) {
	customer, ok := r.store.customers[id]
	if !ok {
		return nil, domain.ErrCustomerNotFound
	}
	clone := *customer
	return &clone, nil
}

func (r *memoryCustomerRepository) FindAll(_ context.Context) ([]*domain.Customer, error) {
	customers := make([]*domain.Customer, 0, len(r.store.customers))
	for _, c := range r.store.customers {
		clone := *c
		customers = append(customers, &clone)
	}
	return customers, nil
}

func (r *memoryCustomerRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, c := range r.store.customers {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryCustomerRepository) Save(_ context.Context, customer *domain.Customer) error {
	r.store.nextCustomerID++
	customer.ID = r.store.nextCustomerID
	clone := *customer
	r.store.customers[customer.ID] = &clone
	return nil
}

func (r *memoryCustomerRepository) Update(_ context.Context, customer *domain.Customer) error {
	if _, ok := r.store.customers[customer.ID]; !ok {
		return domain.ErrCustomerNotFound
	}
	clone := *customer
	r.store.customers[customer.ID] = &clone
	return nil
}

func (r *memoryCustomerRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.customers[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.store.customers, id)
	return nil
}

type memoryCommodityRepository struct {
	store *MemoryStore
}

func (r *memoryCommodityRepository) FindByID(_ context.Context, id int64) (*domain.Commodity, error) {
	commodity, ok := r.store.commodities[id]
	if !ok {
		return nil, domain.ErrCommodityNotFound
	}
	clone := *commodity
	return &clone, nil
}

func (r *memoryCommodityRepository) FindAll(_ context.Context) ([]*domain.Commodity, error) {
	commodities := make([]*domain.Commodity, 0, len(r.store.commodities))
	for _, c := range r.store.commodities {
		clone := *c
		commodities = append(commodities, &clone)
	}
	return commodities, nil
}

func (r *memoryCommodityRepository) FindAvailable(_ context.Context) ([]*domain.Commodity, error) {
	commodities := make([]*domain.Commodity, 0, len(r.store.commodities))
	for _, c := range r.store.commodities {
		if c.InStock() {
			clone := *c
			commodities = append(commodities, &clone)
		}
	}
	return commodities, nil
}

func (r *memoryCommodityRepository) Save(_ context.Context, commodity *domain.Commodity) error {
	r.store.nextCommodityID++
	commodity.ID = r.store.nextCommodityID
	clone := *commodity
	r.store.commodities[commodity.ID] = &clone
	return nil
}

func (r *memoryCommodityRepository) Update(_ context.Context, commodity *domain.Commodity) error {
	if _, ok := r.store.commodities[commodity.ID]; !ok {
		return domain.ErrCommodityNotFound
	}
	clone := *commodity
	r.store.commodities[commodity.ID] = &clone
	return nil
}

func (r *memoryCommodityRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.commodities[id]; !ok {
		return domain.ErrCommodityNotFound
	}
	delete(r.store.commodities, id)
	return nil
}

func (r *memoryCommodityRepository) DecrementQuantity(_ context.Context, id int64) (int, error) {
	commodity, ok := r.store.commodities[id]
	if !ok {
		return 0, domain.ErrCommodityNotFound
	}
	if commodity.Quantity <= 0 {
		return 0, domain.ErrOutOfStock
	}
	commodity.Quantity--
	return commodity.Quantity, nil
}

func (r *memoryCommodityRepository) IncrementQuantity(_ context.Context, id int64) (int, error) {
	commodity, ok := r.store.commodities[id]
	if !ok {
		return 0, domain.ErrCommodityNotFound
	}
	commodity.Quantity++
	return commodity.Quantity, nil
}

type memoryBookingRepository struct {
	store *MemoryStore
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id int64) (*domain.Booking, error) {
	booking, ok := r.store.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	clone := *booking
	return &clone, nil
}

func (r *memoryBookingRepository) FindAll(_ context.Context) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0, len(r.store.bookings))
	for _, b := range r.store.bookings {
		clone := *b
		bookings = append(bookings, &clone)
	}
	return bookings, nil
}

func (r *memoryBookingRepository) FindByCustomer(_ context.Context, customerID int64) ([]*domain.Booking, error) {
	var bookings []*domain.Booking
	for _, b := range r.store.bookings {
		if b.CustomerID == customerID {
			clone := *b
			bookings = append(bookings, &clone)
		}
	}
	return bookings, nil
}

func (r *memoryBookingRepository) ExistsByCustomerAndCommodity(_ context.Context, customerID, commodityID int64) (bool, error) {
	for _, b := range r.store.bookings {
		if b.CustomerID == customerID && b.CommodityID == commodityID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryBookingRepository) Save(_ context.Context, booking *domain.Booking) error {
	r.store.nextBookingID++
	booking.ID = r.store.nextBookingID
	clone := *booking
	r.store.bookings[booking.ID] = &clone
	return nil
}

func (r *memoryBookingRepository) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.bookings[id]; !ok {
		return domain.ErrBookingNotFound
	}
	delete(r.store.bookings, id)
	return nil
}

func (r *memoryBookingRepository) DeleteByCustomer(_ context.Context, customerID int64) error {
	for id, b := range r.store.bookings {
		if b.CustomerID == customerID {
			delete(r.store.bookings, id)
		}
	}
	return nil
}

func (r *memoryBookingRepository) DeleteByCommodity(_ context.Context, commodityID int64) error {
	for id, b := range r.store.bookings {
		if b.CommodityID == commodityID {
			delete(r.store.bookings, id)
		}
	}
	return nil
}
