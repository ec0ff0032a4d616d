package infrastructure

import (
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"voyage/internal/service/travel/domain"
)

const mysqlDuplicateEntry = 1062

// GormUnitOfWork implements domain.UnitOfWork on a MySQL database. Execute
// opens one transaction and hands fn transaction-scoped repositories, so every
// write inside fn commits or rolls back together.
type GormUnitOfWork struct {
	db *gorm.DB
}

func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// AutoMigrate creates the three tables and their indexes.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&CustomerModel{}, &CommodityModel{}, &BookingModel{})
}

func (u *GormUnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, domain.Repositories{
			Customers:   &gormCustomerRepository{db: tx},
			Commodities: &gormCommodityRepository{db: tx},
			Bookings:    &gormBookingRepository{db: tx},
		})
	})
}

func isDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry
}

type gormCustomerRepository struct {
	db *gorm.DB
}

func (r *gormCustomerRepository) FindByID(ctx context.Context, id int64) (*domain.Customer, error) {
	var model CustomerModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, pkgerrors.Wrap(err, "find customer")
	}
	return toDomainCustomer(&model), nil
}

func (r *gormCustomerRepository) FindAll(ctx context.Context) ([]*domain.Customer, error) {
	var models []CustomerModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list customers")
	}
	customers := make([]*domain.Customer, 0, len(models))
	for i := range models {
		customers = append(customers, toDomainCustomer(&models[i]))
	}
	return customers, nil
}

func (r *gormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "count customers by email")
	}
	return count > 0, nil
}

func (r *gormCustomerRepository) Save(ctx context.Context, customer *domain.Customer) error {
	model := toCustomerModel(customer)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		// The unique index catches races the ExistsByEmail check cannot see.
		if isDuplicateEntry(err) {
			return domain.ErrEmailTaken
		}
		return pkgerrors.Wrap(err, "insert customer")
	}
	customer.ID = model.ID
	return nil
}

func (r *gormCustomerRepository) Update(ctx context.Context, customer *domain.Customer) error {
	result := r.db.WithContext(ctx).Model(&CustomerModel{}).Where("id = ?", customer.ID).Updates(map[string]interface{}{
		"first_name":   customer.FirstName,
		"last_name":    customer.LastName,
		"email":        customer.Email,
		"phone_number": customer.PhoneNumber,
	})
	if result.Error != nil {
		if isDuplicateEntry(result.Error) {
			return domain.ErrEmailTaken
		}
		return pkgerrors.Wrap(result.Error, "update customer")
	}
	if result.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

func (r *gormCustomerRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&CustomerModel{}, id)
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "delete customer")
	}
	if result.RowsAffected == 0 {
		return domain.ErrCustomerNotFound
	}
	return nil
}

type gormCommodityRepository struct {
	db *gorm.DB
}

func (r *gormCommodityRepository) FindByID(ctx context.Context, id int64) (*domain.Commodity, error) {
	var model CommodityModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCommodityNotFound
		}
		return nil, pkgerrors.Wrap(err, "find commodity")
	}
	return toDomainCommodity(&model), nil
}

func (r *gormCommodityRepository) FindAll(ctx context.Context) ([]*domain.Commodity, error) {
	var models []CommodityModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list commodities")
	}
	return toDomainCommodities(models), nil
}

func (r *gormCommodityRepository) FindAvailable(ctx context.Context) ([]*domain.Commodity, error) {
	var models []CommodityModel
	if err := r.db.WithContext(ctx).Where("quantity > 0").Order("id").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list available commodities")
	}
	return toDomainCommodities(models), nil
}

func toDomainCommodities(models []CommodityModel) []*domain.Commodity {
	commodities := make([]*domain.Commodity, 0, len(models))
	for i := range models {
		commodities = append(commodities, toDomainCommodity(&models[i]))
	}
	return commodities
}

func (r *gormCommodityRepository) Save(ctx context.Context, commodity *domain.Commodity) error {
	model := toCommodityModel(commodity)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return pkgerrors.Wrap(err, "insert commodity")
	}
	commodity.ID = model.ID
	return nil
}

func (r *gormCommodityRepository) Update(ctx context.Context, commodity *domain.Commodity) error {
	result := r.db.WithContext(ctx).Model(&CommodityModel{}).Where("id = ?", commodity.ID).Updates(map[string]interface{}{
		"name":        commodity.Name,
		"description": commodity.Description,
		"price":       commodity.Price,
		"quantity":    commodity.Quantity,
	})
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "update commodity")
	}
	if result.RowsAffected == 0 {
		return domain.ErrCommodityNotFound
	}
	return nil
}

func (r *gormCommodityRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&CommodityModel{}, id)
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "delete commodity")
	}
	if result.RowsAffected == 0 {
		return domain.ErrCommodityNotFound
	}
	return nil
}

// DecrementQuantity is a guarded single-statement update: the quantity > 0
// predicate makes the read-modify-write atomic at the row level, so two racing
// transactions can never drive the counter negative.
func (r *gormCommodityRepository) DecrementQuantity(ctx context.Context, id int64) (int, error) {
	result := r.db.WithContext(ctx).Model(&CommodityModel{}).
		Where("id = ? AND quantity > 0", id).
		UpdateColumn("quantity", gorm.Expr("quantity - 1"))
	if result.Error != nil {
		return 0, pkgerrors.Wrap(result.Error, "decrement quantity")
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&CommodityModel{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return 0, pkgerrors.Wrap(err, "decrement quantity")
		}
		if count == 0 {
			return 0, domain.ErrCommodityNotFound
		}
		return 0, domain.ErrOutOfStock
	}
	return r.quantityOf(ctx, id)
}

// IncrementQuantity has no upper cap: a cancellation always returns the unit.
func (r *gormCommodityRepository) IncrementQuantity(ctx context.Context, id int64) (int, error) {
	result := r.db.WithContext(ctx).Model(&CommodityModel{}).
		Where("id = ?", id).
		UpdateColumn("quantity", gorm.Expr("quantity + 1"))
	if result.Error != nil {
		return 0, pkgerrors.Wrap(result.Error, "increment quantity")
	}
	if result.RowsAffected == 0 {
		return 0, domain.ErrCommodityNotFound
	}
	return r.quantityOf(ctx, id)
}

func (r *gormCommodityRepository) quantityOf(ctx context.Context, id int64) (int, error) {
	var model CommodityModel
	if err := r.db.WithContext(ctx).Select("quantity").First(&model, id).Error; err != nil {
		return 0, pkgerrors.Wrap(err, "read quantity")
	}
	return model.Quantity, nil
}

type gormBookingRepository struct {
	db *gorm.DB
}

func (r *gormBookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var model BookingModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, pkgerrors.Wrap(err, "find booking")
	}
	return toDomainBooking(&model), nil
}

func (r *gormBookingRepository) FindAll(ctx context.Context) ([]*domain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list bookings")
	}
	return toDomainBookings(models), nil
}

func (r *gormBookingRepository) FindByCustomer(ctx context.Context, customerID int64) ([]*domain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("id").Find(&models).Error; err != nil {
		return nil, pkgerrors.Wrap(err, "list bookings by customer")
	}
	return toDomainBookings(models), nil
}

func toDomainBookings(models []BookingModel) []*domain.Booking {
	bookings := make([]*domain.Booking, 0, len(models))
	for i := range models {
		bookings = append(bookings, toDomainBooking(&models[i]))
	}
	return bookings
}

func (r *gormBookingRepository) ExistsByCustomerAndCommodity(ctx context.Context, customerID, commodityID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Where("customer_id = ? AND commodity_id = ?", customerID, commodityID).
		Count(&count).Error
	if err != nil {
		return false, pkgerrors.Wrap(err, "count bookings")
	}
	return count > 0, nil
}

func (r *gormBookingRepository) Save(ctx context.Context, booking *domain.Booking) error {
	model := toBookingModel(booking)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateEntry(err) {
			return domain.ErrDuplicateBooking
		}
		return pkgerrors.Wrap(err, "insert booking")
	}
	booking.ID = model.ID
	return nil
}

func (r *gormBookingRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&BookingModel{}, id)
	if result.Error != nil {
		return pkgerrors.Wrap(result.Error, "delete booking")
	}
	if result.RowsAffected == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *gormBookingRepository) DeleteByCustomer(ctx context.Context, customerID int64) error {
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Delete(&BookingModel{}).Error
	return pkgerrors.Wrap(err, "delete bookings by customer")
}

func (r *gormBookingRepository) DeleteByCommodity(ctx context.Context, commodityID int64) error {
	err := r.db.WithContext(ctx).Where("commodity_id = ?", commodityID).Delete(&BookingModel{}).Error
	return pkgerrors.Wrap(err, "delete bookings by commodity")
}
