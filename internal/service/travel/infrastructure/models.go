package infrastructure

import "time"

// CustomerModel maps to the customer table.
type CustomerModel struct {
	ID          int64  `gorm:"primaryKey;autoIncrement"`
	FirstName   string `gorm:"size:100"`
	LastName    string `gorm:"size:100"`
	Email       string `gorm:"size:255;uniqueIndex"`
	PhoneNumber string `gorm:"size:50"`
}

func (CustomerModel) TableName() string {
	return "customer"
}

// CommodityModel maps to the commodity table.
type CommodityModel struct {
	ID          int64   `gorm:"primaryKey;autoIncrement"`
	Name        string  `gorm:"size:100"`
	Description string  `gorm:"size:500"`
	Price       float64 `gorm:"type:decimal(10,2)"`
	Quantity    int
}

func (CommodityModel) TableName() string {
	return "commodity"
}

// BookingModel maps to the booking table. The composite unique index backs the
// one-live-booking-per-pair invariant at the storage level, so a racing insert
// fails even if two transactions passed the existence check simultaneously.
type BookingModel struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	CustomerID  int64 `gorm:"uniqueIndex:idx_customer_commodity"`
	CommodityID int64 `gorm:"uniqueIndex:idx_customer_commodity;index"`
	BookingDate time.Time
}

func (BookingModel) TableName() string {
	return "booking"
}
