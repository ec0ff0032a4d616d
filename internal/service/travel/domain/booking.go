package domain

import "time"

// Booking links exactly one customer to one commodity. At most one live booking
// may exist per (customer, commodity) pair; the ledger enforces this together
// with the paired quantity decrement as a single atomic unit.
type Booking struct {
	ID          int64     `json:"id"`
	CustomerID  int64     `json:"customerId"`
	CommodityID int64     `json:"commodityId"`
	BookingDate time.Time `json:"bookingDate"`
}

// NewBooking returns a booking dated now. The identifier is assigned on insert.
func NewBooking(customerID, commodityID int64) *Booking {
	return &Booking{
		CustomerID:  customerID,
		CommodityID: commodityID,
		BookingDate: time.Now(),
	}
}
