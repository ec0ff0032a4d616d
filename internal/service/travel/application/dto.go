package application

import "voyage/internal/service/travel/domain"

// Trip statuses returned by the travel service. The orchestrator always
// answers with a structured result, never a bare error.
const (
	TripStatusSuccess = "SUCCESS"
	TripStatusFailed  = "FAILED"
)

// TravelBookingRequest is the input of the travel package use case.
type TravelBookingRequest struct {
	CustomerID        int64  `json:"customerId"`
	HotelID           int64  `json:"hotelId"`
	FlightCommodityID int64  `json:"flightCommodityId"`
	TaxiID            int64  `json:"taxiId"`
	Date              string `json:"date"`
	DepartureLocation string `json:"departureLocation,omitempty"`
	Destination       string `json:"destination,omitempty"`
	PassengerCount    int    `json:"passengerCount,omitempty"`
}

// TravelBookingResponse reports which legs were booked. On failure the ids of
// already-compensated legs stay populated so the caller can audit what ran.
type TravelBookingResponse struct {
	Status          string `json:"status"`
	HotelBookingID  *int64 `json:"hotelBookingId,omitempty"`
	FlightBookingID *int64 `json:"flightBookingId,omitempty"`
	TaxiBookingID   *int64 `json:"taxiBookingId,omitempty"`
	Message         string `json:"message"`
	Compensated     bool   `json:"compensated"`
}

// CreateCustomerRequest carries the raw fields of a new customer.
type CreateCustomerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// CreateCommodityRequest carries the raw fields of a new commodity.
type CreateCommodityRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// CreateBookingRequest creates one ledger booking.
type CreateBookingRequest struct {
	CustomerID  int64 `json:"customerId"`
	CommodityID int64 `json:"commodityId"`
}

// GuestBookingRequest registers a customer and books a commodity for them in
// one atomic unit.
type GuestBookingRequest struct {
	Customer    CreateCustomerRequest `json:"customer"`
	CommodityID int64                 `json:"commodityId"`
}

// GuestBookingResponse returns both records created by the guest booking.
type GuestBookingResponse struct {
	Customer *domain.Customer `json:"customer"`
	Booking  *domain.Booking  `json:"booking"`
}
