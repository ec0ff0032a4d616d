package port

import "context"

// TaxiBookingRequest is the intent sent to the remote taxi service.
type TaxiBookingRequest struct {
	CustomerID        int64  `json:"customerId"`
	TaxiID            int64  `json:"taxiId"`
	BookingDate       string `json:"bookingDate"`
	DepartureDate     string `json:"departureDate"`
	DepartureLocation string `json:"departureLocation"`
	Destination       string `json:"destination"`
	PassengerCount    int    `json:"passengerCount"`
}

// TaxiBookingService is the outbound port for the remote taxi service.
type TaxiBookingService interface {
	Create(ctx context.Context, req TaxiBookingRequest) (int64, error)

	// Cancel is the compensating action for Create, best effort like the hotel's.
	Cancel(ctx context.Context, bookingID int64) error
}
