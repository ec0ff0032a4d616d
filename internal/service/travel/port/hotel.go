package port

import "context"

// HotelBookingRequest is the intent sent to the remote hotel service.
type HotelBookingRequest struct {
	CustomerID int64  `json:"customerId"`
	HotelID    int64  `json:"hotelId"`
	Date       string `json:"date"`
}

// HotelBookingService is the outbound port for the remote hotel service.
type HotelBookingService interface {
	// Create books a hotel room and returns the remote booking id.
	Create(ctx context.Context, req HotelBookingRequest) (int64, error)

	// Cancel is the compensating action for Create. Best effort: the caller
	// logs a failure, it never masks the error that triggered the compensation.
	Cancel(ctx context.Context, bookingID int64) error
}
