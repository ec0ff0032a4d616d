package domain

// TripBooked is published after a travel package has been fully booked.
type TripBooked struct {
	EventID         string `json:"event_id"`
	TraceID         string `json:"trace_id,omitempty"`
	CustomerID      int64  `json:"customer_id"`
	HotelBookingID  int64  `json:"hotel_booking_id"`
	FlightBookingID int64  `json:"flight_booking_id"`
	TaxiBookingID   int64  `json:"taxi_booking_id"`
	Date            string `json:"date"`
}

// TripFailed is published after a travel package booking failed and its
// compensations ran.
type TripFailed struct {
	EventID    string `json:"event_id"`
	TraceID    string `json:"trace_id,omitempty"`
	CustomerID int64  `json:"customer_id"`
	Reason     string `json:"reason"`
}
