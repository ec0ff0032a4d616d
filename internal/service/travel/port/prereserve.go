package port

import "context"

// PrereserveResult is the outcome of a fast-path seat pre-reservation.
type PrereserveResult int

const (
	PrereserveSuccess PrereserveResult = iota + 1
	PrereserveSoldOut
	PrereserveDuplicate
)

// SeatPrereserveService is an optional fast-fail guard for high-demand
// commodities: it pre-deducts a unit from a shared counter before the booking
// saga touches the ledger, so hopeless requests are rejected cheaply.
type SeatPrereserveService interface {
	Attempt(ctx context.Context, commodityID, customerID int64) (PrereserveResult, error)

	// Release is the compensating action for a successful Attempt.
	Release(ctx context.Context, commodityID, customerID int64) error
}
