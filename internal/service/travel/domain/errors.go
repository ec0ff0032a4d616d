package domain

import "errors"

// Sentinel errors for the booking domain. The interfaces layer maps these to
// HTTP status codes with errors.Is, so callers can branch without string matching.
var (
	// ErrInvalidInput wraps all entity validation failures.
	ErrInvalidInput = errors.New("invalid input")

	ErrCustomerNotFound  = errors.New("customer not found")
	ErrCommodityNotFound = errors.New("commodity not found")
	ErrBookingNotFound   = errors.New("booking not found")

	// ErrDuplicateBooking is returned when a live booking already exists for the
	// same (customer, commodity) pair.
	ErrDuplicateBooking = errors.New("booking already exists for this customer and commodity")

	// ErrOutOfStock is returned when a commodity has no remaining quantity.
	ErrOutOfStock = errors.New("commodity is out of stock")

	// ErrEmailTaken is returned when creating or updating a customer with an
	// email address that another customer already uses.
	ErrEmailTaken = errors.New("customer email already exists")

	// ErrGatewayUnavailable covers transport failures, timeouts and non-success
	// responses from the remote hotel/taxi services.
	ErrGatewayUnavailable = errors.New("remote booking service unavailable")

	// ErrPolicyViolation is returned when a travel request fails the configured
	// booking policy.
	ErrPolicyViolation = errors.New("travel request rejected by booking policy")

	ErrSeatSoldOut         = errors.New("pre-reservation sold out")
	ErrSeatAlreadyReserved = errors.New("seat already pre-reserved by this customer")
)
