package domain

import "fmt"

// Commodity is a bookable unit of finite inventory, e.g. a flight seat class.
// Quantity only changes through the booking ledger's decrement/increment paths;
// the generic update path never drives booking-related quantity changes.
type Commodity struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// NewCommodity validates the raw fields and returns a commodity ready to persist.
func NewCommodity(name, description string, price float64, quantity int) (*Commodity, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: commodity name must not be empty", ErrInvalidInput)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: commodity price must be positive", ErrInvalidInput)
	}
	if quantity < 0 {
		return nil, fmt.Errorf("%w: commodity quantity must not be negative", ErrInvalidInput)
	}

	return &Commodity{
		Name:        name,
		Description: description,
		Price:       price,
		Quantity:    quantity,
	}, nil
}

// InStock reports whether at least one unit is available.
func (c *Commodity) InStock() bool {
	return c.Quantity > 0
}
