package domain

import (
	"fmt"
	"strings"
)

// Customer is a registered customer of the travel service.
type Customer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// NewCustomer validates the raw fields and returns a customer ready to persist.
func NewCustomer(firstName, lastName, email, phone string) (*Customer, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	email = strings.TrimSpace(email)

	if firstName == "" || lastName == "" {
		return nil, fmt.Errorf("%w: customer name must not be empty", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: customer email is not valid", ErrInvalidInput)
	}

	return &Customer{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phone,
	}, nil
}
