package infrastructure

import "voyage/internal/service/travel/domain"

func toDomainCustomer(m *CustomerModel) *domain.Customer {
	return &domain.Customer{
		ID:          m.ID,
		FirstName:   m.FirstName,
		LastName:    m.LastName,
		Email:       m.Email,
		PhoneNumber: m.PhoneNumber,
	}
}

func toCustomerModel(c *domain.Customer) *CustomerModel {
	return &CustomerModel{
		ID:          c.ID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		PhoneNumber: c.PhoneNumber,
	}
}

func toDomainCommodity(m *CommodityModel) *domain.Commodity {
	return &domain.Commodity{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		Quantity:    m.Quantity,
	}
}

func toCommodityModel(c *domain.Commodity) *CommodityModel {
	return &CommodityModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Price:       c.Price,
		Quantity:    c.Quantity,
	}
}

func toDomainBooking(m *BookingModel) *domain.Booking {
	return &domain.Booking{
		ID:          m.ID,
		CustomerID:  m.CustomerID,
		CommodityID: m.CommodityID,
		BookingDate: m.BookingDate,
	}
}

func toBookingModel(b *domain.Booking) *BookingModel {
	return &BookingModel{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		CommodityID: b.CommodityID,
		BookingDate: b.BookingDate,
	}
}
