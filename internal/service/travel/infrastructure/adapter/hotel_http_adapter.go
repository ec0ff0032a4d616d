package adapter

import (
	"context"
	"fmt"

	"voyage/internal/pkg/httpclient"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/port"
)

// HotelHTTPAdapter implements port.HotelBookingService against the remote
// hotel service's REST contract: POST /bookings creates, DELETE /bookings/{id}
// cancels.
type HotelHTTPAdapter struct {
	client  *httpclient.Client
	service string
}

func NewHotelHTTPAdapter(client *httpclient.Client, service string) *HotelHTTPAdapter {
	return &HotelHTTPAdapter{client: client, service: service}
}

type hotelBookingResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	HotelID    int64  `json:"hotelId"`
	Date       string `json:"date"`
}

func (a *HotelHTTPAdapter) Create(ctx context.Context, req port.HotelBookingRequest) (int64, error) {
	var resp hotelBookingResponse
	if err := a.client.PostJSON(ctx, a.service, "/bookings", req, &resp); err != nil {
		return 0, fmt.Errorf("%w: hotel create: %v", domain.ErrGatewayUnavailable, err)
	}
	return resp.ID, nil
}

func (a *HotelHTTPAdapter) Cancel(ctx context.Context, bookingID int64) error {
	if err := a.client.Delete(ctx, a.service, fmt.Sprintf("/bookings/%d", bookingID)); err != nil {
		return fmt.Errorf("%w: hotel cancel: %v", domain.ErrGatewayUnavailable, err)
	}
	return nil
}
