package adapter

import (
	"context"
	"fmt"

	"voyage/internal/pkg/httpclient"
	"voyage/internal/service/travel/domain"
	"voyage/internal/service/travel/port"
)

// TaxiHTTPAdapter implements port.TaxiBookingService; the remote contract is
// structurally the same as the hotel's.
type TaxiHTTPAdapter struct {
	client  *httpclient.Client
	service string
}

func NewTaxiHTTPAdapter(client *httpclient.Client, service string) *TaxiHTTPAdapter {
	return &TaxiHTTPAdapter{client: client, service: service}
}

type taxiBookingResponse struct {
	ID         int64  `json:"id"`
	CustomerID int64  `json:"customerId"`
	TaxiID     int64  `json:"taxiId"`
	Date       string `json:"bookingDate"`
}

func (a *TaxiHTTPAdapter) Create(ctx context.Context, req port.TaxiBookingRequest) (int64, error) {
	var resp taxiBookingResponse
	if err := a.client.PostJSON(ctx, a.service, "/bookings", req, &resp); err != nil {
		return 0, fmt.Errorf("%w: taxi create: %v", domain.ErrGatewayUnavailable, err)
	}
	return resp.ID, nil
}

func (a *TaxiHTTPAdapter) Cancel(ctx context.Context, bookingID int64) error {
	if err := a.client.Delete(ctx, a.service, fmt.Sprintf("/bookings/%d", bookingID)); err != nil {
		return fmt.Errorf("%w: taxi cancel: %v", domain.ErrGatewayUnavailable, err)
	}
	return nil
}
