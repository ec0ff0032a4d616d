package port

import (
	"context"

	"voyage/internal/service/travel/domain"
)

// NotificationProducer publishes trip lifecycle events for downstream
// consumers (e.g. the websocket push gateway).
type NotificationProducer interface {
	SendTripBooked(ctx context.Context, event *domain.TripBooked) error
	SendTripFailed(ctx context.Context, event *domain.TripFailed) error
}
