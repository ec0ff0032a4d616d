package adapter

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"voyage/internal/pkg/mq"
	"voyage/internal/service/travel/domain"
)

// NotificationKafkaAdapter implements port.NotificationProducer. Events are
// keyed by customer id so one customer's notifications stay ordered.
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) SendTripBooked(ctx context.Context, event *domain.TripBooked) error {
	return a.publish(ctx, event.CustomerID, "trip_booked", event)
}

func (a *NotificationKafkaAdapter) SendTripFailed(ctx context.Context, event *domain.TripFailed) error {
	return a.publish(ctx, event.CustomerID, "trip_failed", event)
}

type notificationEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func (a *NotificationKafkaAdapter) publish(ctx context.Context, customerID int64, eventType string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal notification payload")
	}
	value, err := json.Marshal(notificationEnvelope{Type: eventType, Payload: raw})
	if err != nil {
		return errors.Wrap(err, "marshal notification envelope")
	}
	key := []byte(strconv.FormatInt(customerID, 10))
	return mq.ProduceMessage(ctx, a.writer, key, value)
}

func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
