// README: Booking status events published over Redis pub/sub, fire-and-forget.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusChannel = "bookings:status"

// Envelope is the wire form consumed by the notification collaborator.
type Envelope struct {
	EventID    string    `json:"event_id"`
	BookingID  string    `json:"booking_id"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	redis *redis.Client
}

func NewPublisher(redis *redis.Client) *Publisher {
	return &Publisher{redis: redis}
}

func (p *Publisher) Publish(ctx context.Context, bookingID, status string, at time.Time) error {
	payload, err := json.Marshal(Envelope{
		EventID:    uuid.NewString(),
		BookingID:  bookingID,
		Status:     status,
		OccurredAt: at.UTC(),
	})
	if err != nil {
		return err
	}
	return p.redis.Publish(ctx, statusChannel, payload).Err()
}
