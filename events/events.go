// Package events publishes reservation and review domain events after the
// owning transaction has committed.
package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	ReservationCreated   Type = "reservation.created"
	ReservationCancelled Type = "reservation.cancelled"
	ReviewAdded          Type = "review.added"
	ApprovalDecided      Type = "approval.decided"
)

// Event is the payload emitted on the bus and to websocket subscribers.
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"type"`
	RestaurantID  uint      `json:"restaurant_id"`
	TableID       uint      `json:"table_id,omitempty"`
	ReservationID uint      `json:"reservation_id,omitempty"`
	UserID        uint      `json:"user_id,omitempty"`
	Date          string    `json:"date,omitempty"`
	Time          string    `json:"time,omitempty"`
	PartySize     int       `json:"number_of_people,omitempty"`
	Rating        float64   `json:"rating,omitempty"`
	Status        string    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the current time.
func New(t Type, restaurantID uint) Event {
	return Event{
		ID:           uuid.NewString(),
		Type:         t,
		RestaurantID: restaurantID,
		OccurredAt:   time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Fanout delivers each event to every publisher and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogPublisher only logs; used when no broker is configured.
type LogPublisher struct {
	Log *slog.Logger
}

func (p LogPublisher) Publish(_ context.Context, ev Event) error {
	p.Log.Info("event", slog.String("type", string(ev.Type)), slog.String("id", ev.ID),
		slog.Uint64("restaurant_id", uint64(ev.RestaurantID)),
		slog.Uint64("reservation_id", uint64(ev.ReservationID)))
	return nil
}
