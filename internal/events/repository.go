package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	TypeBookingCreated      = "BOOKING_CREATED"
	TypeStatusChanged       = "STATUS_CHANGED"
	TypePaymentReceived     = "PAYMENT_RECEIVED"
	TypePaymentRefunded     = "PAYMENT_REFUNDED"
	TypeParticipantsUpdated = "PARTICIPANTS_UPDATED"
	TypeAdminEdit           = "ADMIN_EDIT"
)

// Event is one entry on a booking's timeline.
type Event struct {
	ID         string    `json:"id"`
	BookingID  string    `json:"bookingId"`
	EventType  string    `json:"eventType"`
	Summary    string    `json:"summary"`
	Actor      string    `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data,omitempty"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID string) ([]Event, error) {
	const q = `
SELECT id, booking_id, event_type, summary, actor, occurred_at, COALESCE(data, '{}'::jsonb)
FROM booking_events
WHERE booking_id = $1
ORDER BY occurred_at ASC, created_at ASC
`
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Event{}
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.BookingID, &e.EventType, &e.Summary, &e.Actor, &e.OccurredAt, &e.Data); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func Insert(ctx context.Context, tx pgx.Tx, bookingID, eventType, summary, actor string, occurredAt time.Time, data any) error {
	var s *string
	if data != nil {
		b, _ := json.Marshal(data)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO booking_events (booking_id, event_type, summary, actor, occurred_at, data)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	_, err := tx.Exec(ctx, q, bookingID, eventType, summary, actor, occurredAt, s)
	return err
}
