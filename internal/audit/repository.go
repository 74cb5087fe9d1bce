package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

const (
	ActionBookingCreated      = "BOOKING_CREATED"
	ActionBookingCancelled    = "BOOKING_CANCELLED"
	ActionParticipantsUpdated = "PARTICIPANTS_UPDATED"
	ActionAdminBookingEdit    = "ADMIN_BOOKING_EDIT"
	ActionPaymentApplied      = "PAYMENT_APPLIED"
	ActionPaymentRefunded     = "PAYMENT_REFUNDED"
	ActionTrekUpserted        = "TREK_UPSERTED"
)

// Insert writes an audit row inside tx. bookingID is nil for catalog-level actions.
func Insert(ctx context.Context, tx pgx.Tx, actorID string, bookingID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (actor_id, booking_id, action, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, actorID, bookingID, action, actor, s)
	return err
}
