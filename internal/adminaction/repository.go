package adminaction

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

func Insert(ctx context.Context, tx pgx.Tx, bookingID string, actionType ActionType, remarks, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, _ := json.Marshal(metadata)
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO admin_actions (booking_id, action_type, remarks, actor, metadata)
VALUES ($1, $2, $3, $4, CAST($5 AS jsonb))
`
	_, err := tx.Exec(ctx, q, bookingID, string(actionType), remarks, actor, s)
	return err
}
