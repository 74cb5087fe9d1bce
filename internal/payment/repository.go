package payment

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindFull    Kind = "full"
	KindInitial Kind = "initial"
	KindBalance Kind = "balance"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindFull, KindInitial, KindBalance:
		return Kind(s), true
	default:
		return "", false
	}
}

type Record struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	Kind      Kind      `json:"kind"`
	Amount    string    `json:"amount"`
	Reference string    `json:"reference,omitempty"`
	PaidAt    time.Time `json:"paidAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListByBooking(ctx context.Context, bookingID string) ([]Record, error) {
	const q = `
SELECT id, booking_id, kind, amount::text, reference, paid_at
FROM payments
WHERE booking_id = $1
ORDER BY paid_at ASC
`
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.BookingID, &rec.Kind, &rec.Amount, &rec.Reference, &rec.PaidAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func Insert(ctx context.Context, tx pgx.Tx, bookingID string, kind Kind, amount decimal.Decimal, reference string, paidAt time.Time) error {
	const q = `
INSERT INTO payments (booking_id, kind, amount, reference, paid_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := tx.Exec(ctx, q, bookingID, string(kind), amount.StringFixed(2), reference, paidAt)
	return err
}
