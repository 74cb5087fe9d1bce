package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const bookingColumns = `
  b.id, b.reference, b.user_id::text, b.user_email, b.trek_id::text, t.name, t.start_date,
  b.participant_count, b.total_price::text, b.amount_paid::text, b.currency,
  b.status, b.payment_mode, b.payment_status,
  b.initial_amount::text, b.remaining_amount::text, b.final_payment_due_date,
  b.admin_remarks, b.created_at, b.updated_at`

const bookingFrom = `
FROM bookings b
JOIN treks t ON t.id = b.trek_id`

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b                           Booking
		total, paid                 string
		initial, remaining          *string
		dueDate                     *time.Time
		status, mode, paymentStatus string
	)
	if err := row.Scan(
		&b.ID, &b.Reference, &b.UserID, &b.UserEmail, &b.TrekID, &b.TrekName, &b.TrekStartDate,
		&b.ParticipantCount, &total, &paid, &b.Currency,
		&status, &mode, &paymentStatus,
		&initial, &remaining, &dueDate,
		&b.AdminRemarks, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		return nil, err
	}
	b.Status = Status(status)
	b.PaymentMode = PaymentMode(mode)
	b.PaymentStatus = PaymentStatus(paymentStatus)

	var err error
	if b.TotalPrice, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("booking %s: total_price: %w", b.ID, err)
	}
	if b.AmountPaid, err = decimal.NewFromString(paid); err != nil {
		return nil, fmt.Errorf("booking %s: amount_paid: %w", b.ID, err)
	}
	if b.PaymentMode == PaymentModePartial && initial != nil && remaining != nil {
		d := PartialPaymentDetails{}
		if d.InitialAmount, err = decimal.NewFromString(*initial); err != nil {
			return nil, fmt.Errorf("booking %s: initial_amount: %w", b.ID, err)
		}
		if d.RemainingAmount, err = decimal.NewFromString(*remaining); err != nil {
			return nil, fmt.Errorf("booking %s: remaining_amount: %w", b.ID, err)
		}
		if dueDate != nil {
			d.FinalPaymentDueDate = *dueDate
		}
		b.PartialPaymentDetails = &d
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()
	out := []Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func loadParticipants(ctx context.Context, q querier, b *Booking) error {
	const sql = `
SELECT name, age, gender, custom_fields
FROM booking_participants
WHERE booking_id = $1
ORDER BY position ASC
`
	rows, err := q.Query(ctx, sql, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	b.Participants = []Participant{}
	for rows.Next() {
		var p Participant
		var raw []byte
		if err := rows.Scan(&p.Name, &p.Age, &p.Gender, &raw); err != nil {
			return err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &p.CustomFields); err != nil {
				return fmt.Errorf("booking %s: participant fields: %w", b.ID, err)
			}
		}
		b.Participants = append(b.Participants, p)
	}
	return rows.Err()
}

func getOne(ctx context.Context, q querier, where string, args ...any) (*Booking, error) {
	b, err := scanBooking(q.QueryRow(ctx, `SELECT `+bookingColumns+bookingFrom+` WHERE `+where, args...))
	if err != nil {
		return nil, err
	}
	if err := loadParticipants(ctx, q, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getOne(ctx, r.db, `b.id = $1`, id)
}

// GetForUser returns the booking only when userID owns it; otherwise pgx.ErrNoRows.
func (r *Repository) GetForUser(ctx context.Context, id, userID string) (*Booking, error) {
	return getOne(ctx, r.db, `b.id = $1 AND b.user_id = $2`, id, userID)
}

// GetForUpdate locks the booking row for the rest of tx.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Booking, error) {
	return getOne(ctx, tx, `b.id = $1 FOR UPDATE OF b`, id)
}

func (r *Repository) ListByUser(ctx context.Context, userID string, status *Status) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + bookingFrom + ` WHERE b.user_id = $1`
	args := []any{userID}
	if status != nil {
		q += ` AND b.status = $2`
		args = append(args, string(*status))
	}
	q += ` ORDER BY b.created_at DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

type Filter struct {
	Status *Status
	// Search matches reference, user email or trek name, case-insensitively.
	Search string
	Limit  int
	Offset int
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, fmt.Sprintf("b.status = $%d", len(args)))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(b.reference ILIKE $%d OR b.user_email ILIKE $%d OR t.name ILIKE $%d)", n, n, n))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *Repository) ListAll(ctx context.Context, f Filter) ([]Booking, error) {
	where, args := f.where()
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	q := `SELECT ` + bookingColumns + bookingFrom + where +
		fmt.Sprintf(` ORDER BY b.created_at DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// StatusCounts returns how many bookings sit in each status. An empty userID counts all bookings.
func (r *Repository) StatusCounts(ctx context.Context, userID string) (map[Status]int, error) {
	q := `SELECT status, COUNT(*) FROM bookings`
	var args []any
	if userID != "" {
		q += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	q += ` GROUP BY status`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Status]int, len(allowedTransitions))
	for _, s := range Statuses() {
		out[s] = 0
	}
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[Status(s)] = n
	}
	return out, rows.Err()
}

// NewReference returns a short human-facing booking reference such as TRK-3F9A12C4.
func NewReference() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "TRK-" + strings.ToUpper(id[:8])
}

func partialColumns(b Booking) (initial, remaining *string, due *time.Time) {
	if b.PartialPaymentDetails == nil {
		return nil, nil, nil
	}
	i := b.PartialPaymentDetails.InitialAmount.StringFixed(2)
	r := b.PartialPaymentDetails.RemainingAmount.StringFixed(2)
	d := b.PartialPaymentDetails.FinalPaymentDueDate
	return &i, &r, &d
}

// Insert stores b and its participants. ID, Reference and timestamps are filled in on b.
func Insert(ctx context.Context, tx pgx.Tx, b *Booking) error {
	if b.Reference == "" {
		b.Reference = NewReference()
	}
	initial, remaining, due := partialColumns(*b)

	const q = `
INSERT INTO bookings (
  reference, user_id, user_email, trek_id, participant_count, total_price, amount_paid, currency,
  status, payment_mode, payment_status, initial_amount, remaining_amount, final_payment_due_date
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
RETURNING id, created_at, updated_at
`
	if err := tx.QueryRow(ctx, q,
		b.Reference, b.UserID, b.UserEmail, b.TrekID, b.ParticipantCount,
		b.TotalPrice.StringFixed(2), b.AmountPaid.StringFixed(2), b.Currency,
		string(b.Status), string(b.PaymentMode), string(b.PaymentStatus),
		initial, remaining, due,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return err
	}
	if len(b.Participants) > 0 {
		return ReplaceParticipants(ctx, tx, b.ID, b.Participants)
	}
	return nil
}

// UpdateLifecycle persists the mutable lifecycle fields of b.
func UpdateLifecycle(ctx context.Context, tx pgx.Tx, b Booking) (time.Time, error) {
	_, remaining, _ := partialColumns(b)
	const q = `
UPDATE bookings
SET status = $2,
    payment_status = $3,
    total_price = $4,
    amount_paid = $5,
    remaining_amount = $6,
    admin_remarks = $7,
    updated_at = NOW()
WHERE id = $1
RETURNING updated_at
`
	var updated time.Time
	err := tx.QueryRow(ctx, q,
		b.ID, string(b.Status), string(b.PaymentStatus),
		b.TotalPrice.StringFixed(2), b.AmountPaid.StringFixed(2), remaining, b.AdminRemarks,
	).Scan(&updated)
	return updated, err
}

func ReplaceParticipants(ctx context.Context, tx pgx.Tx, bookingID string, list []Participant) error {
	if _, err := tx.Exec(ctx, `DELETE FROM booking_participants WHERE booking_id = $1`, bookingID); err != nil {
		return err
	}
	const q = `
INSERT INTO booking_participants (booking_id, position, name, age, gender, custom_fields)
VALUES ($1, $2, $3, $4, $5, CAST($6 AS jsonb))
`
	for i, p := range list {
		fields := p.CustomFields
		if fields == nil {
			fields = map[string]string{}
		}
		raw, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, q, bookingID, i, p.Name, p.Age, p.Gender, string(raw)); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx, `UPDATE bookings SET updated_at = NOW() WHERE id = $1`, bookingID)
	return err
}
