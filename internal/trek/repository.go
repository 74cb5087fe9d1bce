package trek

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const trekColumns = `id, slug, name, region, price::text, currency, start_date, duration_days,
  payment_config, custom_fields, active, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrek(row rowScanner) (*Trek, error) {
	var (
		t         Trek
		price     string
		payCfg    []byte
		fieldsRaw []byte
	)
	if err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.Region, &price, &t.Currency, &t.StartDate, &t.DurationDays,
		&payCfg, &fieldsRaw, &t.Active, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("trek %s: bad price %q: %w", t.ID, price, err)
	}
	t.Price = p
	if t.Payment, err = ParseAndValidate(payCfg); err != nil {
		return nil, fmt.Errorf("trek %s: payment config: %w", t.ID, err)
	}
	t.CustomFields = []CustomField{}
	if len(fieldsRaw) > 0 {
		if err := json.Unmarshal(fieldsRaw, &t.CustomFields); err != nil {
			return nil, fmt.Errorf("trek %s: custom fields: %w", t.ID, err)
		}
	}
	return &t, nil
}

func (r *Repository) List(ctx context.Context, includeInactive bool) ([]Trek, error) {
	q := `SELECT ` + trekColumns + ` FROM treks`
	if !includeInactive {
		q += ` WHERE active`
	}
	q += ` ORDER BY start_date ASC, name ASC`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Trek{}
	for rows.Next() {
		t, err := scanTrek(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repository) GetByID(ctx context.Context, id string) (*Trek, error) {
	return scanTrek(r.db.QueryRow(ctx, `SELECT `+trekColumns+` FROM treks WHERE id = $1`, id))
}

func (r *Repository) GetBySlug(ctx context.Context, slug string) (*Trek, error) {
	return scanTrek(r.db.QueryRow(ctx, `SELECT `+trekColumns+` FROM treks WHERE slug = $1`, slug))
}

// Upsert inserts or replaces the trek identified by t.Slug.
func Upsert(ctx context.Context, tx pgx.Tx, t Trek) (*Trek, error) {
	payCfg, err := json.Marshal(t.Payment)
	if err != nil {
		return nil, err
	}
	fields := t.CustomFields
	if fields == nil {
		fields = []CustomField{}
	}
	fieldsRaw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}

	q := `
INSERT INTO treks (slug, name, region, price, currency, start_date, duration_days, payment_config, custom_fields, active)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (slug) DO UPDATE SET
  name = EXCLUDED.name,
  region = EXCLUDED.region,
  price = EXCLUDED.price,
  currency = EXCLUDED.currency,
  start_date = EXCLUDED.start_date,
  duration_days = EXCLUDED.duration_days,
  payment_config = EXCLUDED.payment_config,
  custom_fields = EXCLUDED.custom_fields,
  active = EXCLUDED.active,
  updated_at = NOW()
RETURNING ` + trekColumns
	return scanTrek(tx.QueryRow(ctx, q,
		t.Slug, t.Name, t.Region, t.Price.StringFixed(2), t.Currency, t.StartDate, t.DurationDays,
		string(payCfg), string(fieldsRaw), t.Active,
	))
}
