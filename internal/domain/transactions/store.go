package transactions

import (
	"context"
	"errors"
	"fmt"

	"paygate/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// numericOutOfRange is SQLSTATE 22003.
const numericOutOfRange = "22003"

func mapAmountError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == numericOutOfRange {
		return fmt.Errorf("%w: %s", ErrAmountOutOfRange, pgErr.Message)
	}
	return err
}

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const selectColumns = `id, reference, amount, status::text, customer_name, customer_email, created_at, updated_at`

func scanTransaction(row pgx.Row) (*Transaction, error) {
	var t Transaction
	if err := row.Scan(
		&t.ID, &t.Reference, &t.Amount, &t.Status, &t.CustomerName, &t.CustomerEmail,
		&t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *Repository) FindByReference(ctx context.Context, reference string) (*Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	t, err := scanTransaction(r.q.QueryRow(ctx, `
		SELECT `+selectColumns+`
		FROM transactions WHERE reference=$1
	`, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return t, nil
}

func (r *Repository) Upsert(ctx context.Context, reference string, f Fields) (*Transaction, error) {
	if err := CheckAmount(f.Amount); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	t, err := scanTransaction(r.q.QueryRow(ctx, `
		INSERT INTO transactions (reference, amount, status, customer_name, customer_email)
		VALUES ($1, $2::numeric, $3::transaction_status, $4, $5)
		ON CONFLICT (reference) DO UPDATE
		   SET amount=EXCLUDED.amount,
		       status=EXCLUDED.status,
		       customer_name=EXCLUDED.customer_name,
		       customer_email=EXCLUDED.customer_email,
		       updated_at=now()
		RETURNING `+selectColumns+`
	`, reference, f.Amount.Round(AmountScale), string(f.Status), f.CustomerName, f.CustomerEmail))
	if err != nil {
		return nil, fmt.Errorf("upsert transaction: %w", mapAmountError(err))
	}
	return t, nil
}

// CreatePending always writes status pending regardless of f.Status.
func (r *Repository) CreatePending(ctx context.Context, reference string, f Fields) (*Transaction, bool, error) {
	if err := CheckAmount(f.Amount); err != nil {
		return nil, false, err
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	t, err := scanTransaction(r.q.QueryRow(ctx, `
		INSERT INTO transactions (reference, amount, status, customer_name, customer_email)
		VALUES ($1, $2::numeric, 'pending', $3, $4)
		ON CONFLICT (reference) DO NOTHING
		RETURNING `+selectColumns+`
	`, reference, f.Amount.Round(AmountScale), f.CustomerName, f.CustomerEmail))
	if err == nil {
		return t, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("create pending transaction: %w", mapAmountError(err))
	}

	// DO NOTHING returns no row when the reference already exists.
	existing, err := r.FindByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *Repository) List(ctx context.Context, status Status, limit, offset int) ([]*Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.q.Query(ctx, `
SELECT `+selectColumns+`, COUNT(*) OVER() AS total_count
FROM transactions
WHERE ($1::text = '' OR status::text = $1::text)
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3
`, string(status), limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Transaction
		total int
	)
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(
			&t.ID, &t.Reference, &t.Amount, &t.Status, &t.CustomerName, &t.CustomerEmail,
			&t.CreatedAt, &t.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *Repository) ListPendingAfter(ctx context.Context, after Cursor, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := r.q.Query(ctx, `
SELECT `+selectColumns+`
FROM transactions
WHERE status = 'pending'
  AND (created_at, id) > ($1::timestamptz, $2::bigint)
ORDER BY created_at ASC, id ASC
LIMIT $3
`, after.CreatedAt, after.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending transactions: %w", err)
	}
	defer rows.Close()

	var out []*Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

var _ Store = (*Repository)(nil)
