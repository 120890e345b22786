package transactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrConflict          = errors.New("transaction already exists")
	ErrAmountOutOfRange  = errors.New("transaction amount out of range")
	QueryTimeoutDuration = time.Second * 5
)

// AmountScale is the number of decimal places the amount column keeps.
const AmountScale = 2

// MaxAmount is the largest value NUMERIC(10, 2) can hold.
var MaxAmount = decimal.New(9999999999, -AmountScale)

// CheckAmount rejects amounts the amount column cannot hold once rounded to
// AmountScale.
func CheckAmount(d decimal.Decimal) error {
	if d.IsNegative() || d.Round(AmountScale).GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: %s", ErrAmountOutOfRange, d.String())
	}
	return nil
}

// Status mirrors the transaction_status enum. Providers may report values
// outside this set; those are never written.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusFailed    Status = "failed"
	StatusAbandoned Status = "abandoned"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed, StatusAbandoned:
		return true
	}
	return false
}

type Transaction struct {
	ID            int64           `json:"id"`
	Reference     string          `json:"reference"`
	Amount        decimal.Decimal `json:"amount" swaggertype:"number"` // major currency units
	Status        Status          `json:"status"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Fields are the mutable columns of a transaction. Reference and the audit
// timestamps are owned by the store.
type Fields struct {
	Amount        decimal.Decimal
	Status        Status
	CustomerName  string
	CustomerEmail string
}

// Cursor is a keyset position in (created_at, id) order. The zero Cursor
// sorts before every row.
type Cursor struct {
	CreatedAt time.Time
	ID        int64
}

func CursorOf(t *Transaction) Cursor { return Cursor{CreatedAt: t.CreatedAt, ID: t.ID} }

func (c Cursor) IsZero() bool { return c.CreatedAt.IsZero() && c.ID == 0 }

// Before reports whether c sorts strictly before o.
func (c Cursor) Before(o Cursor) bool {
	if c.CreatedAt.Equal(o.CreatedAt) {
		return c.ID < o.ID
	}
	return c.CreatedAt.Before(o.CreatedAt)
}

type Store interface {
	FindByReference(ctx context.Context, reference string) (*Transaction, error)
	// Upsert creates the row for reference or overwrites its mutable fields
	// in a single atomic statement.
	Upsert(ctx context.Context, reference string, f Fields) (*Transaction, error)
	// CreatePending inserts a row only if none exists for reference. The
	// returned bool reports whether a row was inserted.
	CreatePending(ctx context.Context, reference string, f Fields) (*Transaction, bool, error)
	// List filters by status when status is non-empty, newest first, and
	// returns the total count for pagination.
	List(ctx context.Context, status Status, limit, offset int) ([]*Transaction, int, error)
	// ListPendingAfter returns up to limit pending rows positioned after
	// cursor, oldest first.
	ListPendingAfter(ctx context.Context, after Cursor, limit int) ([]*Transaction, error)
}
