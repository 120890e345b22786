package transactions

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"paygate/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// newTestRepository connects to TEST_DB_ADDR, applies the schema and returns
// a repository plus a reference prefix unique to the test.
func newTestRepository(t *testing.T) (*Repository, *pgxpool.Pool, string) {
	t.Helper()

	addr := os.Getenv("TEST_DB_ADDR")
	if addr == "" {
		t.Skip("TEST_DB_ADDR not set; skipping Postgres repository test")
	}

	ctx := context.Background()
	pool, err := db.New(ctx, db.Config{Addr: addr, MaxConns: 4})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("migrate: %v", err)
	}

	prefix := fmt.Sprintf("it-%d-", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM transactions WHERE reference LIKE $1`, prefix+"%")
		pool.Close()
	})
	return NewRepository(pool), pool, prefix
}

func countRows(t *testing.T, pool *pgxpool.Pool, reference string) int {
	t.Helper()
	var n int
	if err := pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM transactions WHERE reference=$1`, reference).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestRepositoryUpsertTwiceKeepsOneRow(t *testing.T) {
	repo, pool, prefix := newTestRepository(t)
	ctx := context.Background()
	ref := prefix + "R"

	first, err := repo.Upsert(ctx, ref, Fields{Amount: decimal.NewFromInt(1000), Status: StatusSuccess, CustomerName: "N", CustomerEmail: "e@x.com"})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, ref, Fields{Amount: decimal.RequireFromString("12.50"), Status: StatusSuccess, CustomerName: "M", CustomerEmail: "m@x.com"})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if n := countRows(t, pool, ref); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
	if second.ID != first.ID || !second.Amount.Equal(decimal.RequireFromString("12.5")) || second.CustomerEmail != "m@x.com" {
		t.Fatalf("row not overwritten: %+v", second)
	}
	if second.UpdatedAt.Before(first.UpdatedAt) {
		t.Fatal("updated_at moved backwards")
	}
}

func TestRepositoryCreatePendingThenUpsert(t *testing.T) {
	repo, pool, prefix := newTestRepository(t)
	ctx := context.Background()
	ref := prefix + "P"

	pending, created, err := repo.CreatePending(ctx, ref, Fields{Amount: decimal.NewFromInt(50), CustomerName: "P", CustomerEmail: "p@x.com"})
	if err != nil || !created {
		t.Fatalf("CreatePending: created=%v err=%v", created, err)
	}
	if pending.Status != StatusPending {
		t.Fatalf("expected pending, got %s", pending.Status)
	}

	again, created, err := repo.CreatePending(ctx, ref, Fields{Amount: decimal.NewFromInt(99)})
	if err != nil || created || !again.Amount.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("CreatePending on existing row: created=%v amount=%v err=%v", created, again, err)
	}

	done, err := repo.Upsert(ctx, ref, Fields{Amount: decimal.NewFromInt(50), Status: StatusSuccess, CustomerName: "P", CustomerEmail: "p@x.com"})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if done.ID != pending.ID || done.Status != StatusSuccess {
		t.Fatalf("pending row not updated in place: %+v", done)
	}
	if n := countRows(t, pool, ref); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestRepositoryFindByReferenceNotFound(t *testing.T) {
	repo, _, prefix := newTestRepository(t)
	if _, err := repo.FindByReference(context.Background(), prefix+"missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryRoundsAndBoundsAmounts(t *testing.T) {
	repo, _, prefix := newTestRepository(t)
	ctx := context.Background()

	row, err := repo.Upsert(ctx, prefix+"frac", Fields{Amount: decimal.RequireFromString("123.455"), Status: StatusSuccess})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if !row.Amount.Equal(decimal.RequireFromString("123.46")) {
		t.Fatalf("expected 123.46, got %s", row.Amount)
	}

	if _, err := repo.Upsert(ctx, prefix+"big", Fields{Amount: decimal.RequireFromString("100000000"), Status: StatusSuccess}); !errors.Is(err, ErrAmountOutOfRange) {
		t.Fatalf("expected ErrAmountOutOfRange, got %v", err)
	}
}

func TestRepositoryListPendingAfter(t *testing.T) {
	repo, _, prefix := newTestRepository(t)
	ctx := context.Background()

	var created []*Transaction
	for _, name := range []string{"a", "b", "c"} {
		tx, _, err := repo.CreatePending(ctx, prefix+name, Fields{Amount: decimal.NewFromInt(1)})
		if err != nil {
			t.Fatalf("CreatePending: %v", err)
		}
		created = append(created, tx)
	}

	// Resume just before our first row so rows left by other tests are skipped.
	start := CursorOf(created[0])
	start.ID--
	page, err := repo.ListPendingAfter(ctx, start, 2)
	if err != nil {
		t.Fatalf("ListPendingAfter: %v", err)
	}
	if len(page) != 2 || page[0].Reference != prefix+"a" || page[1].Reference != prefix+"b" {
		t.Fatalf("unexpected page %v", refsOf(page))
	}
}
