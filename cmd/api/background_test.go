package main

import (
	"context"
	"testing"
	"time"

	"paygate/internal/domain/transactions"

	"github.com/shopspring/decimal"
)

func TestSweepPendingRecordsVerifiedRows(t *testing.T) {
	gw := &stubGateway{verifyBody: `{"status":true,"message":"Verification successful","data":{"status":"success","amount":50000,"customer":{"email":"s@x.com"},"metadata":{"name":"S"}}}`}
	app := newTestApplication(t, gw)
	app.config.reconcile.batch = 10

	ctx := context.Background()
	if _, _, err := app.store.Transactions.CreatePending(ctx, "pending-1", transactions.Fields{Amount: decimal.NewFromInt(500)}); err != nil {
		t.Fatalf("CreatePending: %v", err)
	}

	app.sweepPending(ctx)

	row, err := app.store.Transactions.FindByReference(ctx, "pending-1")
	if err != nil {
		t.Fatalf("FindByReference: %v", err)
	}
	if row.Status != transactions.StatusSuccess || row.CustomerEmail != "s@x.com" {
		t.Fatalf("row not reconciled: %+v", row)
	}
	if len(gw.verifyCalls) != 1 {
		t.Fatalf("expected 1 verify call, got %d", len(gw.verifyCalls))
	}
}

func TestReconcilePendingEveryStopsWhenContextEnds(t *testing.T) {
	app := newTestApplication(t, &stubGateway{})
	app.config.reconcile.batch = 10

	ctx, cancel := context.WithCancel(context.Background())
	done := app.reconcilePendingEvery(ctx, time.Hour)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep loop did not stop after cancel")
	}
}
