package reconcile

import (
	"context"
	"errors"
	"testing"

	"paygate/internal/domain/transactions"
	"paygate/internal/payments"

	"github.com/shopspring/decimal"
)

const successBody = `{"status":true,"message":"Verification successful","data":{
	"status":"success","amount":100000,"gateway_response":"Approved",
	"customer":{"email":"e@x.com"},"metadata":{"name":"N"}}}`

func TestVerifySuccessCreatesTransaction(t *testing.T) {
	gw := &fakeGateway{body: successBody}
	store := transactions.NewMemoryStore()
	svc := NewService(gw, store, nil)

	out, err := svc.Verify(context.Background(), "R")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}

	r := out.Result
	if r.StatusString() != "success" || deref(r.Email) != "e@x.com" || deref(r.Name) != "N" || deref(r.Message) != "Approved" {
		t.Fatalf("unexpected result %+v", r)
	}
	if r.Amount == nil || !r.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected amount 1000, got %v", r.Amount)
	}

	if store.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", store.Len())
	}
	row, err := store.FindByReference(context.Background(), "R")
	if err != nil {
		t.Fatalf("FindByReference: %v", err)
	}
	if !row.Amount.Equal(decimal.NewFromInt(1000)) || row.Status != transactions.StatusSuccess {
		t.Fatalf("unexpected row %+v", row)
	}
	if out.Transaction == nil || out.Transaction.Reference != "R" {
		t.Fatalf("expected written transaction in outcome, got %+v", out.Transaction)
	}
	if len(gw.calls) != 1 || gw.calls[0] != "R" {
		t.Fatalf("gateway called with %v", gw.calls)
	}
}

func TestVerifyTwiceKeepsOneRowWithLatestValues(t *testing.T) {
	gw := &fakeGateway{body: successBody}
	store := transactions.NewMemoryStore()
	svc := NewService(gw, store, nil)
	ctx := context.Background()

	if _, err := svc.Verify(ctx, "R"); err != nil {
		t.Fatalf("first verify: %v", err)
	}

	gw.body = `{"data":{"status":"success","amount":250050,"customer":{"email":"z@x.com"},"metadata":{"name":"Z"}}}`
	if _, err := svc.Verify(ctx, "R"); err != nil {
		t.Fatalf("second verify: %v", err)
	}

	if store.Len() != 1 {
		t.Fatalf("expected exactly 1 row, got %d", store.Len())
	}
	row, _ := store.FindByReference(ctx, "R")
	if !row.Amount.Equal(decimal.RequireFromString("2500.50")) || row.CustomerEmail != "z@x.com" || row.CustomerName != "Z" {
		t.Fatalf("row does not hold second response: %+v", row)
	}
}

func TestVerifyUpdatesPendingRow(t *testing.T) {
	store := transactions.NewMemoryStore()
	ctx := context.Background()
	pending, _, err := store.CreatePending(ctx, "R", transactions.Fields{Amount: decimal.NewFromInt(1000), CustomerEmail: "e@x.com"})
	if err != nil {
		t.Fatalf("create pending: %v", err)
	}

	svc := NewService(&fakeGateway{body: successBody}, store, nil)
	out, err := svc.Verify(ctx, "R")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expected pending row to be updated in place, got %d rows", store.Len())
	}
	if out.Transaction.ID != pending.ID || out.Transaction.Status != transactions.StatusSuccess {
		t.Fatalf("pending row not promoted: %+v", out.Transaction)
	}
}

func TestVerifyNonSuccessDoesNotWrite(t *testing.T) {
	for _, status := range []string{"failed", "abandoned", "pending", "reversed"} {
		t.Run(status, func(t *testing.T) {
			store := transactions.NewMemoryStore()
			body := `{"data":{"status":"` + status + `","amount":5000,"customer":{"email":"e@x.com"},"gateway_response":"Declined"}}`
			svc := NewService(&fakeGateway{body: body}, store, nil)

			out, err := svc.Verify(context.Background(), "R")
			if err != nil {
				t.Fatalf("Verify returned error: %v", err)
			}
			if out.Result.StatusString() != status {
				t.Fatalf("status not passed through: %q", out.Result.StatusString())
			}
			if out.Transaction != nil || store.Len() != 0 {
				t.Fatalf("non-success status %q wrote to the store", status)
			}
		})
	}
}

func TestVerifyMissingDataReturnsEmptyResult(t *testing.T) {
	store := transactions.NewMemoryStore()
	svc := NewService(&fakeGateway{body: `{"status":true,"message":"ok"}`}, store, nil)

	out, err := svc.Verify(context.Background(), "R")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	r := out.Result
	if r.Status != nil || r.Email != nil || r.Name != nil || r.Amount != nil || r.Message != nil {
		t.Fatalf("expected all fields absent, got %+v", r)
	}
	if store.Len() != 0 {
		t.Fatal("store written for empty response")
	}
}

func TestVerifySuccessWithoutAmountIsNotPersisted(t *testing.T) {
	store := transactions.NewMemoryStore()
	body := `{"data":{"status":"success","customer":{"email":"e@x.com"},"metadata":{"name":"N"}}}`
	svc := NewService(&fakeGateway{body: body}, store, nil)

	out, err := svc.Verify(context.Background(), "R")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if out.Result.Amount != nil {
		t.Fatalf("expected absent amount, got %v", out.Result.Amount)
	}
	if out.Result.StatusString() != "success" {
		t.Fatalf("expected success status in result")
	}
	if store.Len() != 0 {
		t.Fatal("row persisted without an amount")
	}
}

func TestVerifyZeroAmountIsPersisted(t *testing.T) {
	store := transactions.NewMemoryStore()
	svc := NewService(&fakeGateway{body: `{"data":{"status":"success","amount":0}}`}, store, nil)

	out, err := svc.Verify(context.Background(), "R")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if out.Result.Amount == nil || !out.Result.Amount.IsZero() {
		t.Fatalf("expected zero amount, got %v", out.Result.Amount)
	}
	if store.Len() != 1 {
		t.Fatalf("zero amount should persist, rows=%d", store.Len())
	}
	row, _ := store.FindByReference(context.Background(), "R")
	if row.CustomerEmail != "" || row.CustomerName != "" {
		t.Fatalf("absent customer fields should store empty strings: %+v", row)
	}
}

func TestVerifyGatewayErrorDoesNotWrite(t *testing.T) {
	store := transactions.NewMemoryStore()
	gerr := payments.NewGatewayError("paystack verify: Transaction reference not found", nil)
	svc := NewService(&fakeGateway{err: gerr}, store, nil)

	_, err := svc.Verify(context.Background(), "R")
	if got, ok := payments.AsGatewayError(err); !ok || got != gerr {
		t.Fatalf("expected the gateway error back, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("store written after gateway failure")
	}
}

func TestVerifyStoreFailureSurfaces(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewService(&fakeGateway{body: successBody}, failingStore{err: boom}, nil)

	_, err := svc.Verify(context.Background(), "R")
	if !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestNormalizeNilResponse(t *testing.T) {
	r := Normalize(nil)
	if r.Status != nil || r.Amount != nil {
		t.Fatalf("expected empty result, got %+v", r)
	}
}

func TestNormalizeFractionalMinorUnits(t *testing.T) {
	amount := decimal.RequireFromString("12345")
	r := Normalize(&payments.VerifyResponse{Data: &payments.VerifyData{Amount: &amount}})
	if !r.Amount.Equal(decimal.RequireFromString("123.45")) {
		t.Fatalf("expected 123.45, got %s", r.Amount)
	}
}

func TestVerifyRoundsSubMinorAmountBeforeStoring(t *testing.T) {
	gw := &fakeGateway{body: `{"status":true,"data":{"status":"success","amount":12345.5,"customer":{"email":"e@x.com"}}}`}
	store := transactions.NewMemoryStore()
	svc := NewService(gw, store, nil)

	out, err := svc.Verify(context.Background(), "R")
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !out.Result.Amount.Equal(decimal.RequireFromString("123.455")) {
		t.Fatalf("expected normalized 123.455, got %s", out.Result.Amount)
	}

	row, err := store.FindByReference(context.Background(), "R")
	if err != nil {
		t.Fatalf("FindByReference: %v", err)
	}
	if !row.Amount.Equal(decimal.RequireFromString("123.46")) {
		t.Fatalf("expected stored 123.46, got %s", row.Amount)
	}
}

func TestVerifyAmountOutOfRangeIsNotStored(t *testing.T) {
	gw := &fakeGateway{body: `{"status":true,"data":{"status":"success","amount":10000000000}}`}
	store := transactions.NewMemoryStore()
	svc := NewService(gw, store, nil)

	_, err := svc.Verify(context.Background(), "R")
	if !errors.Is(err, transactions.ErrAmountOutOfRange) {
		t.Fatalf("expected ErrAmountOutOfRange, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("out of range amount was stored")
	}
}
