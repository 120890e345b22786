package reconcile

import (
	"context"
	"encoding/json"
	"errors"

	"paygate/internal/domain/transactions"
	"paygate/internal/payments"
)

// fakeGateway answers Verify from a canned JSON body, decoded the same way the
// real client decodes provider responses.
type fakeGateway struct {
	body  string
	err   error
	calls []string
}

func (f *fakeGateway) Initialize(ctx context.Context, req payments.InitializeRequest) (*payments.InitializeResponse, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeGateway) Verify(ctx context.Context, reference string) (*payments.VerifyResponse, error) {
	f.calls = append(f.calls, reference)
	if f.err != nil {
		return nil, f.err
	}
	var res payments.VerifyResponse
	if err := json.Unmarshal([]byte(f.body), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

type failingStore struct {
	transactions.Store
	err error
}

func (f failingStore) Upsert(ctx context.Context, reference string, fields transactions.Fields) (*transactions.Transaction, error) {
	return nil, f.err
}
