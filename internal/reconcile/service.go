package reconcile

import (
	"context"
	"fmt"
	"sync"

	"paygate/internal/domain/transactions"
	"paygate/internal/metrics"
	"paygate/internal/payments"

	"go.uber.org/zap"
)

type Service struct {
	gateway payments.Gateway
	store   transactions.Store
	logger  *zap.SugaredLogger

	sweepMu sync.Mutex
	cursor  transactions.Cursor // where the next SweepPending resumes
}

func NewService(gateway payments.Gateway, store transactions.Store, logger *zap.SugaredLogger) *Service {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{gateway: gateway, store: store, logger: logger}
}

type Outcome struct {
	Result Result
	// Transaction is the row written by this call, nil when nothing was written.
	Transaction *transactions.Transaction
}

// Verify asks the provider for the authoritative state of reference and
// aligns the local record with it.
func (s *Service) Verify(ctx context.Context, reference string) (*Outcome, error) {
	res, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		metrics.ObserveReconciliation("", "failed")
		return nil, err
	}

	result := Normalize(res)
	tx, err := s.Apply(ctx, reference, result)
	if err != nil {
		return nil, err
	}
	return &Outcome{Result: result, Transaction: tx}, nil
}

// Apply upserts the transaction for reference when the provider reports
// success and an amount. Every other result leaves the store untouched and
// returns a nil transaction.
func (s *Service) Apply(ctx context.Context, reference string, r Result) (*transactions.Transaction, error) {
	status := r.StatusString()

	if status != string(transactions.StatusSuccess) {
		s.logger.Infow("verification not successful, nothing recorded", "reference", reference, "status", status)
		metrics.ObserveReconciliation(status, "skipped")
		return nil, nil
	}

	if r.Amount == nil {
		s.logger.Warnw("successful verification without amount, nothing recorded", "reference", reference)
		metrics.ObserveReconciliation(status, "skipped")
		return nil, nil
	}

	amount := r.Amount.Round(transactions.AmountScale)
	if !amount.Equal(*r.Amount) {
		s.logger.Warnw("verified amount has sub-minor precision, rounding", "reference", reference,
			"amount", r.Amount.String(), "stored", amount.String())
	}

	tx, err := s.store.Upsert(ctx, reference, transactions.Fields{
		Amount:        amount,
		Status:        transactions.StatusSuccess,
		CustomerName:  deref(r.Name),
		CustomerEmail: deref(r.Email),
	})
	if err != nil {
		metrics.ObserveReconciliation(status, "failed")
		return nil, fmt.Errorf("record verified transaction %s: %w", reference, err)
	}

	s.logger.Infow("transaction reconciled", "reference", reference, "amount", tx.Amount.String())
	metrics.ObserveReconciliation(status, "upserted")
	return tx, nil
}
