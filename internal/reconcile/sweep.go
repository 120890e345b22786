package reconcile

import (
	"context"

	"paygate/internal/domain/transactions"
)

const sweepPageSize = 100

type Summary struct {
	Checked   int
	Recorded  int
	Unchanged int
	Failed    int
}

// ReportFunc receives the outcome of each reference checked by a sweep.
// Exactly one of out and err is non-nil.
type ReportFunc func(reference string, out *Outcome, err error)

// SweepPending verifies up to limit pending transactions, oldest first,
// resuming where the previous sweep on this Service stopped. At the end of
// the pending set it wraps around, so rows the provider keeps reporting as
// non-successful cannot starve the rest. A failed reference is reported and
// counted; it does not stop the sweep.
func (s *Service) SweepPending(ctx context.Context, limit int, report ReportFunc) (Summary, error) {
	s.sweepMu.Lock()
	defer s.sweepMu.Unlock()

	refs, next, err := s.pendingBatch(ctx, s.cursor, limit)
	if err != nil {
		return Summary{}, err
	}
	s.cursor = next

	var sum Summary
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Checked++

		out, err := s.Verify(ctx, ref)
		switch {
		case err != nil:
			sum.Failed++
			s.logger.Warnw("pending verification failed", "reference", ref, "error", err)
		case out.Transaction != nil:
			sum.Recorded++
		default:
			sum.Unchanged++
		}
		if report != nil {
			report(ref, out, err)
		}
	}
	return sum, nil
}

// pendingBatch snapshots up to limit pending references starting after
// start, wrapping to the oldest row once and stopping before it reaches
// start again. References are collected before any verification so rows
// that leave the pending set do not move the keyset underneath the sweep.
func (s *Service) pendingBatch(ctx context.Context, start transactions.Cursor, limit int) ([]string, transactions.Cursor, error) {
	var (
		refs    []string
		cur     = start
		last    = start
		wrapped = start.IsZero()
	)

	for len(refs) < limit {
		want := min(sweepPageSize, limit-len(refs))
		page, err := s.store.ListPendingAfter(ctx, cur, want)
		if err != nil {
			return nil, start, err
		}

		for _, t := range page {
			c := transactions.CursorOf(t)
			if wrapped && !start.IsZero() && start.Before(c) {
				return refs, last, nil
			}
			refs = append(refs, t.Reference)
			last, cur = c, c
		}

		if len(page) < want {
			if wrapped {
				break
			}
			wrapped = true
			cur = transactions.Cursor{}
		}
	}
	return refs, last, nil
}
