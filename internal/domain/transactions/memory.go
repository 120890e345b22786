package transactions

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps transactions in process memory. It backs the service when
// no database is configured and stands in for Postgres in tests.
type MemoryStore struct {
	mu     sync.Mutex
	nextID int64
	rows   map[string]*Transaction
	now    func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]*Transaction),
		now:  time.Now,
	}
}

func (m *MemoryStore) FindByReference(ctx context.Context, reference string) (*Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.rows[reference]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryStore) Upsert(ctx context.Context, reference string, f Fields) (*Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := CheckAmount(f.Amount); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	t, ok := m.rows[reference]
	if !ok {
		m.nextID++
		t = &Transaction{ID: m.nextID, Reference: reference, CreatedAt: now}
		m.rows[reference] = t
	}
	t.Amount = f.Amount.Round(AmountScale)
	t.Status = f.Status
	t.CustomerName = f.CustomerName
	t.CustomerEmail = f.CustomerEmail
	t.UpdatedAt = now

	cp := *t
	return &cp, nil
}

func (m *MemoryStore) CreatePending(ctx context.Context, reference string, f Fields) (*Transaction, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	if err := CheckAmount(f.Amount); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.rows[reference]; ok {
		cp := *t
		return &cp, false, nil
	}

	now := m.now()
	m.nextID++
	t := &Transaction{
		ID:            m.nextID,
		Reference:     reference,
		Amount:        f.Amount.Round(AmountScale),
		Status:        StatusPending,
		CustomerName:  f.CustomerName,
		CustomerEmail: f.CustomerEmail,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.rows[reference] = t

	cp := *t
	return &cp, true, nil
}

func (m *MemoryStore) List(ctx context.Context, status Status, limit, offset int) ([]*Transaction, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	matched := make([]*Transaction, 0, len(m.rows))
	for _, t := range m.rows {
		if status != "" && t.Status != status {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (m *MemoryStore) ListPendingAfter(ctx context.Context, after Cursor, limit int) ([]*Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*Transaction
	for _, t := range m.rows {
		if t.Status != StatusPending || !after.Before(CursorOf(t)) {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		return CursorOf(matched[i]).Before(CursorOf(matched[j]))
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Len reports the number of stored transactions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

var _ Store = (*MemoryStore)(nil)
