package wardmock

import (
	"context"
	"sync"

	domain "civic-backoffice/internal/domain/ward"
)

var (
	_ domain.Repository        = (*Repo)(nil)
	_ domain.CounterRepository = (*Counters)(nil)
)

// Repo serves wards from an in-memory map keyed by code. GetByCodeFn, when
// set, takes precedence.
type Repo struct {
	Wards       map[string]*domain.Ward
	GetByCodeFn func(ctx context.Context, code string) (*domain.Ward, error)
	UpsertFn    func(ctx context.Context, w *domain.Ward) error
}

// WithWards builds a Repo holding active wards with ids 1..n in argument order.
func WithWards(codes ...string) *Repo {
	r := &Repo{Wards: map[string]*domain.Ward{}}
	for i, c := range codes {
		r.Wards[c] = &domain.Ward{ID: uint64(i + 1), Code: c, Name: c, Active: true}
	}
	return r
}

func (m *Repo) GetByCode(ctx context.Context, code string) (*domain.Ward, error) {
	if m.GetByCodeFn != nil {
		return m.GetByCodeFn(ctx, code)
	}
	w, ok := m.Wards[code]
	if !ok || !w.Active {
		return nil, domain.ErrUnknownScope
	}
	cp := *w
	return &cp, nil
}

func (m *Repo) Upsert(ctx context.Context, w *domain.Ward) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, w)
	}
	if m.Wards == nil {
		m.Wards = map[string]*domain.Ward{}
	}
	cp := *w
	m.Wards[w.Code] = &cp
	return nil
}

func (m *Repo) List(ctx context.Context) ([]domain.Ward, error) {
	out := make([]domain.Ward, 0, len(m.Wards))
	for _, w := range m.Wards {
		out = append(out, *w)
	}
	return out, nil
}

// Counters is an in-memory counter store. NextFn, when set, takes precedence.
type Counters struct {
	mu     sync.Mutex
	values map[uint64]int64
	NextFn func(ctx context.Context, wardID uint64) (int64, error)
	Calls  int
}

func (m *Counters) Next(ctx context.Context, wardID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.NextFn != nil {
		return m.NextFn(ctx, wardID)
	}
	if m.values == nil {
		m.values = map[uint64]int64{}
	}
	m.values[wardID]++
	return m.values[wardID], nil
}

func (m *Counters) Current(ctx context.Context, wardID uint64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[wardID], nil
}
