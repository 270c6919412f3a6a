package auditmock

import (
	"context"
	"sync"

	domain "civic-backoffice/internal/domain/audit"
)

var (
	_ domain.Sink       = (*Sink)(nil)
	_ domain.Repository = (*Repo)(nil)
)

// Sink keeps every recorded event in memory.
type Sink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *Sink) Record(_ context.Context, e domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

func (s *Sink) Events() []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Last returns the most recent event; ok is false when nothing was recorded.
func (s *Sink) Last() (domain.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.events) == 0 {
		return domain.Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// Repo is a function-backed audit repository. Created entries are kept
// unless CreateFn returns an error.
type Repo struct {
	mu       sync.Mutex
	Entries  []*domain.Entry
	CreateFn func(ctx context.Context, e *domain.Entry) error
	ListFn   func(ctx context.Context, f domain.Filter) ([]domain.Entry, int64, error)
}

func (m *Repo) Create(ctx context.Context, e *domain.Entry) error {
	if m.CreateFn != nil {
		if err := m.CreateFn(ctx, e); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *Repo) List(ctx context.Context, f domain.Filter) ([]domain.Entry, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Entry, 0, len(m.Entries))
	for _, e := range m.Entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (m *Repo) Snapshot() []*domain.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Entry, len(m.Entries))
	copy(out, m.Entries)
	return out
}
