package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/safewarmer/internal/domain"
)

type key struct {
	safe domain.Safe
	kind domain.EndpointKind
}

type Store struct {
	mu     sync.RWMutex
	latest map[key]domain.SweepResult
	order  []key
}

func New() *Store {
	return &Store{
		latest: make(map[key]domain.SweepResult),
		order:  make([]key, 0, 128),
	}
}

func (m *Store) Append(ctx context.Context, r *domain.SweepResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.CheckedAt.IsZero() {
		r.CheckedAt = time.Now().UTC()
	}
	k := key{safe: r.Safe, kind: r.Kind}
	cur, ok := m.latest[k]
	if !ok {
		m.order = append(m.order, k)
	} else if cur.CheckedAt.After(r.CheckedAt) {
		return nil
	}
	m.latest[k] = *r
	return nil
}

func (m *Store) Latest(ctx context.Context) ([]domain.SweepResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.SweepResult, 0, len(m.order))
	for _, k := range m.order {
		out = append(out, m.latest[k])
	}
	return out, nil
}
