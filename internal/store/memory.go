package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/farxc/mgnrega-goa/internal/mgnrega/types"
)

// MemoryStore keeps records in process. It never fails.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[types.Key]types.Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[types.Key]types.Record),
		now:     time.Now,
	}
}

func (m *MemoryStore) Upsert(ctx context.Context, record *types.Record) error {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	row := *record
	row.CreatedAt = now
	if existing, ok := m.records[row.Key()]; ok {
		row.CreatedAt = existing.CreatedAt
	}
	row.UpdatedAt = now
	m.records[row.Key()] = row

	record.UpdatedAt = now
	return nil
}

func (m *MemoryStore) QueryAll(ctx context.Context, limit int) ([]types.Record, error) {
	if limit <= 0 || limit > MaxQueryAll {
		limit = MaxQueryAll
	}
	out := m.snapshot(func(types.Record) bool { return true })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) QueryByDistrict(ctx context.Context, district string) ([]types.Record, error) {
	needle := strings.ToLower(district)
	return m.snapshot(func(r types.Record) bool {
		return strings.Contains(strings.ToLower(r.District), needle)
	}), nil
}

func (m *MemoryStore) DistinctDistricts(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	names := make([]string, 0, len(m.records))
	for k := range m.records {
		names = append(names, k.District)
	}
	m.mu.RUnlock()
	return CleanDistricts(names), nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

func (m *MemoryStore) snapshot(keep func(types.Record) bool) []types.Record {
	m.mu.RLock()
	out := make([]types.Record, 0, len(m.records))
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	m.mu.RUnlock()
	SortByRecency(out)
	return out
}
