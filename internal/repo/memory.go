package repo

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemorySnapshotRepository keeps snapshots in process memory; they expire
// after ttl and are lost on restart.
type MemorySnapshotRepository struct {
	items *cache.Cache
}

func NewMemorySnapshotRepository(ttl time.Duration) *MemorySnapshotRepository {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &MemorySnapshotRepository{items: cache.New(ttl, 10*time.Minute)}
}

func (r *MemorySnapshotRepository) Save(_ context.Context, code string, snapshot []byte) error {
	r.items.SetDefault(code, append([]byte(nil), snapshot...))
	return nil
}

func (r *MemorySnapshotRepository) Load(_ context.Context, code string) ([]byte, error) {
	v, ok := r.items.Get(code)
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v.([]byte)...), nil
}

func (r *MemorySnapshotRepository) Delete(_ context.Context, code string) error {
	r.items.Delete(code)
	return nil
}

func (r *MemorySnapshotRepository) Close() error {
	r.items.Flush()
	return nil
}
