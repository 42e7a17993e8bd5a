package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultCode is used when the host supplies no session code.
const DefaultCode = "default"

// Registry keeps recently used machines in memory and reopens evicted ones
// from the store.
type Registry struct {
	mu       sync.Mutex
	store    Store
	machines *cache.Cache
	opts     []Option
}

func NewRegistry(store Store, idle time.Duration, opts ...Option) *Registry {
	return &Registry{
		store:    store,
		machines: cache.New(idle, 2*idle),
		opts:     opts,
	}
}

func (r *Registry) Get(ctx context.Context, code string) *Machine {
	if code == "" {
		code = DefaultCode
	}
	if m, ok := r.cached(code); ok {
		return m
	}

	// Loading may hit the store, so it runs unlocked. A racing Get for the
	// same code keeps whichever machine was cached first.
	m := Open(ctx, code, r.store, r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.machines.Get(code); ok {
		r.machines.SetDefault(code, v)
		return v.(*Machine)
	}
	r.machines.SetDefault(code, m)
	return m
}

func (r *Registry) cached(code string) (*Machine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.machines.Get(code)
	if !ok {
		return nil, false
	}
	r.machines.SetDefault(code, v)
	return v.(*Machine), true
}

// Len counts the machines currently held in memory.
func (r *Registry) Len() int {
	return r.machines.ItemCount()
}
