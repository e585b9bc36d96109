package orders

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists orders. Implementations only append; there is no update
// or delete.
type Store interface {
	// EnsureSchema verifies or creates the backing table. It is called once
	// at startup and its failure is fatal.
	EnsureSchema(ctx context.Context) error
	// Create inserts o and fills in its ID and CreatedAt.
	Create(ctx context.Context, o *Order) error
	// Get returns (nil, nil) when no order has the given id.
	Get(ctx context.Context, id string) (*Order, error)
	Health(ctx context.Context) (HealthStatus, error)
}

// MemoryStore keeps orders in process memory. It backs ORDER_STORE=memory
// for local development and the handler tests.
type MemoryStore struct {
	mu      sync.Mutex
	orders  map[string]Order
	nowFunc func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		orders:  map[string]Order{},
		nowFunc: time.Now,
	}
}

func (m *MemoryStore) EnsureSchema(ctx context.Context) error { return nil }

func (m *MemoryStore) Create(ctx context.Context, o *Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = uuid.NewString()
	o.CreatedAt = m.nowFunc().UTC()
	m.orders[o.ID] = *o
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *MemoryStore) Health(ctx context.Context) (HealthStatus, error) {
	return HealthStatus{Now: m.nowFunc().UTC(), Version: "memory"}, nil
}

// Len returns the number of stored orders.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}
