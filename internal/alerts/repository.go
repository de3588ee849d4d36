package alerts

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Repository stores price alerts. Implementations must be safe for
// concurrent use; MarkTriggered and Rearm must be atomic per alert.
type Repository interface {
	// Save inserts the alert when ID is 0, assigning a fresh id, and
	// replaces the stored alert otherwise. Replacing an unknown id returns
	// ErrAlertNotFound.
	Save(ctx context.Context, alert *PriceAlert) error

	// FindByID returns ErrAlertNotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (PriceAlert, error)

	FindByUser(ctx context.Context, userID string) ([]PriceAlert, error)
	FindActiveByProduct(ctx context.Context, productID string) ([]PriceAlert, error)
	FindActive(ctx context.Context) ([]PriceAlert, error)

	// Delete reports whether an alert was removed.
	Delete(ctx context.Context, id int64) (bool, error)

	ListAll(ctx context.Context) ([]PriceAlert, error)

	// MarkTriggered triggers the alert only if it is still armed and its
	// target is at or above price. It reports whether the alert changed.
	MarkTriggered(ctx context.Context, id int64, price float64, at time.Time) (bool, error)

	// Rearm sets a new target and arms the alert regardless of its state.
	Rearm(ctx context.Context, id int64, target float64) (PriceAlert, error)
}

// MemoryRepository is an in-process Repository. Results are copies;
// mutating them does not affect stored alerts.
type MemoryRepository struct {
	mu     sync.RWMutex
	alerts map[int64]PriceAlert
	nextID atomic.Int64
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{alerts: make(map[int64]PriceAlert)}
}

var _ Repository = (*MemoryRepository)(nil)

func (r *MemoryRepository) Save(_ context.Context, alert *PriceAlert) error {
	if alert.ID == 0 {
		alert.ID = r.nextID.Add(1)
		r.mu.Lock()
		r.alerts[alert.ID] = alert.clone()
		r.mu.Unlock()
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[alert.ID]; !ok {
		return ErrAlertNotFound
	}
	r.alerts[alert.ID] = alert.clone()
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id int64) (PriceAlert, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.alerts[id]
	if !ok {
		return PriceAlert{}, ErrAlertNotFound
	}
	return a.clone(), nil
}

func (r *MemoryRepository) FindByUser(_ context.Context, userID string) ([]PriceAlert, error) {
	return r.filter(func(a PriceAlert) bool { return a.UserID == userID }), nil
}

func (r *MemoryRepository) FindActiveByProduct(_ context.Context, productID string) ([]PriceAlert, error) {
	return r.filter(func(a PriceAlert) bool { return a.Active && a.ProductID == productID }), nil
}

func (r *MemoryRepository) FindActive(_ context.Context) ([]PriceAlert, error) {
	return r.filter(func(a PriceAlert) bool { return a.Active }), nil
}

func (r *MemoryRepository) ListAll(_ context.Context) ([]PriceAlert, error) {
	return r.filter(func(PriceAlert) bool { return true }), nil
}

func (r *MemoryRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.alerts[id]; !ok {
		return false, nil
	}
	delete(r.alerts, id)
	return true, nil
}

func (r *MemoryRepository) MarkTriggered(_ context.Context, id int64, price float64, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok || !a.Active || price > a.TargetPrice {
		return false, nil
	}
	a.Active = false
	a.TriggeredAt = &at
	r.alerts[id] = a
	return true, nil
}

func (r *MemoryRepository) Rearm(_ context.Context, id int64, target float64) (PriceAlert, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.alerts[id]
	if !ok {
		return PriceAlert{}, ErrAlertNotFound
	}
	a.TargetPrice = target
	a.Active = true
	a.TriggeredAt = nil
	r.alerts[id] = a
	return a, nil
}

// filter returns matching alerts ordered by id.
func (r *MemoryRepository) filter(keep func(PriceAlert) bool) []PriceAlert {
	r.mu.RLock()
	out := make([]PriceAlert, 0)
	for _, a := range r.alerts {
		if keep(a) {
			out = append(out, a.clone())
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
