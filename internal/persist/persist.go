// Package persist stores the aggregate application snapshot. A local store is
// the source of truth for durability; an optional remote store mirrors every
// record so a second device can pick the data up.
package persist

import (
	"context"
	"log"
	"sync"

	"textilreinigung/backend/internal/domain"
)

// Partial names the collections touched by one save. A nil slice means the
// collection is unchanged; an empty non-nil slice means it is now empty.
type Partial struct {
	Orders      []domain.Order
	Payments    []domain.Payment
	Complaints  []domain.Complaint
	CashEntries []domain.CashEntry
}

// LocalStore persists the full snapshot. Implementations must write
// atomically so a crash never leaves a half-written snapshot behind.
type LocalStore interface {
	Load(ctx context.Context) (domain.PersistedState, error)
	Save(ctx context.Context, state domain.PersistedState) error
}

// RemoteStore mirrors individual collections record by record. All methods
// are best effort from the repository's point of view.
type RemoteStore interface {
	Load(ctx context.Context) (domain.PersistedState, error)
	SaveOrders(ctx context.Context, orders []domain.Order) error
	SavePayments(ctx context.Context, payments []domain.Payment) error
	SaveComplaints(ctx context.Context, complaints []domain.Complaint) error
	SaveCashEntries(ctx context.Context, entries []domain.CashEntry) error
}

// Repository merges the two stores into one load/save surface. It keeps the
// last known snapshot in memory so partial saves always write a complete
// document locally.
type Repository struct {
	mu     sync.Mutex
	local  LocalStore
	remote RemoteStore
	last   domain.PersistedState
}

// NewRepository creates a repository. remote may be nil, in which case only
// the local store is used.
func NewRepository(local LocalStore, remote RemoteStore) *Repository {
	return &Repository{local: local, remote: remote}
}

// Load reads the local snapshot, then overlays the remote one collection by
// collection. A remote collection wins only when it holds at least one
// record; an unreachable remote degrades silently to local data.
func (r *Repository) Load(ctx context.Context) (domain.PersistedState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged, err := r.local.Load(ctx)
	if err != nil {
		return domain.PersistedState{}, err
	}

	if r.remote != nil {
		remote, err := r.remote.Load(ctx)
		if err != nil {
			log.Printf("[persist] remote load failed, continuing with local data: %v", err)
		} else {
			if len(remote.Orders) > 0 {
				merged.Orders = remote.Orders
			}
			if len(remote.Payments) > 0 {
				merged.Payments = remote.Payments
			}
			if len(remote.Complaints) > 0 {
				merged.Complaints = remote.Complaints
			}
			if len(remote.CashEntries) > 0 {
				merged.CashEntries = remote.CashEntries
			}
		}
	}

	r.last = merged
	return merged, nil
}

// Save merges the partial into the last known snapshot, writes the full
// snapshot locally, then mirrors the touched collections remotely. Only the
// local write can fail the call; remote errors are logged and swallowed.
func (r *Repository) Save(ctx context.Context, p Partial) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p.Orders != nil {
		r.last.Orders = p.Orders
	}
	if p.Payments != nil {
		r.last.Payments = p.Payments
	}
	if p.Complaints != nil {
		r.last.Complaints = p.Complaints
	}
	if p.CashEntries != nil {
		r.last.CashEntries = p.CashEntries
	}

	if err := r.local.Save(ctx, r.last); err != nil {
		return err
	}

	if r.remote == nil {
		return nil
	}

	var wg sync.WaitGroup
	mirror := func(name string, save func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := save(); err != nil {
				log.Printf("[persist] remote mirror of %s failed: %v", name, err)
			}
		}()
	}
	if p.Orders != nil {
		mirror("orders", func() error { return r.remote.SaveOrders(ctx, p.Orders) })
	}
	if p.Payments != nil {
		mirror("payments", func() error { return r.remote.SavePayments(ctx, p.Payments) })
	}
	if p.Complaints != nil {
		mirror("complaints", func() error { return r.remote.SaveComplaints(ctx, p.Complaints) })
	}
	if p.CashEntries != nil {
		mirror("cashEntries", func() error { return r.remote.SaveCashEntries(ctx, p.CashEntries) })
	}
	wg.Wait()

	return nil
}
