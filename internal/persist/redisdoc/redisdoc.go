// Package redisdoc mirrors the snapshot into redis, one hash per collection
// and one hash field per record. It is the shared copy a second counter
// terminal loads from.
package redisdoc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"

	"textilreinigung/backend/internal/domain"
)

type Store struct {
	client *redis.Client
	prefix string
}

func New(addr, password string, db int, prefix string) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(collection string) string {
	return s.prefix + ":" + collection
}

// Load reads all four collection hashes. Records that fail to decode are
// logged and skipped rather than poisoning the whole load.
func (s *Store) Load(ctx context.Context) (domain.PersistedState, error) {
	var state domain.PersistedState
	var err error

	state.Orders, err = loadRecords[domain.Order](ctx, s.client, s.key("orders"))
	if err != nil {
		return domain.PersistedState{}, err
	}
	state.Payments, err = loadRecords[domain.Payment](ctx, s.client, s.key("payments"))
	if err != nil {
		return domain.PersistedState{}, err
	}
	state.Complaints, err = loadRecords[domain.Complaint](ctx, s.client, s.key("complaints"))
	if err != nil {
		return domain.PersistedState{}, err
	}
	state.CashEntries, err = loadRecords[domain.CashEntry](ctx, s.client, s.key("cashEntries"))
	if err != nil {
		return domain.PersistedState{}, err
	}
	return state, nil
}

func (s *Store) SaveOrders(ctx context.Context, orders []domain.Order) error {
	return saveRecords(ctx, s.client, s.key("orders"), orders, func(o domain.Order) string { return o.ID })
}

func (s *Store) SavePayments(ctx context.Context, payments []domain.Payment) error {
	return saveRecords(ctx, s.client, s.key("payments"), payments, func(p domain.Payment) string { return p.ID })
}

func (s *Store) SaveComplaints(ctx context.Context, complaints []domain.Complaint) error {
	return saveRecords(ctx, s.client, s.key("complaints"), complaints, func(c domain.Complaint) string { return c.ID })
}

func (s *Store) SaveCashEntries(ctx context.Context, entries []domain.CashEntry) error {
	return saveRecords(ctx, s.client, s.key("cashEntries"), entries, func(e domain.CashEntry) string { return e.ID })
}

type record interface {
	domain.Order | domain.Payment | domain.Complaint | domain.CashEntry
}

func loadRecords[T record](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	fields, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	records := make([]T, 0, len(fields))
	for id, raw := range fields {
		var rec T
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			log.Printf("[redisdoc] skipping corrupt record %s in %s: %v", id, key, err)
			continue
		}
		records = append(records, rec)
	}

	// Hash fields come back in arbitrary order; restore chronological order.
	sort.SliceStable(records, func(i, j int) bool {
		return createdAt(records[i]).Before(createdAt(records[j]))
	})
	return records, nil
}

func createdAt[T record](rec T) time.Time {
	switch v := any(rec).(type) {
	case domain.Order:
		return v.CreatedAt
	case domain.Payment:
		return v.CreatedAt
	case domain.Complaint:
		return v.CreatedAt
	case domain.CashEntry:
		return v.CreatedAt
	}
	return time.Time{}
}

// saveRecords writes every record as its own hash field, concurrently. The
// first write error is returned; existing fields for records no longer in
// the slice are left in place.
func saveRecords[T record](ctx context.Context, client *redis.Client, key string, records []T, id func(T) string) error {
	if len(records) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(records))
	for _, rec := range records {
		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record for %s: %w", key, err)
		}
		field := id(rec)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := client.HSet(ctx, key, field, payload).Err(); err != nil {
				errs <- fmt.Errorf("write %s/%s: %w", key, field, err)
			}
		}()
	}
	wg.Wait()
	close(errs)
	return <-errs
}
