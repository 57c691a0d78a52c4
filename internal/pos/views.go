package pos

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"textilreinigung/backend/internal/domain"
)

// RegisterBalances folds every cash entry into per-drawer saldos.
// Einzahlungen add, Auszahlungen subtract.
func (s *Store) RegisterBalances() domain.RegisterBalances {
	balances := domain.RegisterBalances{
		Hauptkasse: decimal.Zero,
		Nebenkasse: decimal.Zero,
	}
	for _, entry := range s.state.Get().CashEntries {
		amount := entry.Amount
		if entry.Type == domain.CashEntryAuszahlung {
			amount = amount.Neg()
		}
		switch entry.Register {
		case domain.RegisterHauptkasse:
			balances.Hauptkasse = balances.Hauptkasse.Add(amount)
		case domain.RegisterNebenkasse:
			balances.Nebenkasse = balances.Nebenkasse.Add(amount)
		}
	}
	return balances
}

// TotalsByMethod nets one register's cash entries per method, for the
// end-of-day drawer count.
func (s *Store) TotalsByMethod(register domain.Register) map[domain.CashMethod]decimal.Decimal {
	totals := make(map[domain.CashMethod]decimal.Decimal)
	for _, entry := range s.state.Get().CashEntries {
		if entry.Register != register {
			continue
		}
		amount := entry.Amount
		if entry.Type == domain.CashEntryAuszahlung {
			amount = amount.Neg()
		}
		totals[entry.Method] = totals[entry.Method].Add(amount)
	}
	return totals
}

// OrderQuery narrows the order list. Zero-valued fields match everything;
// Customer is a case-insensitive substring match on the customer name.
type OrderQuery struct {
	Status   domain.OrderStatus
	Customer string
	From     *time.Time
	To       *time.Time
}

func (s *Store) FilterOrders(q OrderQuery) []domain.Order {
	orders := s.state.Get().Orders
	needle := strings.ToLower(strings.TrimSpace(q.Customer))

	matched := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if q.Status != "" && order.Status != q.Status {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(order.Customer.Name), needle) {
			continue
		}
		if q.From != nil && order.CreatedAt.Before(*q.From) {
			continue
		}
		if q.To != nil && order.CreatedAt.After(*q.To) {
			continue
		}
		matched = append(matched, order)
	}
	return matched
}

// OrderByID returns the order and whether it exists.
func (s *Store) OrderByID(id string) (domain.Order, bool) {
	for _, order := range s.state.Get().Orders {
		if order.ID == id {
			return order, true
		}
	}
	return domain.Order{}, false
}
