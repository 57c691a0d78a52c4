package pos

import (
	"time"

	"github.com/shopspring/decimal"

	"textilreinigung/backend/internal/domain"
)

var (
	provisionRate45 = decimal.RequireFromString("0.45")
	provisionRate55 = decimal.RequireFromString("0.55")
)

// ComputeStatistics aggregates the current orders over the filtered time
// window. Revenue is accrual based: it sums order totals by creation date,
// regardless of what has been paid so far.
func (s *Store) ComputeStatistics(filters domain.StatisticsFilters) domain.StatisticsSummary {
	return computeStatistics(s.state.Get(), filters, s.now())
}

func computeStatistics(st State, filters domain.StatisticsFilters, now time.Time) domain.StatisticsSummary {
	summary := zeroSummary()
	if len(st.Orders) == 0 {
		return summary
	}

	start, end := window(filters, now)

	catalog := make(map[string]domain.Category, len(st.PriceList))
	for _, item := range st.PriceList {
		catalog[item.ID] = item.Category
	}

	for _, order := range st.Orders {
		created := order.CreatedAt
		if created.Before(start) || created.After(end) {
			continue
		}
		summary.OrderCount++
		summary.Revenue = summary.Revenue.Add(order.Total)
		for _, line := range order.Lines {
			summary.ItemsProcessed += line.Quantity
			category, ok := catalog[line.ItemID]
			if !ok {
				// Lines whose item left the catalog still count toward
				// revenue and item volume, just not a category bucket.
				continue
			}
			subtotal := line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			summary.RevenueByCategory[category] = summary.RevenueByCategory[category].Add(subtotal)
		}
	}

	if summary.OrderCount == 0 {
		return zeroSummary()
	}

	summary.AverageOrderValue = summary.Revenue.Div(decimal.NewFromInt(int64(summary.OrderCount)))
	summary.Provision45 = summary.Revenue.Mul(provisionRate45)
	summary.Provision55 = summary.Revenue.Mul(provisionRate55)
	return summary
}

// window resolves the inclusive [start, end] bounds. Explicit from/to
// override the named range; the clock is UTC.
func window(filters domain.StatisticsFilters, now time.Time) (time.Time, time.Time) {
	now = now.UTC()

	var start time.Time
	switch filters.Range {
	case domain.RangeTag:
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case domain.RangeWoche:
		start = now.AddDate(0, 0, -7)
	case domain.RangeMonat:
		start = now.AddDate(0, -1, 0)
	case domain.RangeQuartal:
		start = now.AddDate(0, -3, 0)
	default:
		start = now.AddDate(-1, 0, 0)
	}

	end := now
	if filters.From != nil {
		start = *filters.From
	}
	if filters.To != nil {
		end = *filters.To
	}
	return start, end
}

func zeroSummary() domain.StatisticsSummary {
	byCategory := make(map[domain.Category]decimal.Decimal, len(domain.Categories))
	for _, category := range domain.Categories {
		byCategory[category] = decimal.Zero
	}
	return domain.StatisticsSummary{
		Revenue:           decimal.Zero,
		AverageOrderValue: decimal.Zero,
		Provision45:       decimal.Zero,
		Provision55:       decimal.Zero,
		RevenueByCategory: byCategory,
	}
}
