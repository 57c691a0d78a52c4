package pos

import (
	"testing"
	"time"

	"textilreinigung/backend/internal/domain"
)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestStatisticsEmptyOrderSetIsAllZero(t *testing.T) {
	store, _ := newTestStore(t)

	for _, r := range []domain.StatisticsRange{domain.RangeTag, domain.RangeWoche, domain.RangeMonat, domain.RangeQuartal, domain.RangeJahr} {
		summary := store.ComputeStatistics(domain.StatisticsFilters{Range: r})
		if !summary.Revenue.IsZero() || summary.OrderCount != 0 || !summary.AverageOrderValue.IsZero() {
			t.Fatalf("range %s: summary = %+v, want all zero", r, summary)
		}
		if len(summary.RevenueByCategory) != len(domain.Categories) {
			t.Fatalf("range %s: categories = %d, want %d", r, len(summary.RevenueByCategory), len(domain.Categories))
		}
		for category, v := range summary.RevenueByCategory {
			if !v.IsZero() {
				t.Fatalf("range %s: category %s = %s, want 0", r, category, v)
			}
		}
	}
}

func TestStatisticsSingleOrderOverAYear(t *testing.T) {
	store, _ := newTestStore(t)

	store.CreateOrder(CreateOrderInput{
		Customer: sampleCustomer(),
		Lines: []domain.OrderLine{
			{ItemID: "anzug", Quantity: 2, Price: dec("14.50")},
		},
	})

	summary := store.ComputeStatistics(domain.StatisticsFilters{Range: domain.RangeJahr})
	if summary.OrderCount != 1 {
		t.Fatalf("orderCount = %d, want 1", summary.OrderCount)
	}
	if !summary.Revenue.Equal(dec("29.00")) {
		t.Fatalf("revenue = %s, want 29.00", summary.Revenue)
	}
	if !summary.AverageOrderValue.Equal(dec("29.00")) {
		t.Fatalf("averageOrderValue = %s, want 29.00", summary.AverageOrderValue)
	}
	if !summary.Provision45.Equal(dec("13.05")) {
		t.Fatalf("provision45 = %s, want 13.05", summary.Provision45)
	}
	if !summary.Provision55.Equal(dec("15.95")) {
		t.Fatalf("provision55 = %s, want 15.95", summary.Provision55)
	}
	if summary.ItemsProcessed != 2 {
		t.Fatalf("itemsProcessed = %d, want 2", summary.ItemsProcessed)
	}
	if !summary.RevenueByCategory[domain.CategoryReinigung].Equal(dec("29.00")) {
		t.Fatalf("Reinigung bucket = %s, want 29.00", summary.RevenueByCategory[domain.CategoryReinigung])
	}
}

func TestStatisticsRangeExcludesOlderOrders(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	store.now = fixedClock(now.AddDate(0, -2, 0))
	store.CreateOrder(CreateOrderInput{
		Customer: sampleCustomer(),
		Lines:    []domain.OrderLine{{ItemID: "anzug", Quantity: 1, Price: dec("14.50")}},
	})

	store.now = fixedClock(now.Add(-2 * time.Hour))
	store.CreateOrder(CreateOrderInput{
		Customer: sampleCustomer(),
		Lines:    []domain.OrderLine{{ItemID: "hemd", Quantity: 2, Price: dec("2.80")}},
	})

	store.now = fixedClock(now)

	today := store.ComputeStatistics(domain.StatisticsFilters{Range: domain.RangeTag})
	if today.OrderCount != 1 || !today.Revenue.Equal(dec("5.60")) {
		t.Fatalf("tag: count=%d revenue=%s, want 1 order of 5.60", today.OrderCount, today.Revenue)
	}

	month := store.ComputeStatistics(domain.StatisticsFilters{Range: domain.RangeMonat})
	if month.OrderCount != 1 {
		t.Fatalf("monat: count=%d, want 1", month.OrderCount)
	}

	quarter := store.ComputeStatistics(domain.StatisticsFilters{Range: domain.RangeQuartal})
	if quarter.OrderCount != 2 || !quarter.Revenue.Equal(dec("20.10")) {
		t.Fatalf("quartal: count=%d revenue=%s, want both orders totalling 20.10", quarter.OrderCount, quarter.Revenue)
	}
}

func TestStatisticsExplicitBoundsOverrideRange(t *testing.T) {
	store, _ := newTestStore(t)
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	store.now = fixedClock(now.AddDate(0, -6, 0))
	store.CreateOrder(CreateOrderInput{
		Customer: sampleCustomer(),
		Lines:    []domain.OrderLine{{ItemID: "vorhang", Quantity: 1, Price: dec("12.90")}},
	})
	store.now = fixedClock(now)

	from := now.AddDate(0, -7, 0)
	to := now.AddDate(0, -5, 0)
	summary := store.ComputeStatistics(domain.StatisticsFilters{Range: domain.RangeTag, From: &from, To: &to})
	if summary.OrderCount != 1 || !summary.Revenue.Equal(dec("12.90")) {
		t.Fatalf("explicit window: count=%d revenue=%s, want the old order", summary.OrderCount, summary.Revenue)
	}
}

func TestStatisticsWindowBoundsAreInclusive(t *testing.T) {
	store, _ := newTestStore(t)
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	store.now = fixedClock(at)
	store.CreateOrder(CreateOrderInput{
		Customer: sampleCustomer(),
		Lines:    []domain.OrderLine{{ItemID: "hemd", Quantity: 1, Price: dec("2.80")}},
	})

	from := at
	to := at
	summary := store.ComputeStatistics(domain.StatisticsFilters{From: &from, To: &to})
	if summary.OrderCount != 1 {
		t.Fatalf("count = %d, want an order on the boundary to be included", summary.OrderCount)
	}
}

func TestStatisticsUnknownCatalogItemSkipsCategoryBucket(t *testing.T) {
	store, _ := newTestStore(t)

	store.CreateOrder(CreateOrderInput{
		Customer: sampleCustomer(),
		Lines: []domain.OrderLine{
			{ItemID: "hemd", Quantity: 1, Price: dec("2.80")},
			{ItemID: "retired-item", Quantity: 3, Price: dec("5.00")},
		},
	})

	summary := store.ComputeStatistics(domain.StatisticsFilters{Range: domain.RangeJahr})
	// Revenue follows the order total, items follow line quantities, but the
	// unknown item lands in no category bucket.
	if !summary.Revenue.Equal(dec("17.80")) {
		t.Fatalf("revenue = %s, want 17.80", summary.Revenue)
	}
	if summary.ItemsProcessed != 4 {
		t.Fatalf("itemsProcessed = %d, want 4", summary.ItemsProcessed)
	}
	if !summary.RevenueByCategory[domain.CategoryWaesche].Equal(dec("2.80")) {
		t.Fatalf("Wäsche bucket = %s, want 2.80", summary.RevenueByCategory[domain.CategoryWaesche])
	}
	bucketSum := summary.RevenueByCategory[domain.CategoryReinigung].
		Add(summary.RevenueByCategory[domain.CategoryWaesche]).
		Add(summary.RevenueByCategory[domain.CategoryExtras]).
		Add(summary.RevenueByCategory[domain.CategoryService]).
		Add(summary.RevenueByCategory[domain.CategoryVerkauf])
	if !bucketSum.Equal(dec("2.80")) {
		t.Fatalf("bucket sum = %s, want 2.80", bucketSum)
	}
}
