package domain

import "github.com/shopspring/decimal"

// DefaultPriceList is the static service catalog. It is seeded at process
// start and never persisted; historical orders capture line prices at
// creation time, so editing the catalog here does not rewrite old orders.
func DefaultPriceList() []PriceItem {
	return []PriceItem{
		{ID: "anzug", Name: "Anzug 2-teilig", Price: decimal.RequireFromString("14.5"), Category: CategoryReinigung},
		{ID: "hemd", Name: "Hemd", Price: decimal.RequireFromString("2.8"), Category: CategoryWaesche},
		{ID: "vorhang", Name: "Vorhang", Price: decimal.RequireFromString("12.9"), Category: CategoryService},
		{ID: "impragnierung", Name: "Imprägnierung", Price: decimal.RequireFromString("9.5"), Category: CategoryExtras},
		{ID: "verkauf-buerste", Name: "Kleiderbürste", Price: decimal.RequireFromString("6.5"), Category: CategoryVerkauf},
	}
}
