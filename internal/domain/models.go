package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryReinigung Category = "Reinigung"
	CategoryWaesche   Category = "Wäsche"
	CategoryExtras    Category = "Extras"
	CategoryService   Category = "Service"
	CategoryVerkauf   Category = "Verkauf"
)

// Categories lists the closed category set in display order.
var Categories = []Category{
	CategoryReinigung,
	CategoryWaesche,
	CategoryExtras,
	CategoryService,
	CategoryVerkauf,
}

type PriceItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category Category        `json:"category"`
	Price    decimal.Decimal `json:"price"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type OrderLine struct {
	ItemID   string          `json:"itemId"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Notes    string          `json:"notes,omitempty"`
}

type OrderStatus string

const (
	OrderStatusOffen         OrderStatus = "offen"
	OrderStatusInBearbeitung OrderStatus = "inBearbeitung"
	OrderStatusAbholbereit   OrderStatus = "abholbereit"
	OrderStatusAbgeholt      OrderStatus = "abgeholt"
)

type PaymentStatus string

const (
	PaymentStatusOffen     PaymentStatus = "offen"
	PaymentStatusTeilweise PaymentStatus = "teilweise"
	PaymentStatusBezahlt   PaymentStatus = "bezahlt"
)

type PaymentMethod string

const (
	PaymentMethodBar         PaymentMethod = "Bar"
	PaymentMethodEC          PaymentMethod = "EC"
	PaymentMethodBank        PaymentMethod = "Bank"
	PaymentMethodWise        PaymentMethod = "Wise"
	PaymentMethodKreditkarte PaymentMethod = "Kreditkarte"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []PaymentMethod{
	PaymentMethodBar,
	PaymentMethodEC,
	PaymentMethodBank,
	PaymentMethodWise,
	PaymentMethodKreditkarte,
}

type Register string

const (
	RegisterHauptkasse Register = "Hauptkasse"
	RegisterNebenkasse Register = "Nebenkasse"
)

type Order struct {
	ID            string          `json:"id"`
	OrderNumber   string          `json:"orderNumber"`
	CreatedAt     time.Time       `json:"createdAt"`
	PickupDate    time.Time       `json:"pickupDate"`
	Status        OrderStatus     `json:"status"`
	Customer      Customer        `json:"customer"`
	Lines         []OrderLine     `json:"lines"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus PaymentStatus   `json:"paymentStatus"`
	PaymentMethod PaymentMethod   `json:"paymentMethod,omitempty"`
	QRCode        string          `json:"qrCode"`
	Notes         string          `json:"notes,omitempty"`
}

type Payment struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	CreatedAt time.Time       `json:"createdAt"`
	Notes     string          `json:"notes,omitempty"`
	Register  Register        `json:"register"`
}

type CashEntryType string

const (
	CashEntryEinzahlung CashEntryType = "Einzahlung"
	CashEntryAuszahlung CashEntryType = "Auszahlung"
)

// CashMethod is the payment method set plus a catch-all for manual bookings.
type CashMethod string

const (
	CashMethodBar         CashMethod = "Bar"
	CashMethodEC          CashMethod = "EC"
	CashMethodBank        CashMethod = "Bank"
	CashMethodWise        CashMethod = "Wise"
	CashMethodKreditkarte CashMethod = "Kreditkarte"
	CashMethodSonstiges   CashMethod = "Sonstiges"
)

type CashEntry struct {
	ID        string          `json:"id"`
	Type      CashEntryType   `json:"type"`
	Amount    decimal.Decimal `json:"amount"`
	Method    CashMethod      `json:"method"`
	CreatedAt time.Time       `json:"createdAt"`
	Register  Register        `json:"register"`
	Note      string          `json:"note,omitempty"`
}

type ComplaintStatus string

const (
	ComplaintStatusOffen         ComplaintStatus = "offen"
	ComplaintStatusInBearbeitung ComplaintStatus = "inBearbeitung"
	ComplaintStatusAbgeschlossen ComplaintStatus = "abgeschlossen"
)

type Complaint struct {
	ID        string          `json:"id"`
	OrderID   string          `json:"orderId,omitempty"`
	Reason    string          `json:"reason"`
	Action    string          `json:"action"`
	Status    ComplaintStatus `json:"status"`
	Cost      decimal.Decimal `json:"cost"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PersistedState is the aggregate snapshot written to storage. The price
// catalog is code-defined and deliberately not part of it.
type PersistedState struct {
	Orders      []Order     `json:"orders"`
	Payments    []Payment   `json:"payments"`
	Complaints  []Complaint `json:"complaints"`
	CashEntries []CashEntry `json:"cashEntries"`
}

type StatisticsRange string

const (
	RangeTag     StatisticsRange = "tag"
	RangeWoche   StatisticsRange = "woche"
	RangeMonat   StatisticsRange = "monat"
	RangeQuartal StatisticsRange = "quartal"
	RangeJahr    StatisticsRange = "jahr"
)

type StatisticsFilters struct {
	Range StatisticsRange `json:"range"`
	From  *time.Time      `json:"from,omitempty"`
	To    *time.Time      `json:"to,omitempty"`
}

type StatisticsSummary struct {
	Revenue           decimal.Decimal              `json:"revenue"`
	OrderCount        int                          `json:"orderCount"`
	AverageOrderValue decimal.Decimal              `json:"averageOrderValue"`
	Provision45       decimal.Decimal              `json:"provision45"`
	Provision55       decimal.Decimal              `json:"provision55"`
	RevenueByCategory map[Category]decimal.Decimal `json:"revenueByCategory"`
	ItemsProcessed    int                          `json:"itemsProcessed"`
}

type RegisterBalances struct {
	Hauptkasse decimal.Decimal `json:"Hauptkasse"`
	Nebenkasse decimal.Decimal `json:"Nebenkasse"`
}
