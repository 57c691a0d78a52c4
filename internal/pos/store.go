// Package pos holds the live shop state: the price catalog, orders,
// payments, complaints, and cash entries. All mutations go through typed
// commands whose reducers are pure functions of the previous state; the
// resulting persistence intents are drained by a background writer so the
// counter never waits on storage.
package pos

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"textilreinigung/backend/internal/domain"
	"textilreinigung/backend/internal/ident"
	"textilreinigung/backend/internal/persist"
	"textilreinigung/backend/internal/state"
)

// Saver is the slice of the persistence repository the store needs.
type Saver interface {
	Load(ctx context.Context) (domain.PersistedState, error)
	Save(ctx context.Context, p persist.Partial) error
}

// State is the full in-memory shop state. The price list is seeded from the
// static catalog; the selected register is a UI preference and never
// persisted.
type State struct {
	PriceList        []domain.PriceItem
	Orders           []domain.Order
	Payments         []domain.Payment
	Complaints       []domain.Complaint
	CashEntries      []domain.CashEntry
	SelectedRegister domain.Register
}

const (
	saveQueueDepth = 64
	saveAttempts   = 3
	saveTimeout    = 10 * time.Second
)

type Store struct {
	state *state.Store[State]
	repo  Saver

	now            func() time.Time
	newID          func() string
	newOrderNumber func(time.Time) string

	queue     chan persist.Partial
	done      chan struct{}
	closeOnce sync.Once
}

func New(repo Saver) *Store {
	s := &Store{
		state: state.New(State{
			PriceList:        domain.DefaultPriceList(),
			SelectedRegister: domain.RegisterHauptkasse,
		}),
		repo:           repo,
		now:            time.Now,
		newID:          ident.NewID,
		newOrderNumber: ident.NewOrderNumber,
		queue:          make(chan persist.Partial, saveQueueDepth),
		done:           make(chan struct{}),
	}
	go s.writer()
	return s
}

// Close stops accepting writes and blocks until every queued persistence
// intent has been attempted.
func (s *Store) Close() {
	s.closeOnce.Do(func() { close(s.queue) })
	<-s.done
}

func (s *Store) State() State {
	return s.state.Get()
}

// Subscribe registers a listener for every state change and returns its
// unsubscribe function.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

// LoadInitialData replaces the four persisted collections wholesale with the
// repository's merged snapshot. It is meant to run once at startup, before
// any mutation.
func (s *Store) LoadInitialData(ctx context.Context) error {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}
	s.state.Set(func(cur State) State {
		cur.Orders = loaded.Orders
		cur.Payments = loaded.Payments
		cur.Complaints = loaded.Complaints
		cur.CashEntries = loaded.CashEntries
		return cur
	})
	return nil
}

// command is one member of the closed mutation set. reduce must be pure; id
// and timestamp generation happen before dispatch.
type command interface {
	reduce(cur State) (State, persist.Partial)
}

func (s *Store) dispatch(cmd command) State {
	var intent persist.Partial
	next := s.state.Set(func(cur State) State {
		n, p := cmd.reduce(cur)
		intent = p
		return n
	})
	if intent.Orders != nil || intent.Payments != nil || intent.Complaints != nil || intent.CashEntries != nil {
		s.queue <- intent
	}
	return next
}

func (s *Store) writer() {
	defer close(s.done)
	for intent := range s.queue {
		s.persistIntent(intent)
	}
}

// persistIntent retries with doubling backoff. After the last attempt the
// write is dropped; in-memory state stays authoritative for the session.
func (s *Store) persistIntent(p persist.Partial) {
	delay := 200 * time.Millisecond
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := s.repo.Save(ctx, p)
		cancel()
		if err == nil {
			return
		}
		if attempt == saveAttempts {
			log.Printf("[pos] dropping state write after %d attempts: %v", attempt, err)
			return
		}
		log.Printf("[pos] state write failed (attempt %d/%d), retrying: %v", attempt, saveAttempts, err)
		time.Sleep(delay)
		delay *= 2
	}
}

type CreateOrderInput struct {
	Customer   domain.Customer
	Lines      []domain.OrderLine
	PickupDate time.Time
	Notes      string
}

type createOrderCmd struct {
	order domain.Order
}

func (c createOrderCmd) reduce(cur State) (State, persist.Partial) {
	cur.Orders = append(cloneSlice(cur.Orders), c.order)
	return cur, persist.Partial{Orders: cur.Orders}
}

// CreateOrder books a new cleaning job. The total is computed once here and
// never recomputed; line prices are captured as given so later catalog
// changes leave historical orders untouched.
func (s *Store) CreateOrder(in CreateOrderInput) domain.Order {
	now := s.now()
	customer := in.Customer
	if customer.ID == "" {
		customer.ID = s.newID()
	}

	total := decimal.Zero
	for _, line := range in.Lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}

	order := domain.Order{
		ID:            s.newID(),
		OrderNumber:   s.newOrderNumber(now),
		CreatedAt:     now,
		PickupDate:    in.PickupDate,
		Status:        domain.OrderStatusOffen,
		Customer:      customer,
		Lines:         in.Lines,
		Total:         total,
		PaymentStatus: domain.PaymentStatusOffen,
		Notes:         in.Notes,
	}
	order.QRCode = qrPayload(order)

	s.dispatch(createOrderCmd{order: order})
	return order
}

// qrPayload is the structured summary printed as a QR label on the garment
// ticket.
func qrPayload(order domain.Order) string {
	payload, err := json.Marshal(struct {
		OrderNumber string    `json:"orderNumber"`
		PickupDate  time.Time `json:"pickupDate"`
		Customer    string    `json:"customer"`
	}{
		OrderNumber: order.OrderNumber,
		PickupDate:  order.PickupDate,
		Customer:    order.Customer.Name,
	})
	if err != nil {
		return order.OrderNumber
	}
	return string(payload)
}

type updateOrderStatusCmd struct {
	orderID string
	status  domain.OrderStatus
}

func (c updateOrderStatusCmd) reduce(cur State) (State, persist.Partial) {
	idx := -1
	for i := range cur.Orders {
		if cur.Orders[i].ID == c.orderID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cur, persist.Partial{}
	}
	cur.Orders = cloneSlice(cur.Orders)
	cur.Orders[idx].Status = c.status
	return cur, persist.Partial{Orders: cur.Orders}
}

// UpdateOrderStatus sets the lifecycle status of one order. Any status may be
// set directly; an unknown order id is a silent no-op.
func (s *Store) UpdateOrderStatus(orderID string, status domain.OrderStatus) {
	s.dispatch(updateOrderStatusCmd{orderID: orderID, status: status})
}

type RecordPaymentInput struct {
	OrderID  string
	Amount   decimal.Decimal
	Method   domain.PaymentMethod
	Register domain.Register
	Notes    string
}

type recordPaymentCmd struct {
	payment domain.Payment
}

func (c recordPaymentCmd) reduce(cur State) (State, persist.Partial) {
	cur.Payments = append(cloneSlice(cur.Payments), c.payment)
	cur.CashEntries = append(cloneSlice(cur.CashEntries), domain.CashEntry{
		ID:        c.payment.ID,
		Type:      domain.CashEntryEinzahlung,
		Amount:    c.payment.Amount,
		Method:    domain.CashMethod(c.payment.Method),
		CreatedAt: c.payment.CreatedAt,
		Register:  c.payment.Register,
		Note:      c.payment.Notes,
	})

	intent := persist.Partial{Payments: cur.Payments, CashEntries: cur.CashEntries}

	for i := range cur.Orders {
		if cur.Orders[i].ID != c.payment.OrderID {
			continue
		}
		// One fold over the post-append payments slice decides the status.
		paid := decimal.Zero
		for _, p := range cur.Payments {
			if p.OrderID == c.payment.OrderID {
				paid = paid.Add(p.Amount)
			}
		}
		cur.Orders = cloneSlice(cur.Orders)
		cur.Orders[i].PaymentStatus = paymentStatusFor(paid, cur.Orders[i].Total)
		cur.Orders[i].PaymentMethod = c.payment.Method
		intent.Orders = cur.Orders
		break
	}
	return cur, intent
}

func paymentStatusFor(paid, total decimal.Decimal) domain.PaymentStatus {
	switch {
	case paid.GreaterThanOrEqual(total):
		return domain.PaymentStatusBezahlt
	case paid.GreaterThan(decimal.Zero):
		return domain.PaymentStatusTeilweise
	default:
		return domain.PaymentStatusOffen
	}
}

// RecordPayment appends a payment, mirrors it as an Einzahlung cash entry in
// the same register under the same id, and rederives the order's payment
// status from the cumulative payments against its total.
func (s *Store) RecordPayment(in RecordPaymentInput) domain.Payment {
	notes := in.Notes
	if notes == "" && in.Register == domain.RegisterNebenkasse {
		notes = "Nebenkasse"
	}
	payment := domain.Payment{
		ID:        s.newID(),
		OrderID:   in.OrderID,
		Amount:    in.Amount,
		Method:    in.Method,
		CreatedAt: s.now(),
		Register:  in.Register,
		Notes:     notes,
	}
	s.dispatch(recordPaymentCmd{payment: payment})
	return payment
}

type AddComplaintInput struct {
	OrderID string
	Reason  string
	Action  string
	Status  domain.ComplaintStatus
	Cost    decimal.Decimal
	Notes   string
}

type addComplaintCmd struct {
	complaint domain.Complaint
}

func (c addComplaintCmd) reduce(cur State) (State, persist.Partial) {
	cur.Complaints = append(cloneSlice(cur.Complaints), c.complaint)
	return cur, persist.Partial{Complaints: cur.Complaints}
}

func (s *Store) AddComplaint(in AddComplaintInput) domain.Complaint {
	status := in.Status
	if status == "" {
		status = domain.ComplaintStatusOffen
	}
	complaint := domain.Complaint{
		ID:        s.newID(),
		OrderID:   in.OrderID,
		Reason:    in.Reason,
		Action:    in.Action,
		Status:    status,
		Cost:      in.Cost,
		Notes:     in.Notes,
		CreatedAt: s.now(),
	}
	s.dispatch(addComplaintCmd{complaint: complaint})
	return complaint
}

type updateComplaintStatusCmd struct {
	complaintID string
	status      domain.ComplaintStatus
}

func (c updateComplaintStatusCmd) reduce(cur State) (State, persist.Partial) {
	idx := -1
	for i := range cur.Complaints {
		if cur.Complaints[i].ID == c.complaintID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return cur, persist.Partial{}
	}
	cur.Complaints = cloneSlice(cur.Complaints)
	cur.Complaints[idx].Status = c.status
	return cur, persist.Partial{Complaints: cur.Complaints}
}

func (s *Store) UpdateComplaintStatus(complaintID string, status domain.ComplaintStatus) {
	s.dispatch(updateComplaintStatusCmd{complaintID: complaintID, status: status})
}

type AddCashEntryInput struct {
	Type     domain.CashEntryType
	Amount   decimal.Decimal
	Method   domain.CashMethod
	Register domain.Register
	Note     string
}

type addCashEntryCmd struct {
	entry domain.CashEntry
}

func (c addCashEntryCmd) reduce(cur State) (State, persist.Partial) {
	cur.CashEntries = append(cloneSlice(cur.CashEntries), c.entry)
	return cur, persist.Partial{CashEntries: cur.CashEntries}
}

// AddCashEntry books a manual register movement, independent of the
// automatic mirroring done by RecordPayment.
func (s *Store) AddCashEntry(in AddCashEntryInput) domain.CashEntry {
	entry := domain.CashEntry{
		ID:        s.newID(),
		Type:      in.Type,
		Amount:    in.Amount,
		Method:    in.Method,
		CreatedAt: s.now(),
		Register:  in.Register,
		Note:      in.Note,
	}
	s.dispatch(addCashEntryCmd{entry: entry})
	return entry
}

// SelectRegister switches the active drawer. Pure UI preference, never
// persisted.
func (s *Store) SelectRegister(register domain.Register) {
	s.state.Set(func(cur State) State {
		cur.SelectedRegister = register
		return cur
	})
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
