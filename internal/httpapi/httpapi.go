// Package httpapi exposes the shop state over a small JSON API consumed by
// the counter frontend.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"textilreinigung/backend/internal/domain"
	"textilreinigung/backend/internal/pos"
)

type API struct {
	store         *pos.Store
	allowedOrigin string
}

func New(store *pos.Store, allowedOrigin string) *API {
	return &API{store: store, allowedOrigin: allowedOrigin}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)
	mux.HandleFunc("/api/v1/pricelist", a.handlePriceList)
	mux.HandleFunc("/api/v1/orders", a.handleOrders)
	mux.HandleFunc("/api/v1/orders/", a.handleOrderActions)
	mux.HandleFunc("/api/v1/payments", a.handlePayments)
	mux.HandleFunc("/api/v1/complaints", a.handleComplaints)
	mux.HandleFunc("/api/v1/complaints/", a.handleComplaintActions)
	mux.HandleFunc("/api/v1/cash-entries", a.handleCashEntries)
	mux.HandleFunc("/api/v1/cash/balances", a.handleCashBalances)
	mux.HandleFunc("/api/v1/register", a.handleRegister)
	mux.HandleFunc("/api/v1/statistics", a.handleStatistics)

	return a.withMiddleware(mux)
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"at": time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handlePriceList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"priceList": a.store.State().PriceList})
}

type orderCreateRequest struct {
	Customer   domain.Customer    `json:"customer"`
	Lines      []domain.OrderLine `json:"lines"`
	PickupDate time.Time          `json:"pickupDate"`
	Notes      string             `json:"notes"`
}

func (req orderCreateRequest) validate() error {
	if strings.TrimSpace(req.Customer.Name) == "" {
		return errors.New("customer name required")
	}
	if len(req.Lines) == 0 {
		return errors.New("at least one order line required")
	}
	for i, line := range req.Lines {
		if strings.TrimSpace(line.ItemID) == "" {
			return fmt.Errorf("line %d: itemId required", i)
		}
		if line.Quantity < 1 {
			return fmt.Errorf("line %d: quantity must be positive", i)
		}
		if line.Price.IsNegative() {
			return fmt.Errorf("line %d: price must not be negative", i)
		}
	}
	return nil
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		query := pos.OrderQuery{
			Status:   domain.OrderStatus(strings.TrimSpace(r.URL.Query().Get("status"))),
			Customer: r.URL.Query().Get("customer"),
		}
		if query.Status != "" && !validOrderStatus(query.Status) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown order status %q", query.Status))
			return
		}
		from, to, err := parseTimeBounds(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		query.From, query.To = from, to

		// date=YYYY-MM-DD narrows to one UTC day, the intake-list view.
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			day, err := time.Parse("2006-01-02", raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, fmt.Errorf("invalid date: %w", err))
				return
			}
			end := day.Add(24*time.Hour - time.Nanosecond)
			query.From, query.To = &day, &end
		}

		writeJSON(w, http.StatusOK, map[string]any{"orders": a.store.FilterOrders(query)})
	case http.MethodPost:
		var req orderCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		order := a.store.CreateOrder(pos.CreateOrderInput{
			Customer:   req.Customer,
			Lines:      req.Lines,
			PickupDate: req.PickupDate,
			Notes:      req.Notes,
		})
		writeJSON(w, http.StatusCreated, map[string]any{"order": order})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleOrderActions(w http.ResponseWriter, r *http.Request) {
	prefix := "/api/v1/orders/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if tail == "" {
		writeError(w, http.StatusBadRequest, errors.New("order id required"))
		return
	}

	switch {
	case strings.HasSuffix(tail, "/status"):
		if r.Method != http.MethodPatch {
			writeMethodNotAllowed(w)
			return
		}
		orderID := strings.Trim(strings.TrimSuffix(tail, "/status"), "/")
		a.updateOrderStatus(w, r, orderID)
	case strings.HasSuffix(tail, "/qr"):
		if r.Method != http.MethodGet {
			writeMethodNotAllowed(w)
			return
		}
		orderID := strings.Trim(strings.TrimSuffix(tail, "/qr"), "/")
		a.writeOrderQR(w, orderID)
	default:
		writeError(w, http.StatusBadRequest, errors.New("unknown order action"))
	}
}

func (a *API) updateOrderStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	var req struct {
		Status domain.OrderStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !validOrderStatus(req.Status) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown order status %q", req.Status))
		return
	}
	if _, ok := a.store.OrderByID(orderID); !ok {
		writeError(w, http.StatusNotFound, errors.New("order not found"))
		return
	}

	a.store.UpdateOrderStatus(orderID, req.Status)
	order, _ := a.store.OrderByID(orderID)
	writeJSON(w, http.StatusOK, map[string]any{"order": order})
}

// writeOrderQR renders the order's encoded ticket summary as a PNG for the
// garment label printer.
func (a *API) writeOrderQR(w http.ResponseWriter, orderID string) {
	order, ok := a.store.OrderByID(orderID)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("order not found"))
		return
	}

	png, err := qrcode.Encode(order.QRCode, qrcode.Medium, 256)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

type paymentCreateRequest struct {
	OrderID  string               `json:"orderId"`
	Amount   decimal.Decimal      `json:"amount"`
	Method   domain.PaymentMethod `json:"method"`
	Register domain.Register      `json:"register"`
	Notes    string               `json:"notes"`
}

func (req paymentCreateRequest) validate() error {
	if !req.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !validPaymentMethod(req.Method) {
		return fmt.Errorf("unknown payment method %q", req.Method)
	}
	if !validRegister(req.Register) {
		return fmt.Errorf("unknown register %q", req.Register)
	}
	return nil
}

func (a *API) handlePayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"payments": a.store.State().Payments})
	case http.MethodPost:
		var req paymentCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		if req.OrderID != "" {
			if _, ok := a.store.OrderByID(req.OrderID); !ok {
				writeError(w, http.StatusNotFound, errors.New("order not found"))
				return
			}
		}

		payment := a.store.RecordPayment(pos.RecordPaymentInput{
			OrderID:  req.OrderID,
			Amount:   req.Amount,
			Method:   req.Method,
			Register: req.Register,
			Notes:    req.Notes,
		})
		writeJSON(w, http.StatusCreated, map[string]any{"payment": payment})
	default:
		writeMethodNotAllowed(w)
	}
}

type complaintCreateRequest struct {
	OrderID string                 `json:"orderId"`
	Reason  string                 `json:"reason"`
	Action  string                 `json:"action"`
	Status  domain.ComplaintStatus `json:"status"`
	Cost    decimal.Decimal        `json:"cost"`
	Notes   string                 `json:"notes"`
}

func (req complaintCreateRequest) validate() error {
	if strings.TrimSpace(req.Reason) == "" {
		return errors.New("reason required")
	}
	if req.Cost.IsNegative() {
		return errors.New("cost must not be negative")
	}
	if req.Status != "" && !validComplaintStatus(req.Status) {
		return fmt.Errorf("unknown complaint status %q", req.Status)
	}
	return nil
}

func (a *API) handleComplaints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"complaints": a.store.State().Complaints})
	case http.MethodPost:
		var req complaintCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		complaint := a.store.AddComplaint(pos.AddComplaintInput{
			OrderID: req.OrderID,
			Reason:  req.Reason,
			Action:  req.Action,
			Status:  req.Status,
			Cost:    req.Cost,
			Notes:   req.Notes,
		})
		writeJSON(w, http.StatusCreated, map[string]any{"complaint": complaint})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleComplaintActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		writeMethodNotAllowed(w)
		return
	}

	prefix := "/api/v1/complaints/"
	tail := strings.TrimSpace(strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/"))
	if !strings.HasSuffix(tail, "/status") {
		writeError(w, http.StatusBadRequest, errors.New("unknown complaint action"))
		return
	}
	complaintID := strings.Trim(strings.TrimSuffix(tail, "/status"), "/")
	if complaintID == "" {
		writeError(w, http.StatusBadRequest, errors.New("complaint id required"))
		return
	}

	var req struct {
		Status domain.ComplaintStatus `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if !validComplaintStatus(req.Status) {
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown complaint status %q", req.Status))
		return
	}

	found := false
	for _, c := range a.store.State().Complaints {
		if c.ID == complaintID {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, errors.New("complaint not found"))
		return
	}

	a.store.UpdateComplaintStatus(complaintID, req.Status)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type cashEntryCreateRequest struct {
	Type     domain.CashEntryType `json:"type"`
	Amount   decimal.Decimal      `json:"amount"`
	Method   domain.CashMethod    `json:"method"`
	Register domain.Register      `json:"register"`
	Note     string               `json:"note"`
}

func (req cashEntryCreateRequest) validate() error {
	if req.Type != domain.CashEntryEinzahlung && req.Type != domain.CashEntryAuszahlung {
		return fmt.Errorf("unknown entry type %q", req.Type)
	}
	if !req.Amount.IsPositive() {
		return errors.New("amount must be positive")
	}
	if !validCashMethod(req.Method) {
		return fmt.Errorf("unknown method %q", req.Method)
	}
	if !validRegister(req.Register) {
		return fmt.Errorf("unknown register %q", req.Register)
	}
	return nil
}

func (a *API) handleCashEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"cashEntries": a.store.State().CashEntries})
	case http.MethodPost:
		var req cashEntryCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}

		entry := a.store.AddCashEntry(pos.AddCashEntryInput{
			Type:     req.Type,
			Amount:   req.Amount,
			Method:   req.Method,
			Register: req.Register,
			Note:     req.Note,
		})
		writeJSON(w, http.StatusCreated, map[string]any{"cashEntry": entry})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleCashBalances(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"balances": a.store.RegisterBalances(),
		"byMethod": map[string]any{
			string(domain.RegisterHauptkasse): a.store.TotalsByMethod(domain.RegisterHauptkasse),
			string(domain.RegisterNebenkasse): a.store.TotalsByMethod(domain.RegisterNebenkasse),
		},
	})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"register": a.store.State().SelectedRegister})
	case http.MethodPost:
		var req struct {
			Register domain.Register `json:"register"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if !validRegister(req.Register) {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown register %q", req.Register))
			return
		}
		a.store.SelectRegister(req.Register)
		writeJSON(w, http.StatusOK, map[string]any{"register": req.Register})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	filters := domain.StatisticsFilters{Range: domain.RangeJahr}
	if raw := strings.TrimSpace(r.URL.Query().Get("range")); raw != "" {
		rng := domain.StatisticsRange(raw)
		switch rng {
		case domain.RangeTag, domain.RangeWoche, domain.RangeMonat, domain.RangeQuartal, domain.RangeJahr:
			filters.Range = rng
		default:
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown range %q", raw))
			return
		}
	}
	from, to, err := parseTimeBounds(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	filters.From, filters.To = from, to

	writeJSON(w, http.StatusOK, a.store.ComputeStatistics(filters))
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

func parseTimeBounds(r *http.Request) (*time.Time, *time.Time, error) {
	var from, to *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("from")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid from timestamp: %w", err)
		}
		from = &parsed
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("to")); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid to timestamp: %w", err)
		}
		to = &parsed
	}
	return from, to, nil
}

func validOrderStatus(s domain.OrderStatus) bool {
	switch s {
	case domain.OrderStatusOffen, domain.OrderStatusInBearbeitung, domain.OrderStatusAbholbereit, domain.OrderStatusAbgeholt:
		return true
	}
	return false
}

func validComplaintStatus(s domain.ComplaintStatus) bool {
	switch s {
	case domain.ComplaintStatusOffen, domain.ComplaintStatusInBearbeitung, domain.ComplaintStatusAbgeschlossen:
		return true
	}
	return false
}

func validPaymentMethod(m domain.PaymentMethod) bool {
	for _, method := range domain.PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

func validCashMethod(m domain.CashMethod) bool {
	switch m {
	case domain.CashMethodBar, domain.CashMethodEC, domain.CashMethodBank, domain.CashMethodWise, domain.CashMethodKreditkarte, domain.CashMethodSonstiges:
		return true
	}
	return false
}

func validRegister(reg domain.Register) bool {
	return reg == domain.RegisterHauptkasse || reg == domain.RegisterNebenkasse
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
