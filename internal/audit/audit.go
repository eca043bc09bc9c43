// Package audit defines the typed payloads written to the audit log. Each
// payload knows its own action name; the repository marshals it to the jsonb
// details column. Keeping the payloads typed means a refactor that renames a
// field breaks the build instead of silently changing the stored shape.
package audit

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payload is implemented by every audit entry body.
type Payload interface {
	Action() string
}

// SaleCreated is written inside the sale transaction, after the header row.
type SaleCreated struct {
	SaleID        uuid.UUID       `json:"sale_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	ItemCount     int             `json:"item_count"`
}

func (SaleCreated) Action() string { return "SALE_CREATED" }

// StockOut is written once per cart line, after the stock decrement.
type StockOut struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SaleID      uuid.UUID       `json:"sale_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
}

func (StockOut) Action() string { return "STOCK_OUT" }

// ProductChanged records an admin mutation with a per-field diff.
type ProductChanged struct {
	ProductID uuid.UUID              `json:"product_id"`
	Operation string                 `json:"operation"` // CREATE | UPDATE | DEACTIVATE
	Changes   map[string]FieldChange `json:"changes,omitempty"`
}

func (ProductChanged) Action() string { return "PRODUCT_CHANGED" }

// FieldChange holds the before/after values of one mutated field.
type FieldChange struct {
	From any `json:"from"`
	To   any `json:"to"`
}

// CategoryChanged records a category create/update/delete.
type CategoryChanged struct {
	CategoryID uuid.UUID `json:"category_id"`
	Operation  string    `json:"operation"`
	Name       string    `json:"name"`
}

func (CategoryChanged) Action() string { return "CATEGORY_CHANGED" }

// ClientPaymentReceived is written when an accounts-receivable payment posts.
type ClientPaymentReceived struct {
	ClientID     uuid.UUID       `json:"client_id"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

func (ClientPaymentReceived) Action() string { return "CLIENT_PAYMENT" }

// CashSessionEvent records opening or closing a drawer shift.
type CashSessionEvent struct {
	SessionID uuid.UUID        `json:"session_id"`
	Operation string           `json:"operation"` // OPEN | CLOSE
	Amount    decimal.Decimal  `json:"amount"`
	Deviation *decimal.Decimal `json:"deviation,omitempty"`
}

func (CashSessionEvent) Action() string { return "CASH_SESSION" }

// InvoiceAttempt records every fiscal submission outcome, approved or not.
type InvoiceAttempt struct {
	SaleID  uuid.UUID `json:"sale_id"`
	PtoVta  int       `json:"pto_vta"`
	CbteNro int64     `json:"cbte_nro"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
}

func (InvoiceAttempt) Action() string { return "INVOICE_ATTEMPT" }
