package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

type SaleItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity"   validate:"required"`
	Price     decimal.Decimal `json:"price"      validate:"required"`
}

type CreateSaleRequest struct {
	Items           []SaleItemRequest `json:"items"            validate:"required,min=1,dive"`
	PaymentMethod   string            `json:"payment_method"   validate:"required,oneof=Cash CreditAccount Card Transfer"`
	ClientName      string            `json:"client_name"`
	ClientID        *string           `json:"client_id"        validate:"omitempty,uuid"`
	DiscountPercent decimal.Decimal   `json:"discount_percent"`
	ShouldInvoice   bool              `json:"should_invoice"`
	// ClientDocTipo/ClientDocNro identify the invoice receiver. Zero values
	// mean consumer-final (doc_tipo 99, doc_nro 0).
	ClientDocTipo int    `json:"client_doc_tipo"`
	ClientDocNro  int64  `json:"client_doc_nro"`
	PtoVta        int    `json:"pto_vta"`
	// ClientEmail: optional — when present, the receipt worker mails the PDF.
	ClientEmail *string `json:"client_email" validate:"omitempty,email"`
}

type RetryInvoiceRequest struct {
	SaleID string `json:"saleId" validate:"required,uuid"`
}

type SaleFilter struct {
	// Date: YYYY-MM-DD; empty = today
	Date          string `form:"date"`
	PaymentMethod string `form:"payment_method"`
	Page          int    `form:"page,default=1"   validate:"min=1"`
	Limit         int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ProductID   string          `json:"product_id"`
	Product     string          `json:"product"`
	Quantity    decimal.Decimal `json:"quantity"`
	PriceAtSale decimal.Decimal `json:"price_at_sale"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type InvoiceResponse struct {
	ID            string          `json:"id"`
	SaleID        string          `json:"sale_id"`
	CAE           *string         `json:"cae"`
	CAEExpiration *string         `json:"cae_expiration"`
	CbteTipo      int             `json:"cbte_tipo"`
	PtoVta        int             `json:"pto_vta"`
	CbteNro       int64           `json:"cbte_nro"`
	DocTipo       int             `json:"doc_tipo"`
	DocNro        int64           `json:"doc_nro"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	AFIPError     *string         `json:"afip_error"`
}

type SaleResponse struct {
	ID              string             `json:"id"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	DiscountPercent decimal.Decimal    `json:"discount_percent"`
	Discount        decimal.Decimal    `json:"discount"`
	Total           decimal.Decimal    `json:"total"`
	PaymentMethod   string             `json:"payment_method"`
	ClientName      string             `json:"client_name"`
	ClientID        *string            `json:"client_id"`
	UserID          string             `json:"user_id"`
	Items           []SaleItemResponse `json:"items"`
	Invoice         *InvoiceResponse   `json:"invoice"`
	CreatedAt       string             `json:"created_at"`
}

// CreateSaleResponse distinguishes "sale failed entirely" from "sale
// succeeded, invoicing pending or failed". Invoice is null when invoicing was
// not requested or when the fiscal call failed; Message carries the warning.
type CreateSaleResponse struct {
	SaleID  string           `json:"sale_id"`
	Sale    SaleResponse     `json:"sale"`
	Message string           `json:"message"`
	Invoice *InvoiceResponse `json:"invoice"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}
