package dto

import "github.com/shopspring/decimal"

type ReportFilter struct {
	// From/To: YYYY-MM-DD inclusive; empty range = today
	From string `form:"from"`
	To   string `form:"to"`
}

type SalesSummaryResponse struct {
	From           string                     `json:"from"`
	To             string                     `json:"to"`
	SaleCount      int64                      `json:"sale_count"`
	Total          decimal.Decimal            `json:"total"`
	ByPayment      map[string]decimal.Decimal `json:"by_payment_method"`
	InvoicedCount  int64                      `json:"invoiced_count"`
	InvoicedErrors int64                      `json:"invoiced_errors"`
}

type TopProductEntry struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type TopProductsResponse struct {
	From string            `json:"from"`
	To   string            `json:"to"`
	Data []TopProductEntry `json:"data"`
}

type UserSalesEntry struct {
	UserID   string          `json:"user_id"`
	Username string          `json:"username"`
	Count    int64           `json:"count"`
	Total    decimal.Decimal `json:"total"`
}

type SalesByUserResponse struct {
	From string           `json:"from"`
	To   string           `json:"to"`
	Data []UserSalesEntry `json:"data"`
}

type AuditFilter struct {
	Action string `form:"action"`
	UserID string `form:"user_id" validate:"omitempty,uuid"`
	From   string `form:"from"`
	To     string `form:"to"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type AuditEntryResponse struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Action    string  `json:"action"`
	EntityID  *string `json:"entity_id"`
	Details   any     `json:"details"`
	CreatedAt string  `json:"created_at"`
}

type AuditListResponse struct {
	Data  []AuditEntryResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
