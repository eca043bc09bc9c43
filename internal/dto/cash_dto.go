package dto

import "github.com/shopspring/decimal"

type OpenCashSessionRequest struct {
	InitialAmount decimal.Decimal `json:"initial_amount" validate:"required"`
}

type CloseCashSessionRequest struct {
	FinalAmount decimal.Decimal `json:"final_amount" validate:"required"`
}

type CashMovementRequest struct {
	// Type: manual adjustments only; SALE movements come from checkouts.
	Type        string          `json:"type"        validate:"required,oneof=OPEN CLOSE"`
	Amount      decimal.Decimal `json:"amount"      validate:"required"`
	Description string          `json:"description" validate:"required,min=3"`
}

type CashSessionResponse struct {
	ID            string           `json:"id"`
	UserID        string           `json:"user_id"`
	OpenedAt      string           `json:"opened_at"`
	ClosedAt      *string          `json:"closed_at"`
	InitialAmount decimal.Decimal  `json:"initial_amount"`
	FinalAmount   *decimal.Decimal `json:"final_amount"`
	TotalSales    decimal.Decimal  `json:"total_sales"`
	// ExpectedAmount = initial_amount + total_sales in cash; Deviation is
	// final_amount - expected_amount, present only after close.
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Deviation      *decimal.Decimal `json:"deviation,omitempty"`
	Status         string           `json:"status"`
}

type CashMovementResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID *string         `json:"reference_id"`
	CreatedAt   string          `json:"created_at"`
}

type CashSessionDetailResponse struct {
	Session   CashSessionResponse    `json:"session"`
	Movements []CashMovementResponse `json:"movements"`
}
