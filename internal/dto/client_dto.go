package dto

import "github.com/shopspring/decimal"

type CreateClientRequest struct {
	Name    string `json:"name"     validate:"required,min=2"`
	TaxID   string `json:"tax_id"`
	TaxType string `json:"tax_type"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type UpdateClientRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=2"`
	TaxID    *string `json:"tax_id"`
	TaxType  *string `json:"tax_type"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	IsActive *bool   `json:"is_active"`
}

type RegisterPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount"         validate:"required"`
	PaymentMethod string          `json:"payment_method" validate:"required,oneof=Cash Card Transfer"`
	Description   string          `json:"description"`
}

type ClientResponse struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	TaxID                 string          `json:"tax_id"`
	TaxType               string          `json:"tax_type"`
	Phone                 string          `json:"phone"`
	Address               string          `json:"address"`
	CurrentAccountBalance decimal.Decimal `json:"current_account_balance"`
	IsActive              bool            `json:"is_active"`
}

type ClientMovementResponse struct {
	ID           string          `json:"id"`
	Type         string          `json:"type"`
	Amount       decimal.Decimal `json:"amount"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Description  string          `json:"description"`
	ReferenceID  *string         `json:"reference_id"`
	CreatedAt    string          `json:"created_at"`
}

type ClientMovementsResponse struct {
	Client    ClientResponse           `json:"client"`
	Movements []ClientMovementResponse `json:"movements"`
}
