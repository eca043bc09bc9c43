package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientMovement Tipo: "SALE" | "PAYMENT"
const (
	ClientMovementSale    = "SALE"
	ClientMovementPayment = "PAYMENT"
)

// Client carries the live accounts-receivable balance. The balance rises on
// credit sales and falls on payments; replaying the ClientMovement ledger
// always yields the same value.
type Client struct {
	ID                    uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                  string          `gorm:"type:varchar(150);not null"`
	TaxID                 string          `gorm:"type:varchar(20);column:tax_id"`
	TaxType               string          `gorm:"type:varchar(30)"`
	Phone                 string          `gorm:"type:varchar(30)"`
	Address               string          `gorm:"type:varchar(200)"`
	CurrentAccountBalance decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive              bool            `gorm:"not null;default:true"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// ClientMovement is an append-only ledger entry. Amount is signed: +total for
// a credit sale, negative for a payment. Movements are NEVER modified or
// deleted. BalanceAfter records the client balance right after the movement.
type ClientMovement struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID     uuid.UUID       `gorm:"type:uuid;index;not null"`
	Type         string          `gorm:"type:varchar(10);not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	BalanceAfter decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description  string          `gorm:"not null"`
	ReferenceID  *uuid.UUID      `gorm:"type:uuid"`
	UserID       uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}

// ClientPayment records one accounts-receivable payment taken at the counter.
type ClientPayment struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClientID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod string          `gorm:"type:varchar(20);not null"`
	Description   string
	UserID        uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time
}
