package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod: "Cash" | "CreditAccount" | "Card" | "Transfer"
const (
	PaymentCash          = "Cash"
	PaymentCreditAccount = "CreditAccount"
	PaymentCard          = "Card"
	PaymentTransfer      = "Transfer"
)

// Sale is created once per checkout and never mutated afterwards. Its invoice
// association is derived through Invoice.SaleID.
// Invariant: Total = Subtotal - Discount, Discount = Subtotal * DiscountPercent/100.
type Sale struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Discount        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total           decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `gorm:"type:varchar(20);not null"`
	ClientName      string          `gorm:"type:varchar(150)"`
	ClientID        *uuid.UUID      `gorm:"type:uuid;index"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt       time.Time       `gorm:"index"`

	Items []SaleItem `gorm:"foreignKey:SaleID"`
}

// SaleItem snapshots the unit price at the moment of sale so later product
// price changes never alter a historical sale.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	PriceAtSale decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt   time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}
