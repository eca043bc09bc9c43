package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashSession Status: "OPEN" | "CLOSED"
// CashMovement Type: "OPEN" | "CLOSE" | "SALE" | "PAYMENT"
const (
	CashSessionOpen   = "OPEN"
	CashSessionClosed = "CLOSED"

	CashMovementOpen    = "OPEN"
	CashMovementClose   = "CLOSE"
	CashMovementSale    = "SALE"
	CashMovementPayment = "PAYMENT"
)

// CashSession models one cash-drawer shift. At most one OPEN session may
// exist per user; a partial unique index on (user_id) WHERE status='OPEN'
// enforces this at the database, see infra schema patches.
type CashSession struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	OpenedAt      time.Time        `gorm:"not null"`
	ClosedAt      *time.Time
	InitialAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	FinalAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	TotalSales    decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	Status        string           `gorm:"type:varchar(10);not null;default:'OPEN'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Movements []CashMovement `gorm:"foreignKey:SessionID"`
}

// CashMovement is an immutable event in the cash-drawer ledger. One row per
// cash-affecting event; movements are NEVER modified or deleted.
type CashMovement struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null"`
	Type           string          `gorm:"type:varchar(10);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description    string          `gorm:"not null"`
	ReferenceTable string          `gorm:"type:varchar(30)"`
	ReferenceID    *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt      time.Time
}
