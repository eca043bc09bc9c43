package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Unit: "UNIT" | "KG"
const (
	UnitUnit = "UNIT"
	UnitKg   = "KG"
)

type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product stock carries three decimal places so weight-based goods sold by
// the kilo can hold fractional quantities. Stock must never go negative
// after a sale commits.
type Product struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name       string          `gorm:"type:varchar(150);not null"`
	Price      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Stock      decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0"`
	Unit       string          `gorm:"type:varchar(10);not null;default:'UNIT'"`
	CategoryID *uuid.UUID      `gorm:"type:uuid;index"`
	Category   *Category       `gorm:"foreignKey:CategoryID"`
	IsActive   bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
