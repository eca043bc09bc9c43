package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice Status: "APPROVED" | "ERROR"
const (
	InvoiceApproved = "APPROVED"
	InvoiceError    = "ERROR"
)

// Invoice records one voucher slot at the fiscal authority. The composite
// unique index on (pto_vta, cbte_tipo, cbte_nro) is load-bearing: within one
// point of sale and voucher type, numbers are sequential and never reused.
// A failed submission still occupies its slot with status ERROR.
type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SaleID        uuid.UUID `gorm:"type:uuid;index;not null"`
	// CAE is the authorization code returned by AFIP
	CAE           *string         `gorm:"type:varchar(20);column:cae"`
	CAEExpiration *time.Time      `gorm:"column:cae_expiration"`
	CbteTipo      int             `gorm:"not null;uniqueIndex:idx_invoices_voucher"`
	PtoVta        int             `gorm:"not null;uniqueIndex:idx_invoices_voucher"`
	CbteNro       int64           `gorm:"not null;uniqueIndex:idx_invoices_voucher"`
	DocTipo       int             `gorm:"not null"`
	DocNro        int64           `gorm:"not null"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(10);not null"`
	AFIPError     *string         `gorm:"column:afip_error"`
	// PDFPath is relative to PDF_STORAGE_PATH
	PDFPath   *string `gorm:"column:pdf_path"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
