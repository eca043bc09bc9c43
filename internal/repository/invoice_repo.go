package repository

import (
	"context"

	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	// Upsert inserts the invoice or, when the (pto_vta, cbte_tipo, cbte_nro)
	// slot already exists, overwrites only the fiscal outcome fields. Totals
	// and receiver document fields keep their original values so a retry can
	// never rewrite what was sold.
	Upsert(ctx context.Context, inv *model.Invoice) error

	// MaxLocalNumber returns the highest voucher number already stored for
	// (ptoVta, cbteTipo), 0 when none exists.
	MaxLocalNumber(ctx context.Context, ptoVta, cbteTipo int) (int64, error)

	FindBySaleID(ctx context.Context, saleID uuid.UUID) (*model.Invoice, error)
	FindApprovedBySaleID(ctx context.Context, saleID uuid.UUID) (*model.Invoice, error)
	UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) Upsert(ctx context.Context, inv *model.Invoice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "pto_vta"}, {Name: "cbte_tipo"}, {Name: "cbte_nro"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cae", "cae_expiration", "status", "afip_error", "updated_at",
		}),
	}).Create(inv).Error
}

func (r *invoiceRepo) MaxLocalNumber(ctx context.Context, ptoVta, cbteTipo int) (int64, error) {
	var max int64
	err := r.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("pto_vta = ? AND cbte_tipo = ?", ptoVta, cbteTipo).
		Select("COALESCE(MAX(cbte_nro), 0)").
		Scan(&max).Error
	return max, err
}

func (r *invoiceRepo) FindBySaleID(ctx context.Context, saleID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("created_at DESC").
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) FindApprovedBySaleID(ctx context.Context, saleID uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).
		Where("sale_id = ? AND status = ?", saleID, model.InvoiceApproved).
		First(&inv).Error
	return &inv, err
}

func (r *invoiceRepo) UpdatePDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).Model(&model.Invoice{}).Where("id = ?", id).Update("pdf_path", path).Error
}
