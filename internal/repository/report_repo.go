package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentTotal is one row of the sales-by-payment-method aggregate.
type PaymentTotal struct {
	PaymentMethod string
	Count         int64
	Total         decimal.Decimal
}

// ProductTotal is one row of the top-products aggregate.
type ProductTotal struct {
	ProductID string
	Name      string
	Quantity  decimal.Decimal
	Revenue   decimal.Decimal
}

// UserTotal is one row of the sales-by-user aggregate.
type UserTotal struct {
	UserID   string
	Username string
	Count    int64
	Total    decimal.Decimal
}

type ReportRepository interface {
	SalesByPayment(ctx context.Context, from, to time.Time) ([]PaymentTotal, error)
	TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductTotal, error)
	SalesByUser(ctx context.Context, from, to time.Time) ([]UserTotal, error)
	InvoiceCounts(ctx context.Context, from, to time.Time) (approved, failed int64, err error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) SalesByPayment(ctx context.Context, from, to time.Time) ([]PaymentTotal, error) {
	var rows []PaymentTotal
	err := r.db.WithContext(ctx).
		Raw(`SELECT payment_method, COUNT(*) AS count, COALESCE(SUM(total), 0) AS total
		     FROM sales
		     WHERE created_at >= ? AND created_at < ?
		     GROUP BY payment_method`, from, to).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductTotal, error) {
	var rows []ProductTotal
	err := r.db.WithContext(ctx).
		Raw(`SELECT i.product_id, p.name,
		            COALESCE(SUM(i.quantity), 0) AS quantity,
		            COALESCE(SUM(i.subtotal), 0) AS revenue
		     FROM sale_items i
		     JOIN sales s ON s.id = i.sale_id
		     JOIN products p ON p.id = i.product_id
		     WHERE s.created_at >= ? AND s.created_at < ?
		     GROUP BY i.product_id, p.name
		     ORDER BY revenue DESC
		     LIMIT ?`, from, to, limit).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) SalesByUser(ctx context.Context, from, to time.Time) ([]UserTotal, error) {
	var rows []UserTotal
	err := r.db.WithContext(ctx).
		Raw(`SELECT s.user_id, u.username,
		            COUNT(*) AS count,
		            COALESCE(SUM(s.total), 0) AS total
		     FROM sales s
		     JOIN users u ON u.id = s.user_id
		     WHERE s.created_at >= ? AND s.created_at < ?
		     GROUP BY s.user_id, u.username
		     ORDER BY total DESC`, from, to).
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) InvoiceCounts(ctx context.Context, from, to time.Time) (int64, int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Raw(`SELECT status, COUNT(*) AS n FROM invoices
		     WHERE created_at >= ? AND created_at < ?
		     GROUP BY status`, from, to).
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	var approved, failed int64
	for _, r := range rows {
		switch r.Status {
		case "APPROVED":
			approved = r.N
		case "ERROR":
			failed = r.N
		}
	}
	return approved, failed, nil
}
