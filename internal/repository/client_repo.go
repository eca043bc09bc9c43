package repository

import (
	"context"

	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	List(ctx context.Context, search string) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// LockForUpdateTx serializes balance updates for one client inside a tx.
	LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Client, error)
	UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, newBalance decimal.Decimal) error
	CreateMovementTx(tx *gorm.DB, m *model.ClientMovement) error
	CreatePaymentTx(tx *gorm.DB, p *model.ClientPayment) error

	ListMovements(ctx context.Context, clientID uuid.UUID, limit int) ([]model.ClientMovement, error)
}

type clientRepo struct{ db *gorm.DB }

func NewClientRepository(db *gorm.DB) ClientRepository { return &clientRepo{db: db} }

func (r *clientRepo) Create(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *clientRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := r.db.WithContext(ctx).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) List(ctx context.Context, search string) ([]model.Client, error) {
	var clients []model.Client
	q := r.db.WithContext(ctx).Where("is_active = true")
	if search != "" {
		q = q.Where("name ILIKE ? OR tax_id ILIKE ?", "%"+search+"%", "%"+search+"%")
	}
	err := q.Order("name ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Update(ctx context.Context, c *model.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *clientRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Client{}).Where("id = ?", id).Update("is_active", false).Error
}

func (r *clientRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Client, error) {
	var c model.Client
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&c, id).Error
	return &c, err
}

func (r *clientRepo) UpdateBalanceTx(tx *gorm.DB, id uuid.UUID, newBalance decimal.Decimal) error {
	return tx.Model(&model.Client{}).Where("id = ?", id).Update("current_account_balance", newBalance).Error
}

func (r *clientRepo) CreateMovementTx(tx *gorm.DB, m *model.ClientMovement) error {
	return tx.Create(m).Error
}

func (r *clientRepo) CreatePaymentTx(tx *gorm.DB, p *model.ClientPayment) error {
	return tx.Create(p).Error
}

func (r *clientRepo) ListMovements(ctx context.Context, clientID uuid.UUID, limit int) ([]model.ClientMovement, error) {
	var movs []model.ClientMovement
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movs).Error
	return movs, err
}
