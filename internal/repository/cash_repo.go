package repository

import (
	"context"
	"time"

	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CashRepository interface {
	Create(ctx context.Context, s *model.CashSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error)
	// FindOpenByUser returns gorm.ErrRecordNotFound when the user has no
	// open session.
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*model.CashSession, error)

	CreateTx(tx *gorm.DB, s *model.CashSession) error
	LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error)
	AddSaleTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error
	CloseTx(tx *gorm.DB, id uuid.UUID, finalAmount decimal.Decimal, closedAt time.Time) error
	CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error

	ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error)
	ListSessions(ctx context.Context, limit int) ([]model.CashSession, error)
}

type cashRepo struct{ db *gorm.DB }

func NewCashRepository(db *gorm.DB) CashRepository { return &cashRepo{db: db} }

func (r *cashRepo) Create(ctx context.Context, s *model.CashSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *cashRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *cashRepo) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, model.CashSessionOpen).
		First(&s).Error
	return &s, err
}

func (r *cashRepo) CreateTx(tx *gorm.DB, s *model.CashSession) error {
	return tx.Create(s).Error
}

func (r *cashRepo) LockForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.CashSession, error) {
	var s model.CashSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&s, id).Error
	return &s, err
}

func (r *cashRepo) AddSaleTx(tx *gorm.DB, id uuid.UUID, amount decimal.Decimal) error {
	return tx.Model(&model.CashSession{}).Where("id = ?", id).
		Update("total_sales", gorm.Expr("total_sales + ?", amount)).Error
}

func (r *cashRepo) CloseTx(tx *gorm.DB, id uuid.UUID, finalAmount decimal.Decimal, closedAt time.Time) error {
	return tx.Model(&model.CashSession{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":       model.CashSessionClosed,
		"final_amount": finalAmount,
		"closed_at":    closedAt,
	}).Error
}

func (r *cashRepo) CreateMovementTx(tx *gorm.DB, m *model.CashMovement) error {
	return tx.Create(m).Error
}

func (r *cashRepo) ListMovements(ctx context.Context, sessionID uuid.UUID) ([]model.CashMovement, error) {
	var movs []model.CashMovement
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&movs).Error
	return movs, err
}

func (r *cashRepo) ListSessions(ctx context.Context, limit int) ([]model.CashSession, error) {
	var sessions []model.CashSession
	err := r.db.WithContext(ctx).Order("opened_at DESC").Limit(limit).Find(&sessions).Error
	return sessions, err
}
