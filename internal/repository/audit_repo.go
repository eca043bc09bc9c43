package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/andresbsn/polleria/internal/audit"
	"github.com/andresbsn/polleria/internal/dto"
	"github.com/andresbsn/polleria/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	// WriteTx appends one audit row inside the caller's transaction.
	WriteTx(tx *gorm.DB, userID uuid.UUID, entityID *uuid.UUID, payload audit.Payload) error
	// Write appends outside any transaction, for post-commit events.
	Write(ctx context.Context, userID uuid.UUID, entityID *uuid.UUID, payload audit.Payload) error
	List(ctx context.Context, filter dto.AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func newRow(userID uuid.UUID, entityID *uuid.UUID, payload audit.Payload) (*model.AuditLog, error) {
	details, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &model.AuditLog{
		UserID:   userID,
		Action:   payload.Action(),
		EntityID: entityID,
		Details:  details,
	}, nil
}

func (r *auditRepo) WriteTx(tx *gorm.DB, userID uuid.UUID, entityID *uuid.UUID, payload audit.Payload) error {
	row, err := newRow(userID, entityID, payload)
	if err != nil {
		return err
	}
	return tx.Create(row).Error
}

func (r *auditRepo) Write(ctx context.Context, userID uuid.UUID, entityID *uuid.UUID, payload audit.Payload) error {
	row, err := newRow(userID, entityID, payload)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *auditRepo) List(ctx context.Context, filter dto.AuditFilter) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.From != "" {
		q = q.Where("created_at >= ?", filter.From)
	}
	if filter.To != "" {
		if to, err := time.Parse("2006-01-02", filter.To); err == nil {
			q = q.Where("created_at < ?", to.AddDate(0, 0, 1))
		}
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&logs).Error
	return logs, total, err
}
