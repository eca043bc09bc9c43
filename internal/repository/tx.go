package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager runs a function inside one database transaction. Services depend
// on this interface instead of opening transactions on *gorm.DB directly so
// the all-or-nothing sale commit can be unit tested with an in-memory fake.
type TxManager interface {
	Do(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) TxManager { return &gormTxManager{db: db} }

func (m *gormTxManager) Do(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return m.db.WithContext(ctx).Transaction(fn)
}
