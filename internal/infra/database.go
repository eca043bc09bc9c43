package infra

import (
	"fmt"

	"github.com/andresbsn/polleria/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// to create / update all tables, then applies idempotent SQL patches for the
// constraints GORM cannot express (partial unique indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := db.AutoMigrate(
		&model.User{},
		&model.Category{},
		&model.Product{},
		&model.Client{},
		&model.ClientMovement{},
		&model.ClientPayment{},
		&model.CashSession{},
		&model.CashMovement{},
		&model.Sale{},
		&model.SaleItem{},
		&model.Invoice{},
		&model.AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("AutoMigrate: %w", err)
	}

	if err := applySchemaPatches(db); err != nil {
		return nil, fmt.Errorf("schema patches: %w", err)
	}

	return db, nil
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot handle.
// Each statement uses IF NOT EXISTS guards so re-running on an already
// patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// At most one OPEN cash session per user. Query-before-insert alone
		// races under concurrent opens; the partial unique index closes it.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_cash_sessions_one_open') THEN
		    CREATE UNIQUE INDEX idx_cash_sessions_one_open
		        ON cash_sessions (user_id)
		        WHERE status = 'OPEN';
		  END IF;
		END $$`,
		// Fast lookup of failed invoices for the retry endpoint.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_invoices_error') THEN
		    CREATE INDEX idx_invoices_error
		        ON invoices (created_at)
		        WHERE status = 'ERROR';
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
