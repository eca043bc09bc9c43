package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditLog is a write-only side channel. Rows are appended by services and
// never read by the sales core; the reporting endpoints consume them.
type AuditLog struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Action    string          `gorm:"type:varchar(50);not null;index"`
	EntityID  *uuid.UUID      `gorm:"type:uuid"`
	Details   json.RawMessage `gorm:"type:jsonb"`
	CreatedAt time.Time       `gorm:"index"`
}
