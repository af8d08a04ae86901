package audit

import (
	"time"

	"gorm.io/datatypes"
)

type AuditLog struct {
	ID         int64             `gorm:"primaryKey"`
	CompanyID  int64             `gorm:"column:company_id;not null;index"`
	ActorID    int64             `gorm:"column:actor_id;not null"`
	Action     string            `gorm:"column:action;size:64;not null"`
	EntityType string            `gorm:"column:entity_type;size:32;not null"`
	EntityID   int64             `gorm:"column:entity_id;not null"`
	Metadata   datatypes.JSONMap `gorm:"column:metadata;type:jsonb"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
