package models

import "time"

const AuditLogTable = "audit_logs"

// AuditLog rows are best-effort: a failed insert is logged and never fails
// the mutation that produced it.
type AuditLog struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	CorrelationID string    `gorm:"size:64;index" json:"correlationId"`
	UserID        *string   `gorm:"type:uuid;index" json:"userId,omitempty"`
	Action        string    `gorm:"size:64;not null" json:"action"`
	ResourceType  string    `gorm:"size:40;not null" json:"resourceType"`
	ResourceID    *string   `gorm:"type:uuid" json:"resourceId,omitempty"`
	Metadata      string    `gorm:"type:text" json:"metadata,omitempty"`
	IPAddress     string    `gorm:"size:45" json:"-"`
	UserAgent     string    `gorm:"size:255" json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (AuditLog) TableName() string { return AuditLogTable }
