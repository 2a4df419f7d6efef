package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	AuditActionDocumentSigned      = "document_signed"
	AuditActionReminderSent        = "reminder_sent"
	AuditActionOnboardingCompleted = "onboarding_completed"
)

type AuditEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index" json:"user_id"`
	Action    string         `gorm:"size:64;index" json:"action"`
	Details   datatypes.JSON `json:"details"`
	IPAddress string         `gorm:"size:64" json:"ip_address"`
	UserAgent string         `gorm:"size:512" json:"user_agent"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

// Audit events are append-only.
func (e *AuditEvent) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}

func (e *AuditEvent) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}
