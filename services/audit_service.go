package services

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smartstart-backend/config"
	"smartstart-backend/models"
)

// AuditService reads and appends security/audit events. Signing writes its
// own audit rows transactionally via SignatureService; this service covers
// everything else (reminders, admin queries).
type AuditService struct {
	DB *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	if db == nil {
		db = config.DB
	}
	return &AuditService{DB: db}
}

func (s *AuditService) Record(userID uint, action string, details map[string]interface{}, ip, userAgent string) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return err
	}
	event := models.AuditEvent{
		UserID:    userID,
		Action:    action,
		Details:   datatypes.JSON(payload),
		IPAddress: ip,
		UserAgent: userAgent,
	}
	return s.DB.Create(&event).Error
}

// List returns audit events newest first, optionally filtered by user and
// action. A zero userID / empty action means no filter.
func (s *AuditService) List(userID uint, action string, limit int) ([]models.AuditEvent, error) {
	q := s.DB.Order("id desc")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var events []models.AuditEvent
	err := q.Find(&events).Error
	return events, err
}
