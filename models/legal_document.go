package models

import (
	"time"

	"gorm.io/gorm"
)

type LegalDocument struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Slug          string         `gorm:"size:100;uniqueIndex:idx_doc_slug_version" json:"slug"`
	Title         string         `gorm:"size:255" json:"title"`
	Content       string         `gorm:"type:text" json:"content"`
	IsRequired    bool           `gorm:"index;default:true" json:"is_required"`
	Version       string         `gorm:"size:20;uniqueIndex:idx_doc_slug_version" json:"version"`
	EffectiveFrom *time.Time     `json:"effective_from,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
