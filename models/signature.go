package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Signature is an immutable record that a specific user accepted a specific
// document version. ContentHash snapshots the document text at signing time,
// so later template edits cannot change what the user is considered to have
// agreed to.
type Signature struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	DocumentID    uint           `gorm:"not null;uniqueIndex:idx_signature_doc_user" json:"document_id"`
	UserID        uint           `gorm:"not null;uniqueIndex:idx_signature_doc_user" json:"user_id"`
	SignatureData datatypes.JSON `gorm:"column:signature_data" json:"signature_data"`
	SignatureHash string         `gorm:"size:64" json:"signature_hash"`
	ContentHash   string         `gorm:"size:64" json:"content_hash"`
	SignedAt      time.Time      `json:"signed_at"`
	CreatedAt     time.Time      `json:"created_at"`

	Document LegalDocument `gorm:"foreignKey:DocumentID" json:"-"`
}

// Signatures are append-only; block updates and deletes at the ORM layer.
func (s *Signature) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}

func (s *Signature) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}
