package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"smartstart-backend/config"
	"smartstart-backend/models"
)

// DocumentService manages legal document templates.
type DocumentService struct {
	DB *gorm.DB
}

func NewDocumentService(db *gorm.DB) *DocumentService {
	if db == nil {
		db = config.DB
	}
	return &DocumentService{DB: db}
}

// List returns every document version, newest first.
func (s *DocumentService) List() ([]models.LegalDocument, error) {
	var out []models.LegalDocument
	err := s.DB.Order("id desc").Find(&out).Error
	return out, err
}

// ListRequired returns the required set in creation order. This ordering is
// what the acceptance flow walks through; it must stay stable.
func (s *DocumentService) ListRequired() ([]models.LegalDocument, error) {
	var out []models.LegalDocument
	err := s.DB.Where("is_required = ?", true).Order("id asc").Find(&out).Error
	return out, err
}

func (s *DocumentService) GetByID(id uint) (models.LegalDocument, error) {
	var doc models.LegalDocument
	err := s.DB.First(&doc, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, ErrDocumentNotFound
	}
	return doc, err
}

// Create registers a document version. A (slug, version) pair that already
// exists is returned as-is: document content is immutable per version, so a
// content change has to come in under a new version string.
func (s *DocumentService) Create(doc *models.LegalDocument) (models.LegalDocument, error) {
	if doc == nil {
		return models.LegalDocument{}, gorm.ErrInvalidData
	}
	if strings.TrimSpace(doc.Version) == "" {
		doc.Version = "1.0"
	}

	var existing models.LegalDocument
	err := s.DB.Where("slug = ? AND version = ?", doc.Slug, doc.Version).First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.LegalDocument{}, err
	}

	if err := s.DB.Create(doc).Error; err != nil {
		return models.LegalDocument{}, err
	}
	return *doc, nil
}
