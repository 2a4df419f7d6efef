package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"smartstart-backend/config"
	"smartstart-backend/models"
)

// SignaturePayload is the signer-supplied part of a signature. IP address and
// user agent are captured server-side from the request, never trusted from
// the body.
type SignaturePayload struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	SignedAt  time.Time `json:"signedAt"`
}

// RequiredDocument is a document from the required set merged with the
// caller's signature status.
type RequiredDocument struct {
	Document models.LegalDocument
	IsSigned bool
	SignedAt *time.Time
}

// SigningStatus is the derived completion summary used by dashboards.
type SigningStatus struct {
	TotalDocuments       int  `json:"totalDocuments"`
	SignedDocuments      int  `json:"signedDocuments"`
	CompletionPercentage int  `json:"completionPercentage"`
	IsComplete           bool `json:"isComplete"`
}

const mysqlDuplicateEntry = 1062

// SignatureService is the only writer of signatures and audit events.
type SignatureService struct {
	DB *gorm.DB

	// seam for fault-injection tests; writes the audit row inside the
	// signing transaction
	writeAudit func(tx *gorm.DB, event *models.AuditEvent) error
}

func NewSignatureService(db *gorm.DB) *SignatureService {
	if db == nil {
		db = config.DB
	}
	s := &SignatureService{DB: db}
	s.writeAudit = func(tx *gorm.DB, event *models.AuditEvent) error {
		return tx.Create(event).Error
	}
	return s
}

// Sign records the acceptance of a document by a user. The signature row and
// its audit event are written in one transaction: both land or neither does.
// A second call for the same (document, user) pair returns ErrAlreadySigned.
func (s *SignatureService) Sign(userID, documentID uint, payload SignaturePayload) (*models.Signature, error) {
	var doc models.LegalDocument
	if err := s.DB.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	if payload.SignedAt.IsZero() {
		payload.SignedAt = time.Now().UTC()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	contentHash := sha256Hex([]byte(doc.Content))
	sigHash := sha256Hex(fmt.Appendf(nil, "%d:%d:%s:%s", documentID, userID, contentHash, data))

	sig := &models.Signature{
		DocumentID:    documentID,
		UserID:        userID,
		SignatureData: datatypes.JSON(data),
		SignatureHash: sigHash,
		ContentHash:   contentHash,
		SignedAt:      payload.SignedAt,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Signature{}).
			Where("document_id = ? AND user_id = ?", documentID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadySigned
		}

		if err := tx.Create(sig).Error; err != nil {
			// the unique index catches concurrent duplicates the
			// pre-check cannot see (double-click, second tab)
			var myErr *mysql.MySQLError
			if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
				return ErrAlreadySigned
			}
			return err
		}

		details, _ := json.Marshal(map[string]interface{}{
			"document_id":    doc.ID,
			"document_slug":  doc.Slug,
			"version":        doc.Version,
			"signature_hash": sigHash,
			"content_hash":   contentHash,
		})
		event := &models.AuditEvent{
			UserID:    userID,
			Action:    models.AuditActionDocumentSigned,
			Details:   datatypes.JSON(details),
			IPAddress: payload.IPAddress,
			UserAgent: payload.UserAgent,
		}
		if err := s.writeAudit(tx, event); err != nil {
			return err
		}

		complete, cErr := s.isCompleteTx(tx, userID)
		if cErr != nil {
			return cErr
		}
		if complete {
			doneDetails, _ := json.Marshal(map[string]interface{}{
				"last_document_id": doc.ID,
			})
			done := &models.AuditEvent{
				UserID:    userID,
				Action:    models.AuditActionOnboardingCompleted,
				Details:   datatypes.JSON(doneDetails),
				IPAddress: payload.IPAddress,
				UserAgent: payload.UserAgent,
			}
			if err := s.writeAudit(tx, done); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("signature recorded: user=%d document=%d version=%s", userID, documentID, doc.Version)
	return sig, nil
}

// GetRequired returns the required documents in creation order, each merged
// with the caller's signature status from any prior session.
func (s *SignatureService) GetRequired(userID uint) ([]RequiredDocument, error) {
	var docs []models.LegalDocument
	if err := s.DB.Where("is_required = ?", true).Order("id asc").Find(&docs).Error; err != nil {
		return nil, err
	}

	var sigs []models.Signature
	if err := s.DB.Where("user_id = ?", userID).Find(&sigs).Error; err != nil {
		return nil, err
	}

	signedAt := make(map[uint]time.Time, len(sigs))
	for _, sig := range sigs {
		signedAt[sig.DocumentID] = sig.SignedAt
	}

	out := make([]RequiredDocument, 0, len(docs))
	for _, doc := range docs {
		rd := RequiredDocument{Document: doc}
		if at, ok := signedAt[doc.ID]; ok {
			rd.IsSigned = true
			t := at
			rd.SignedAt = &t
		}
		out = append(out, rd)
	}
	return out, nil
}

// Status derives the completion summary from the same rows GetRequired reads,
// so the two can never diverge. The percentage is rounded for display only;
// IsComplete compares exact counts.
func (s *SignatureService) Status(userID uint) (SigningStatus, error) {
	required, err := s.GetRequired(userID)
	if err != nil {
		return SigningStatus{}, err
	}

	signed := 0
	for _, rd := range required {
		if rd.IsSigned {
			signed++
		}
	}

	st := SigningStatus{
		TotalDocuments:  len(required),
		SignedDocuments: signed,
	}
	if st.TotalDocuments == 0 {
		// nothing to sign means nothing is pending
		st.CompletionPercentage = 100
		st.IsComplete = true
		return st, nil
	}
	st.CompletionPercentage = int(float64(signed)/float64(st.TotalDocuments)*100 + 0.5)
	st.IsComplete = signed == st.TotalDocuments
	return st, nil
}

func (s *SignatureService) isCompleteTx(tx *gorm.DB, userID uint) (bool, error) {
	var total int64
	if err := tx.Model(&models.LegalDocument{}).Where("is_required = ?", true).Count(&total).Error; err != nil {
		return false, err
	}
	if total == 0 {
		return true, nil
	}

	var signed int64
	err := tx.Model(&models.Signature{}).
		Joins("JOIN legal_documents ON legal_documents.id = signatures.document_id").
		Where("signatures.user_id = ? AND legal_documents.is_required = ?", userID, true).
		Count(&signed).Error
	if err != nil {
		return false, err
	}
	return signed == total, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
