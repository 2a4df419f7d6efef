package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"smartstart-backend/services"
)

// -----------------------------
// Acceptance API controller
// -----------------------------

type SignatureDataPayload struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required"`
	SignedAt *time.Time `json:"signedAt,omitempty"`
}

type SignRequest struct {
	DocumentID    uint                 `json:"documentId" binding:"required"`
	SignatureData SignatureDataPayload `json:"signatureData" binding:"required"`
}

type requiredDocumentResponse struct {
	ID         uint       `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	IsRequired bool       `json:"isRequired"`
	Version    string     `json:"version"`
	IsSigned   bool       `json:"isSigned"`
	SignedAt   *time.Time `json:"signedAt,omitempty"`
}

type LegalController struct {
	Signatures *services.SignatureService
}

func NewLegalController(svc *services.SignatureService) *LegalController {
	return &LegalController{Signatures: svc}
}

// GET /api/legal/required
func (lc *LegalController) GetRequired(c *gin.Context) {
	userID := c.GetUint("userID")

	required, err := lc.Signatures.GetRequired(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "failed to load required documents",
			"detail": err.Error(),
		})
		return
	}

	out := make([]requiredDocumentResponse, 0, len(required))
	for _, rd := range required {
		out = append(out, requiredDocumentResponse{
			ID:         rd.Document.ID,
			Title:      rd.Document.Title,
			Content:    rd.Document.Content,
			IsRequired: rd.Document.IsRequired,
			Version:    rd.Document.Version,
			IsSigned:   rd.IsSigned,
			SignedAt:   rd.SignedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// POST /api/legal/sign
func (lc *LegalController) Sign(c *gin.Context) {
	userID := c.GetUint("userID")

	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid payload",
			"detail": err.Error(),
		})
		return
	}

	payload := services.SignaturePayload{
		Name:      req.SignatureData.Name,
		Email:     req.SignatureData.Email,
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if req.SignatureData.SignedAt != nil {
		payload.SignedAt = req.SignatureData.SignedAt.UTC()
	}

	sig, err := lc.Signatures.Sign(userID, req.DocumentID, payload)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDocumentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "document_not_found"})
		case errors.Is(err, services.ErrAlreadySigned):
			c.JSON(http.StatusBadRequest, gin.H{"error": "already_signed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":  "failed to record signature",
				"detail": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"signatureId": sig.ID})
}

// GET /api/legal/status
func (lc *LegalController) Status(c *gin.Context) {
	userID := c.GetUint("userID")

	status, err := lc.Signatures.Status(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "failed to load signing status",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, status)
}
