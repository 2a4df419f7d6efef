package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"smartstart-backend/models"
	"smartstart-backend/services"
)

// -----------------------------
// Document admin controller
// -----------------------------

type DocumentController struct {
	Docs *services.DocumentService
}

func NewDocumentController(svc *services.DocumentService) *DocumentController {
	return &DocumentController{Docs: svc}
}

// GET /api/documents
func (dc *DocumentController) List(c *gin.Context) {
	docs, err := dc.Docs.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "failed to load documents",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, docs)
}

// POST /api/documents
// Content per version is immutable: posting an existing (slug, version)
// returns the stored row unchanged, a content change needs a new version.
func (dc *DocumentController) Create(c *gin.Context) {
	var req struct {
		Slug       string `json:"slug" binding:"required"`
		Title      string `json:"title" binding:"required"`
		Content    string `json:"content" binding:"required"`
		Version    string `json:"version"`
		IsRequired *bool  `json:"is_required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid payload",
			"detail": err.Error(),
		})
		return
	}

	now := time.Now()
	doc := models.LegalDocument{
		Slug:          strings.TrimSpace(req.Slug),
		Title:         req.Title,
		Content:       req.Content,
		Version:       strings.TrimSpace(req.Version),
		IsRequired:    true,
		EffectiveFrom: &now,
	}
	if req.IsRequired != nil {
		doc.IsRequired = *req.IsRequired
	}

	created, err := dc.Docs.Create(&doc)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "failed to create document",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, created)
}
