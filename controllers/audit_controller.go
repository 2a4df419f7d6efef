package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartstart-backend/services"
)

type AuditController struct {
	Audit *services.AuditService
}

func NewAuditController(svc *services.AuditService) *AuditController {
	return &AuditController{Audit: svc}
}

// GET /api/audit?user_id=&action=&limit=
func (ac *AuditController) List(c *gin.Context) {
	var userID uint
	if raw := c.Query("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		userID = uint(id)
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	events, err := ac.Audit.List(userID, c.Query("action"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":  "failed to load audit events",
			"detail": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, events)
}
