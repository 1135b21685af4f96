package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
)

// AuditHandler handles GET /auditlog.
type AuditHandler struct {
	auditService core.AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(as core.AuditService) *AuditHandler {
	return &AuditHandler{auditService: as}
}

// ListAuditLog returns the audit trail for every report the caller owns or
// is shared on, newest first.
func (h *AuditHandler) ListAuditLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	entries, err := h.auditService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}
