package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/models"
)

// ShareHandler handles POST /reports/:reportId/share.
type ShareHandler struct {
	shareService core.ShareService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(ss core.ShareService) *ShareHandler {
	return &ShareHandler{shareService: ss}
}

// ShareReport dispatches a share request in face, otp or qr mode. The
// response never carries the minted token; it travels out of band.
func (h *ShareHandler) ShareReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID := c.Param("reportId")

	var req models.ShareReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	if err := h.shareService.Share(c.Request.Context(), userID, reportID, req); err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Report shared"})
}
