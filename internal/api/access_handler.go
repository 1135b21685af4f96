package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/models"
)

// AccessHandler handles the public token-redemption endpoints. No session
// is required; the token (plus the code, in OTP mode) is the credential.
type AccessHandler struct {
	accessService core.AccessService
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(as core.AccessService) *AccessHandler {
	return &AccessHandler{accessService: as}
}

// OtpAccess handles POST /otp-access.
func (h *AccessHandler) OtpAccess(c *gin.Context) {
	var req models.OtpAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	view, err := h.accessService.RedeemOTP(c.Request.Context(), req.Token, req.OTP)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// QrValidate handles POST /qr-validate.
func (h *AccessHandler) QrValidate(c *gin.Context) {
	var req models.QrAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	view, err := h.accessService.RedeemQR(c.Request.Context(), req.Token)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
