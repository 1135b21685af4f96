package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/models"
)

// FaceHandler handles the face-verification challenge endpoints under
// /reports/:reportId/verify-face.
type FaceHandler struct {
	faces core.FaceVerifier
}

// NewFaceHandler creates a new FaceHandler.
func NewFaceHandler(fv core.FaceVerifier) *FaceHandler {
	return &FaceHandler{faces: fv}
}

// SubmitFrame handles POST /reports/:reportId/verify-face. The client's
// camera loop posts one frame at a time until the result reports matched.
func (h *FaceHandler) SubmitFrame(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID := c.Param("reportId")

	var req models.FaceFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.faces.SubmitFrame(c.Request.Context(), userID, reportID, req.Descriptor, req.Confidence)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// StopVerification handles DELETE /reports/:reportId/verify-face, releasing
// the challenge session when the client stops its camera.
func (h *FaceHandler) StopVerification(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.faces.Stop(userID, c.Param("reportId"))
	c.JSON(http.StatusOK, SuccessResponse{Message: "Verification stopped"})
}
