package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/token"
)

// mapServiceErrorToStatus maps errors from the core services to HTTP status
// codes and an ErrorResponse body. Every handler funnels service errors
// through here so the taxonomy stays in one place.
func mapServiceErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrValidation):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrValidation.Error(), Details: err.Error()}
	case errors.Is(err, core.ErrUnauthorized):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Invalid email or password"}
	case errors.Is(err, core.ErrAccessDenied):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrAccessDenied.Error()}
	case errors.Is(err, core.ErrFaceNotVerified):
		// Distinct from a plain denial: the client reacts by starting the
		// face-verification flow.
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrFaceNotVerified.Error()}
	case errors.Is(err, core.ErrReportNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrReportNotFound.Error()}
	case errors.Is(err, core.ErrUserNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrUserNotFound.Error()}
	case errors.Is(err, core.ErrUserExists):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrUserExists.Error()}
	case errors.Is(err, core.ErrAlreadyShared):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrAlreadyShared.Error()}
	case errors.Is(err, core.ErrShareToSelf):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrShareToSelf.Error()}
	case errors.Is(err, core.ErrInvalidOtp):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: core.ErrInvalidOtp.Error()}
	case errors.Is(err, token.ErrTokenExpired):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: token.ErrTokenExpired.Error()}
	case errors.Is(err, token.ErrTokenInvalid):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: token.ErrTokenInvalid.Error()}
	default:
		log.Printf("Internal Server Error: %v", err) // Log the actual error for server-side review
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// currentUserID pulls the authenticated user's ID placed in the context by
// the auth middleware. A missing ID means the route is misconfigured.
func currentUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return "", false
	}
	return userID.(string), true
}
