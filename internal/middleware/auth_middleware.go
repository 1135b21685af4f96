package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/token"
)

// SessionCookieName is the cookie carrying the session token. The same
// token is also accepted as a Bearer header for non-browser clients.
const SessionCookieName = "token"

// Context keys set by the auth middleware for downstream handlers.
const (
	ContextUserID    = "userID"
	ContextUserEmail = "userEmail"
)

// ErrorResponse is a local definition for sending standardized error messages.
// It mirrors the one in internal/api/dto_models.go to avoid import cycles.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// AuthMiddleware provides Gin middleware for session token authentication.
type AuthMiddleware struct {
	tokens *token.Manager
}

// NewAuthMiddleware creates a new AuthMiddleware instance. It panics if the
// token manager is nil, as this is a critical setup dependency.
func NewAuthMiddleware(tokens *token.Manager) *AuthMiddleware {
	if tokens == nil {
		panic("token manager is not initialized for AuthMiddleware")
	}
	return &AuthMiddleware{tokens: tokens}
}

// VerifySession is a Gin middleware handler that authenticates the request
// from the session cookie or, failing that, an Authorization Bearer header.
// On success it sets the user's ID and email in the Gin context.
func (m *AuthMiddleware) VerifySession() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionToken(c)
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
			return
		}

		claims, err := m.tokens.VerifySession(raw)
		if err != nil {
			// The same generic message covers malformed, forged and expired
			// tokens; details are not useful to a legitimate client.
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid or expired session"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextUserEmail, claims.Email)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}
