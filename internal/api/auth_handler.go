package api

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/middleware"
	"medishare-backend-go/internal/models"
)

// sessionCookieMaxAge matches the session token's seven-day lifetime.
const sessionCookieMaxAge = 7 * 24 * 60 * 60

// AuthHandler handles signup, login and logout.
type AuthHandler struct {
	authService  core.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler. cookieSecure should be true
// whenever the API is served over HTTPS.
func NewAuthHandler(as core.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: as, cookieSecure: cookieSecure}
}

// Signup handles POST /auth/signup. The body is a multipart form carrying
// the profile fields, the avatar file and the face descriptor as a JSON
// array of 128 numbers.
func (h *AuthHandler) Signup(c *gin.Context) {
	age, err := strconv.Atoi(c.PostForm("age"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid age", Details: err.Error()})
		return
	}

	var descriptor []float64
	if raw := c.PostForm("faceDescriptor"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &descriptor); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid face descriptor", Details: err.Error()})
			return
		}
	}

	avatar, avatarContentType, err := readFormFile(c, "avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Avatar file is required", Details: err.Error()})
		return
	}

	in := core.SignupInput{
		Email:             c.PostForm("email"),
		Password:          c.PostForm("password"),
		Name:              c.PostForm("name"),
		Age:               age,
		Role:              c.PostForm("role"),
		FaceDescriptor:    descriptor,
		Avatar:            avatar,
		AvatarContentType: avatarContentType,
	}
	user, sessionToken, err := h.authService.Signup(c.Request.Context(), in)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.JSON(http.StatusCreated, user.Public())
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	user, sessionToken, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}

	h.setSessionCookie(c, sessionToken)
	c.JSON(http.StatusOK, user.Public())
}

// Logout handles POST /auth/logout by clearing the session cookie. The
// token itself stays valid until expiry; there is no server-side session
// store to revoke it from.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, sessionToken string) {
	c.SetCookie(middleware.SessionCookieName, sessionToken, sessionCookieMaxAge, "/", "", h.cookieSecure, true)
}

// readFormFile reads one uploaded file from the multipart form.
func readFormFile(c *gin.Context, field string) ([]byte, string, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	return readMultipartFile(fileHeader)
}

func readMultipartFile(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Header.Get("Content-Type"), nil
}
