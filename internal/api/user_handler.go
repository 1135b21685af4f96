package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
)

// UserHandler handles the current-user profile endpoints.
type UserHandler struct {
	userService core.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

// GetCurrentUser handles GET /users/me.
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	// The full model is safe here: the password hash and the encrypted
	// descriptor are excluded from JSON at the model level.
	c.JSON(http.StatusOK, user)
}

// UpdateCurrentUser handles PATCH /users/me. The body is a multipart form;
// only the fields present are changed.
func (h *UserHandler) UpdateCurrentUser(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var in core.UpdateProfileInput
	if name, exists := c.GetPostForm("name"); exists {
		in.Name = &name
	}
	if rawAge, exists := c.GetPostForm("age"); exists {
		age, err := strconv.Atoi(rawAge)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid age", Details: err.Error()})
			return
		}
		in.Age = &age
	}
	if password, exists := c.GetPostForm("password"); exists {
		in.Password = &password
	}
	if raw, exists := c.GetPostForm("faceDescriptor"); exists {
		if err := json.Unmarshal([]byte(raw), &in.FaceDescriptor); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid face descriptor", Details: err.Error()})
			return
		}
	}
	if fileHeader, err := c.FormFile("avatar"); err == nil {
		avatar, contentType, err := readMultipartFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read avatar file", Details: err.Error()})
			return
		}
		in.Avatar = avatar
		in.AvatarContentType = contentType
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, in)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
