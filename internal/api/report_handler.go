package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medishare-backend-go/internal/core"
	"medishare-backend-go/internal/models"
)

// ReportHandler handles API endpoints related to reports.
type ReportHandler struct {
	reportService core.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs core.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// CreateReport handles POST /reports. The body is a multipart form with
// the document file plus title, type and an optional description.
func (h *ReportHandler) CreateReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, contentType, err := readFormFile(c, "file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Report file is required", Details: err.Error()})
		return
	}

	in := core.CreateReportInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Type:        c.PostForm("type"),
		File:        file,
		ContentType: contentType,
	}
	report, err := h.reportService.CreateReport(c.Request.Context(), userID, in)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, report)
}

// ListReports handles GET /reports (the caller's own reports).
func (h *ReportHandler) ListReports(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reports, err := h.reportService.ListOwned(c.Request.Context(), userID)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// ListSharedReports handles GET /reports/shared (reports shared with the
// caller).
func (h *ReportHandler) ListSharedReports(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	views, err := h.reportService.ListSharedWith(c.Request.Context(), userID)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetReport handles GET /reports/:reportId. A successful response means the
// view counter moved and a view audit entry was written.
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID := c.Param("reportId")
	if reportID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Report ID is required"})
		return
	}

	view, err := h.reportService.GetReport(c.Request.Context(), userID, reportID)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// UpdateReport handles PATCH /reports/:reportId. Multipart form; only the
// fields present are changed, and a replacement file may be attached.
func (h *ReportHandler) UpdateReport(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID := c.Param("reportId")

	var in core.UpdateReportInput
	if title, exists := c.GetPostForm("title"); exists {
		in.Title = &title
	}
	if description, exists := c.GetPostForm("description"); exists {
		in.Description = &description
	}
	if reportType, exists := c.GetPostForm("type"); exists {
		in.Type = &reportType
	}
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, contentType, err := readMultipartFile(fileHeader)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read report file", Details: err.Error()})
			return
		}
		in.File = file
		in.ContentType = contentType
	}

	report, err := h.reportService.UpdateReport(c.Request.Context(), userID, reportID, in)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// AddComment handles POST /reports/:reportId/comments.
func (h *ReportHandler) AddComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	reportID := c.Param("reportId")

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	comment, err := h.reportService.AddComment(c.Request.Context(), userID, reportID, req.Text)
	if err != nil {
		mapServiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
