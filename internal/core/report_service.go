package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
)

// signedURLTTL bounds how long a resolved PDF link stays usable. Links are
// minted per read, so a short window is enough.
const signedURLTTL = time.Minute

// CreateReportInput carries a new report plus its uploaded file.
type CreateReportInput struct {
	Title       string
	Description string
	Type        string
	File        []byte
	ContentType string
}

// UpdateReportInput is a partial report update. Nil fields are left
// untouched. Replacing the file requires Type to be set too, so the
// public/private storage choice matches the new document.
type UpdateReportInput struct {
	Title       *string
	Description *string
	Type        *string
	File        []byte
	ContentType string
}

// reportService implements the ReportService interface.
type reportService struct {
	reportRepo db.ReportRepository
	sharedRepo db.SharedReportRepository
	userRepo   db.UserRepository
	media      MediaStorage
	faces      FaceVerifier
	audit      AuditService
	logger     *zap.Logger
}

// NewReportService creates a new ReportService instance.
func NewReportService(
	reportRepo db.ReportRepository,
	sharedRepo db.SharedReportRepository,
	userRepo db.UserRepository,
	media MediaStorage,
	faces FaceVerifier,
	audit AuditService,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		sharedRepo: sharedRepo,
		userRepo:   userRepo,
		media:      media,
		faces:      faces,
		audit:      audit,
		logger:     logger,
	}
}

// CreateReport stores the uploaded file and creates the report document.
func (s *reportService) CreateReport(ctx context.Context, ownerID string, in CreateReportInput) (*models.Report, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Type != models.ReportTypePDF && in.Type != models.ReportTypeImage {
		return nil, fmt.Errorf("%w: type must be '%s' or '%s'", ErrValidation, models.ReportTypePDF, models.ReportTypeImage)
	}
	if len(in.File) == 0 {
		return nil, fmt.Errorf("%w: file is required", ErrValidation)
	}

	storageRef, err := s.storeFile(ctx, in.Type, in.File, in.ContentType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	report := &models.Report{
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		OwnerID:       ownerID,
		Type:          in.Type,
		StorageRef:    storageRef,
		SharableUsers: []string{},
		Comments:      []models.Comment{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	id, err := s.reportRepo.Create(ctx, report)
	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}
	report.ID = id

	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:   ownerID,
		Action:   models.AuditActionCreate,
		Resource: models.ReportResource(id),
	}); err != nil {
		s.logger.Warn("failed to record create audit entry", zap.String("reportId", id), zap.Error(err))
	}
	return report, nil
}

// GetReport authorizes the read, bumps the view counter and records a view
// audit event. Owners always pass; sharees must hold a live face grant.
func (s *reportService) GetReport(ctx context.Context, viewerID, reportID string) (*ReportView, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if report.OwnerID != viewerID {
		if !report.IsSharedWith(viewerID) {
			return nil, fmt.Errorf("%w: report '%s'", ErrAccessDenied, reportID)
		}
		if !s.faces.HasGrant(viewerID, reportID) {
			return nil, fmt.Errorf("%w: report '%s'", ErrFaceNotVerified, reportID)
		}
	}

	if err := s.reportRepo.IncrementViews(ctx, reportID); err != nil {
		return nil, fmt.Errorf("failed to increment views for report '%s': %w", reportID, err)
	}
	report.Views++

	// The view counter and the audit trail move together: a read that
	// cannot be audited is reported as a failure.
	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:   viewerID,
		Action:   models.AuditActionView,
		Resource: models.ReportResource(reportID),
	}); err != nil {
		return nil, fmt.Errorf("failed to record view audit entry for report '%s': %w", reportID, err)
	}

	return s.buildView(ctx, report)
}

// ListOwned returns the reports owned by the user.
func (s *reportService) ListOwned(ctx context.Context, ownerID string) ([]*models.Report, error) {
	reports, err := s.reportRepo.GetByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for owner '%s': %w", ownerID, err)
	}
	return reports, nil
}

// ListSharedWith returns the reports shared with the user, annotated with
// the owner's public profile and the access type of the share.
func (s *reportService) ListSharedWith(ctx context.Context, userID string) ([]*SharedReportView, error) {
	shares, err := s.sharedRepo.GetBySharedWith(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares for user '%s': %w", userID, err)
	}
	if len(shares) == 0 {
		return []*SharedReportView{}, nil
	}

	reportIDs := make([]string, 0, len(shares))
	accessTypes := make(map[string]string, len(shares))
	for _, share := range shares {
		reportIDs = append(reportIDs, share.ReportID)
		accessTypes[share.ReportID] = share.AccessType
	}
	reports, err := s.reportRepo.GetByIDs(ctx, reportIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load shared reports: %w", err)
	}

	views := make([]*SharedReportView, 0, len(reports))
	for _, report := range reports {
		owner, err := s.userRepo.GetByID(ctx, report.OwnerID)
		if err != nil {
			s.logger.Warn("failed to load owner of shared report",
				zap.String("reportId", report.ID), zap.String("ownerId", report.OwnerID), zap.Error(err))
			continue
		}
		views = append(views, &SharedReportView{
			Report:     report,
			Owner:      owner.Public(),
			AccessType: accessTypes[report.ID],
		})
	}
	return views, nil
}

// UpdateReport applies a partial update. Only the owner may edit.
func (s *reportService) UpdateReport(ctx context.Context, ownerID, reportID string, in UpdateReportInput) (*models.Report, error) {
	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the owner may edit report '%s'", ErrAccessDenied, reportID)
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		report.Title = title
	}
	if in.Description != nil {
		report.Description = strings.TrimSpace(*in.Description)
	}
	if len(in.File) > 0 {
		newType := report.Type
		if in.Type != nil {
			newType = *in.Type
		}
		if newType != models.ReportTypePDF && newType != models.ReportTypeImage {
			return nil, fmt.Errorf("%w: type must be '%s' or '%s'", ErrValidation, models.ReportTypePDF, models.ReportTypeImage)
		}
		storageRef, err := s.storeFile(ctx, newType, in.File, in.ContentType)
		if err != nil {
			return nil, err
		}
		report.Type = newType
		report.StorageRef = storageRef
	} else if in.Type != nil && *in.Type != report.Type {
		return nil, fmt.Errorf("%w: changing the type requires a new file", ErrValidation)
	}
	report.UpdatedAt = time.Now().UTC()

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to update report '%s': %w", reportID, err)
	}

	if err := s.audit.Record(ctx, models.AuditLog{
		UserID:   ownerID,
		Action:   models.AuditActionEdit,
		Resource: models.ReportResource(reportID),
	}); err != nil {
		s.logger.Warn("failed to record edit audit entry", zap.String("reportId", reportID), zap.Error(err))
	}
	return report, nil
}

// AddComment appends a comment. Owners and sharees may comment; sharees do
// not need a live face grant to do so.
func (s *reportService) AddComment(ctx context.Context, userID, reportID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrValidation)
	}

	report, err := s.getReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.OwnerID != userID && !report.IsSharedWith(userID) {
		return nil, fmt.Errorf("%w: report '%s'", ErrAccessDenied, reportID)
	}

	comment := models.Comment{
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.reportRepo.AddComment(ctx, reportID, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment to report '%s': %w", reportID, err)
	}
	return &comment, nil
}

// storeFile uploads the document. PDFs stay private and get signed URLs on
// read; images are served from their public URL directly.
func (s *reportService) storeFile(ctx context.Context, reportType string, file []byte, contentType string) (string, error) {
	object := "reports/" + uuid.NewString()
	var storageRef string
	var err error
	if reportType == models.ReportTypePDF {
		storageRef, err = s.media.UploadPrivate(ctx, object+".pdf", file, contentType)
	} else {
		storageRef, err = s.media.UploadPublic(ctx, object, file, contentType)
	}
	if err != nil {
		return "", fmt.Errorf("failed to upload report file: %w", err)
	}
	return storageRef, nil
}

func (s *reportService) getReport(ctx context.Context, reportID string) (*models.Report, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: report with ID '%s'", ErrReportNotFound, reportID)
		}
		return nil, fmt.Errorf("failed to get report '%s': %w", reportID, err)
	}
	return report, nil
}

func (s *reportService) buildView(ctx context.Context, report *models.Report) (*ReportView, error) {
	url := report.StorageRef
	if report.Type == models.ReportTypePDF {
		signed, err := s.media.SignedURL(report.StorageRef, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("failed to sign URL for report '%s': %w", report.ID, err)
		}
		url = signed
	}

	owner, err := s.userRepo.GetByID(ctx, report.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner of report '%s': %w", report.ID, err)
	}
	return &ReportView{
		Report: report,
		URL:    url,
		Owner:  owner.Public(),
	}, nil
}
