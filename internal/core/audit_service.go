package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
)

// auditService implements the AuditService interface.
type auditService struct {
	auditRepo  db.AuditRepository
	reportRepo db.ReportRepository
	sharedRepo db.SharedReportRepository
	userRepo   db.UserRepository
	logger     *zap.Logger
}

// NewAuditService creates a new AuditService instance.
func NewAuditService(
	auditRepo db.AuditRepository,
	reportRepo db.ReportRepository,
	sharedRepo db.SharedReportRepository,
	userRepo db.UserRepository,
	logger *zap.Logger,
) AuditService {
	return &auditService{
		auditRepo:  auditRepo,
		reportRepo: reportRepo,
		sharedRepo: sharedRepo,
		userRepo:   userRepo,
		logger:     logger,
	}
}

// Record appends one audit entry. The timestamp is set here when the caller
// leaves it zero.
func (s *auditService) Record(ctx context.Context, entry models.AuditLog) error {
	if entry.Action == "" || entry.Resource == "" {
		return fmt.Errorf("%w: audit entry needs an action and a resource", ErrValidation)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// ListForUser returns the audit trail for every report the user owns or is
// shared on, newest first, annotated with report titles and actor profiles.
func (s *auditService) ListForUser(ctx context.Context, userID string) ([]*AuditLogView, error) {
	owned, err := s.reportRepo.GetByOwnerID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports for user '%s': %w", userID, err)
	}
	shares, err := s.sharedRepo.GetBySharedWith(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares for user '%s': %w", userID, err)
	}

	resources := make([]string, 0, len(owned)+len(shares))
	titles := make(map[string]string, len(owned))
	seen := make(map[string]bool, len(owned)+len(shares))
	for _, report := range owned {
		resource := models.ReportResource(report.ID)
		resources = append(resources, resource)
		titles[resource] = report.Title
		seen[resource] = true
	}
	for _, share := range shares {
		resource := models.ReportResource(share.ReportID)
		if !seen[resource] {
			resources = append(resources, resource)
			seen[resource] = true
		}
	}
	if len(resources) == 0 {
		return []*AuditLogView{}, nil
	}

	entries, err := s.auditRepo.ListByResources(ctx, resources)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries for user '%s': %w", userID, err)
	}

	// Shared reports are not loaded above, so their titles are resolved
	// lazily; actor profiles are cached per listing.
	actors := make(map[string]*models.PublicUser)
	views := make([]*AuditLogView, 0, len(entries))
	for _, entry := range entries {
		view := &AuditLogView{
			AuditLog:     entry,
			ResourceName: s.resourceTitle(ctx, entry.Resource, titles),
		}
		if entry.UserID != "" {
			view.User = s.actorProfile(ctx, entry.UserID, actors)
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *auditService) resourceTitle(ctx context.Context, resource string, titles map[string]string) string {
	if title, ok := titles[resource]; ok {
		return title
	}
	reportID := strings.TrimPrefix(resource, "report:")
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		s.logger.Warn("failed to resolve audit resource title", zap.String("resource", resource), zap.Error(err))
		titles[resource] = resource
		return resource
	}
	titles[resource] = report.Title
	return report.Title
}

func (s *auditService) actorProfile(ctx context.Context, userID string, actors map[string]*models.PublicUser) *models.PublicUser {
	if actor, ok := actors[userID]; ok {
		return actor
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.Warn("failed to resolve audit actor", zap.String("userId", userID), zap.Error(err))
		actors[userID] = nil
		return nil
	}
	public := user.Public()
	actors[userID] = &public
	return &public
}
