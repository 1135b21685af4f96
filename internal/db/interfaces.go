package db

import (
	"context"

	"medishare-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) (string, error) // Returns new user ID
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// ReportRepository defines the interface for report data storage operations.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) (string, error) // Returns new report ID
	GetByID(ctx context.Context, reportID string) (*models.Report, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]*models.Report, error)
	GetByIDs(ctx context.Context, reportIDs []string) ([]*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	AddComment(ctx context.Context, reportID string, comment models.Comment) error
	// IncrementViews bumps the view counter by one. The counter is
	// unbounded and monotonic; callers do not deduplicate.
	IncrementViews(ctx context.Context, reportID string) error
}

// SharedReportRepository defines the interface for share-record storage.
type SharedReportRepository interface {
	GetByReportID(ctx context.Context, reportID string) (*models.SharedReport, error)
	GetBySharedWith(ctx context.Context, userID string) ([]*models.SharedReport, error)
	// GrantAccess adds targetUserID to the report's sharableUsers and to the
	// report's share record (created on first share) in a single write
	// batch, so the two sets cannot desync on a partial failure.
	GrantAccess(ctx context.Context, reportID, sharedBy, targetUserID, accessType string) error
}

// OtpShareRepository defines the interface for OTP share record storage.
// Records are write-once: they are redeemed via their token or expire
// silently, and no cleanup job deletes them.
type OtpShareRepository interface {
	Create(ctx context.Context, share *models.OtpShare) (string, error)
}

// AuditRepository defines the interface for audit log storage operations.
// The log is append-only; there are no update or delete operations.
type AuditRepository interface {
	Create(ctx context.Context, entry models.AuditLog) error
	// ListByResources returns all entries touching the given resource
	// identifiers, newest first.
	ListByResources(ctx context.Context, resources []string) ([]*models.AuditLog, error)
}
