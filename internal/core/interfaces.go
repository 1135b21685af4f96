package core

import (
	"context"
	"time"

	"medishare-backend-go/internal/models"
	"medishare-backend-go/internal/token"
)

// AuthService defines the interface for signup and login.
type AuthService interface {
	// Signup creates an account and returns the user plus a session token.
	Signup(ctx context.Context, in SignupInput) (*models.User, string, error)
	// Login verifies credentials and returns the user plus a session token.
	Login(ctx context.Context, email, password string) (*models.User, string, error)
}

// UserService defines the interface for profile operations.
type UserService interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error)
}

// ReportService defines the interface for report CRUD and the read-side
// access gate.
type ReportService interface {
	CreateReport(ctx context.Context, ownerID string, in CreateReportInput) (*models.Report, error)
	// GetReport authorizes the read (owner, or face-verified sharee),
	// increments the view counter and records a view audit event.
	GetReport(ctx context.Context, viewerID, reportID string) (*ReportView, error)
	ListOwned(ctx context.Context, ownerID string) ([]*models.Report, error)
	ListSharedWith(ctx context.Context, userID string) ([]*SharedReportView, error)
	UpdateReport(ctx context.Context, ownerID, reportID string, in UpdateReportInput) (*models.Report, error)
	AddComment(ctx context.Context, userID, reportID, text string) (*models.Comment, error)
}

// ShareService is the access-mode resolver: it dispatches a share request
// to the face, otp or qr provisioning strategy.
type ShareService interface {
	Share(ctx context.Context, actorID, reportID string, req models.ShareReportRequest) error
}

// AccessService redeems share tokens, bypassing the session-based access
// gate. Redemption is not bound to any identity.
type AccessService interface {
	RedeemOTP(ctx context.Context, tok, otp string) (*ReportView, error)
	RedeemQR(ctx context.Context, tok string) (*ReportView, error)
}

// AuditService defines the interface for audit logging operations.
type AuditService interface {
	Record(ctx context.Context, entry models.AuditLog) error
	// ListForUser returns entries for every report the user owns or is
	// shared on, newest first.
	ListForUser(ctx context.Context, userID string) ([]*AuditLogView, error)
}

// FaceVerifier tracks face-verification challenge sessions for sharees and
// the time-limited access grants produced by a successful match.
type FaceVerifier interface {
	// SubmitFrame feeds one camera frame (descriptor + detector confidence)
	// into the session for (userID, reportID), creating the session on
	// first use.
	SubmitFrame(ctx context.Context, userID, reportID string, descriptor []float64, confidence float64) (*FrameResult, error)
	// Stop releases the session early (client stopped the camera).
	Stop(userID, reportID string)
	// HasGrant reports whether a successful match for (userID, reportID)
	// is still in effect.
	HasGrant(userID, reportID string) bool
}

// MediaStorage abstracts the media store (GCS in production).
type MediaStorage interface {
	UploadPublic(ctx context.Context, object string, data []byte, contentType string) (string, error)
	UploadPrivate(ctx context.Context, object string, data []byte, contentType string) (string, error)
	SignedURL(object string, ttl time.Duration) (string, error)
}

// MessageSender abstracts the out-of-band notification channel (Twilio
// WhatsApp in production).
type MessageSender interface {
	Send(to, body, mediaURL string) error
}

// ShareTokens abstracts the share-token layer for the resolver and the
// redemption service.
type ShareTokens interface {
	IssueShare(reportID, mode, otp string, ttl time.Duration) (string, error)
	VerifyShare(tok string) (*token.ShareClaims, error)
}

// ReportView is a report prepared for display: resolved media URL plus the
// owner's public profile.
type ReportView struct {
	*models.Report
	URL   string            `json:"url"`
	Owner models.PublicUser `json:"owner"`
}

// SharedReportView is one entry in the "shared with me" listing.
type SharedReportView struct {
	Report     *models.Report    `json:"report"`
	Owner      models.PublicUser `json:"owner"`
	AccessType string            `json:"accessType"`
}

// AuditLogView is an audit entry annotated for display.
type AuditLogView struct {
	*models.AuditLog
	ResourceName string             `json:"resourceName"`
	User         *models.PublicUser `json:"user,omitempty"`
}

// FrameResult reports the outcome of one verification frame.
type FrameResult struct {
	Matched     bool   `json:"matched"`
	Consecutive int    `json:"consecutive"`
	State       string `json:"state"`
}
