package core

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
	"medishare-backend-go/internal/token"
)

// accessService implements the AccessService interface. Redemption is
// anonymous: nothing ties the request to an account, and the audit entry
// for the resulting view carries no user.
type accessService struct {
	reportRepo db.ReportRepository
	userRepo   db.UserRepository
	tokens     ShareTokens
	media      MediaStorage
	audit      AuditService
}

// NewAccessService creates a new AccessService instance.
func NewAccessService(
	reportRepo db.ReportRepository,
	userRepo db.UserRepository,
	tokens ShareTokens,
	media MediaStorage,
	audit AuditService,
) AccessService {
	return &accessService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		tokens:     tokens,
		media:      media,
		audit:      audit,
	}
}

// RedeemOTP exchanges a token plus its 6-digit code for the report. The
// token and the code are checked before any state changes, so a wrong code
// leaves no trace in the view counter or the audit log.
func (s *accessService) RedeemOTP(ctx context.Context, tok, otp string) (*ReportView, error) {
	claims, err := s.tokens.VerifyShare(tok)
	if err != nil {
		return nil, err
	}
	if claims.Type != token.ModeOTP {
		return nil, token.ErrTokenInvalid
	}
	if otp == "" || subtle.ConstantTimeCompare([]byte(claims.OTP), []byte(otp)) != 1 {
		return nil, ErrInvalidOtp
	}
	return s.redeem(ctx, claims.ReportID)
}

// RedeemQR exchanges a bearer token for the report. Possession of the
// token is the whole credential.
func (s *accessService) RedeemQR(ctx context.Context, tok string) (*ReportView, error) {
	claims, err := s.tokens.VerifyShare(tok)
	if err != nil {
		return nil, err
	}
	if claims.Type != token.ModeQR {
		return nil, token.ErrTokenInvalid
	}
	return s.redeem(ctx, claims.ReportID)
}

// redeem performs the anonymous read: bump the view counter, record the
// userless view event and resolve the media URL.
func (s *accessService) redeem(ctx context.Context, reportID string) (*ReportView, error) {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: report with ID '%s'", ErrReportNotFound, reportID)
		}
		return nil, fmt.Errorf("failed to get report '%s': %w", reportID, err)
	}

	if err := s.reportRepo.IncrementViews(ctx, reportID); err != nil {
		return nil, fmt.Errorf("failed to increment views for report '%s': %w", reportID, err)
	}
	report.Views++

	if err := s.audit.Record(ctx, models.AuditLog{
		Action:   models.AuditActionView,
		Resource: models.ReportResource(reportID),
	}); err != nil {
		return nil, fmt.Errorf("failed to record view audit entry for report '%s': %w", reportID, err)
	}

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
