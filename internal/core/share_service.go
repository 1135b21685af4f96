package core

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
	"medishare-backend-go/internal/qr"
	"medishare-backend-go/internal/token"
)

// Share tokens expire 30 minutes after issue, in both OTP and QR mode.
const (
	otpShareTTL = 30 * time.Minute
	qrShareTTL  = 30 * time.Minute
)

// shareService implements the ShareService interface. It resolves a share
// request to one of three provisioning strategies: a durable face-mode
// grant to an existing account, an OTP share sent over WhatsApp, or a QR
// code wrapping a bearer access link.
type shareService struct {
	reportRepo db.ReportRepository
	userRepo   db.UserRepository
	sharedRepo db.SharedReportRepository
	otpRepo    db.OtpShareRepository
	tokens     ShareTokens
	sender     MessageSender
	media      MediaStorage
	clientURL  string
	logger     *zap.Logger
}

// NewShareService creates a new ShareService instance. sender may be nil
// when no messaging channel is configured; OTP codes and QR links are then
// only returned in logs for operators to relay manually.
func NewShareService(
	reportRepo db.ReportRepository,
	userRepo db.UserRepository,
	sharedRepo db.SharedReportRepository,
	otpRepo db.OtpShareRepository,
	tokens ShareTokens,
	sender MessageSender,
	media MediaStorage,
	clientURL string,
	logger *zap.Logger,
) ShareService {
	return &shareService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		sharedRepo: sharedRepo,
		otpRepo:    otpRepo,
		tokens:     tokens,
		sender:     sender,
		media:      media,
		clientURL:  strings.TrimRight(clientURL, "/"),
		logger:     logger,
	}
}

// Share dispatches the request to the strategy for its access type. Only
// the report owner may share.
func (s *shareService) Share(ctx context.Context, actorID, reportID string, req models.ShareReportRequest) error {
	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: report with ID '%s'", ErrReportNotFound, reportID)
		}
		return fmt.Errorf("failed to get report '%s': %w", reportID, err)
	}
	if report.OwnerID != actorID {
		return fmt.Errorf("%w: only the owner may share report '%s'", ErrAccessDenied, reportID)
	}

	switch req.AccessType {
	case models.AccessTypeFace:
		return s.shareFace(ctx, actorID, report, req.Email)
	case models.AccessTypeOTP:
		return s.shareOTP(ctx, report, req.Phone)
	case models.AccessTypeQR:
		return s.shareQR(ctx, report, req.Phone)
	default:
		return fmt.Errorf("%w: unknown access type %q", ErrValidation, req.AccessType)
	}
}

// shareFace grants a named account durable access, gated by a face
// challenge on every view.
func (s *shareService) shareFace(ctx context.Context, actorID string, report *models.Report, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("%w: email is required for face sharing", ErrValidation)
	}

	target, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return fmt.Errorf("%w: no account for '%s'", ErrUserNotFound, email)
		}
		return fmt.Errorf("failed to get user by email '%s': %w", email, err)
	}
	if target.ID == actorID {
		return ErrShareToSelf
	}
	if report.IsSharedWith(target.ID) {
		return ErrAlreadyShared
	}

	if err := s.sharedRepo.GrantAccess(ctx, report.ID, actorID, target.ID, models.AccessTypeFace); err != nil {
		return fmt.Errorf("failed to grant access to report '%s': %w", report.ID, err)
	}
	return nil
}

// shareOTP mints a 30-minute token with an embedded 6-digit code, records
// the share and delivers the code over WhatsApp when a phone is given.
// Delivery failure does not roll the share back.
func (s *shareService) shareOTP(ctx context.Context, report *models.Report, phone string) error {
	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}
	tok, err := s.tokens.IssueShare(report.ID, token.ModeOTP, otp, otpShareTTL)
	if err != nil {
		return fmt.Errorf("failed to issue otp share token: %w", err)
	}

	now := time.Now().UTC()
	share := &models.OtpShare{
		ReportID:  report.ID,
		Token:     tok,
		OTP:       otp,
		ExpiresAt: now.Add(otpShareTTL),
		CreatedAt: now,
	}
	if _, err := s.otpRepo.Create(ctx, share); err != nil {
		return fmt.Errorf("failed to record otp share: %w", err)
	}

	link := s.clientURL + "/otp-access?token=" + url.QueryEscape(tok)
	body := fmt.Sprintf("A medical report %q was shared with you. Open %s and enter code %s. The code expires in 30 minutes.", report.Title, link, otp)
	s.deliver(report.ID, phone, body, "")
	return nil
}

// shareQR mints a 30-minute bearer token, renders its access link as a QR
// image and uploads the image; the PNG is delivered over WhatsApp when a
// phone is given.
func (s *shareService) shareQR(ctx context.Context, report *models.Report, phone string) error {
	tok, err := s.tokens.IssueShare(report.ID, token.ModeQR, "", qrShareTTL)
	if err != nil {
		return fmt.Errorf("failed to issue qr share token: %w", err)
	}

	link := s.clientURL + "/qr-access?token=" + url.QueryEscape(tok)
	png, err := qr.EncodePNG(link)
	if err != nil {
		return fmt.Errorf("failed to render qr code: %w", err)
	}
	mediaURL, err := s.media.UploadPublic(ctx, "qr/"+uuid.NewString()+".png", png, "image/png")
	if err != nil {
		return fmt.Errorf("failed to upload qr code: %w", err)
	}

	body := fmt.Sprintf("A medical report %q was shared with you. Scan the attached QR code within 30 minutes to view it.", report.Title)
	s.deliver(report.ID, phone, body, mediaURL)
	return nil
}

func (s *shareService) deliver(reportID, phone, body, mediaURL string) {
	phone = strings.TrimSpace(phone)
	if phone == "" || s.sender == nil {
		s.logger.Info("share created without delivery channel", zap.String("reportId", reportID))
		return
	}
	if err := s.sender.Send(phone, body, mediaURL); err != nil {
		s.logger.Warn("failed to deliver share notification",
			zap.String("reportId", reportID), zap.Error(err))
	}
}

// generateOTP draws a uniform 6-digit code from crypto/rand.
func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
