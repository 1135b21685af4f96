// Package token mints and verifies the signed bearer tokens used by the
// share flows (OTP and QR access links) and by session cookies. Verification
// is pure: no state is read or written, and nothing enforces single
// redemption, so a share token is valid until its natural expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Share token modes.
const (
	ModeOTP = "otp"
	ModeQR  = "qr"
)

var (
	// ErrTokenInvalid covers malformed tokens, bad signatures and wrong
	// signing algorithms.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired is returned for well-formed, correctly signed tokens
	// whose expiry has elapsed.
	ErrTokenExpired = errors.New("token expired")
)

// ShareClaims binds a report identifier to a share mode. OTP-mode tokens
// additionally embed the 6-digit code as a plain claim; QR-mode tokens carry
// nothing beyond the report and mode, so possession of the token is the
// credential.
type ShareClaims struct {
	ReportID string `json:"reportId"`
	Type     string `json:"type"`
	OTP      string `json:"otp,omitempty"`
	jwt.RegisteredClaims
}

// SessionClaims identifies a logged-in user.
type SessionClaims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a single HMAC-SHA256 secret.
type Manager struct {
	secret []byte
}

// NewManager creates a Manager for the given signing secret.
func NewManager(secret string) (*Manager, error) {
	if secret == "" {
		return nil, errors.New("token: signing secret must not be empty")
	}
	return &Manager{secret: []byte(secret)}, nil
}

// IssueShare mints a share token for reportID in the given mode. otp must be
// set for ModeOTP and empty for ModeQR.
func (m *Manager) IssueShare(reportID, mode, otp string, ttl time.Duration) (string, error) {
	if reportID == "" {
		return "", errors.New("token: reportID must not be empty")
	}
	switch mode {
	case ModeOTP:
		if otp == "" {
			return "", errors.New("token: otp code required for otp mode")
		}
	case ModeQR:
		if otp != "" {
			return "", errors.New("token: qr mode carries no otp code")
		}
	default:
		return "", fmt.Errorf("token: unknown share mode %q", mode)
	}

	now := time.Now()
	claims := ShareClaims{
		ReportID: reportID,
		Type:     mode,
		OTP:      otp,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifyShare validates a share token and returns its decoded claims.
func (m *Manager) VerifyShare(tok string) (*ShareClaims, error) {
	claims := &ShareClaims{}
	if err := m.verify(tok, claims); err != nil {
		return nil, err
	}
	if claims.Type != ModeOTP && claims.Type != ModeQR {
		return nil, ErrTokenInvalid
	}
	if claims.ReportID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IssueSession mints a session token for an authenticated user.
func (m *Manager) IssueSession(userID, email string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("token: userID must not be empty")
	}
	now := time.Now()
	claims := SessionClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// VerifySession validates a session token and returns its decoded claims.
func (m *Manager) VerifySession(tok string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := m.verify(tok, claims); err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (m *Manager) verify(tok string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		// An elapsed expiry always reports ErrTokenExpired, even when the
		// signature check also failed.
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	return nil
}
