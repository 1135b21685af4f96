package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareTokenRoundTrip(t *testing.T) {
	t.Parallel()
	m, err := NewManager("secret")
	require.NoError(t, err)

	tok, err := m.IssueShare("report-1", ModeOTP, "123456", time.Hour)
	require.NoError(t, err)

	claims, err := m.VerifyShare(tok)
	require.NoError(t, err)
	assert.Equal(t, "report-1", claims.ReportID)
	assert.Equal(t, ModeOTP, claims.Type)
	assert.Equal(t, "123456", claims.OTP)
}

func TestIssueShareModeRules(t *testing.T) {
	t.Parallel()
	m, err := NewManager("secret")
	require.NoError(t, err)

	_, err = m.IssueShare("report-1", ModeOTP, "", time.Hour)
	assert.Error(t, err, "otp mode requires a code")

	_, err = m.IssueShare("report-1", ModeQR, "123456", time.Hour)
	assert.Error(t, err, "qr mode carries no code")

	_, err = m.IssueShare("report-1", "magic", "", time.Hour)
	assert.Error(t, err)

	_, err = m.IssueShare("", ModeQR, "", time.Hour)
	assert.Error(t, err)
}

func TestVerifyShareExpired(t *testing.T) {
	t.Parallel()
	m, err := NewManager("secret")
	require.NoError(t, err)

	tok, err := m.IssueShare("report-1", ModeQR, "", -time.Minute)
	require.NoError(t, err)

	_, err = m.VerifyShare(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyShareExpiredWinsOverBadSignature(t *testing.T) {
	t.Parallel()
	issuer, err := NewManager("issuer-secret")
	require.NoError(t, err)
	verifier, err := NewManager("other-secret")
	require.NoError(t, err)

	tok, err := issuer.IssueShare("report-1", ModeQR, "", -time.Minute)
	require.NoError(t, err)

	_, err = verifier.VerifyShare(tok)
	assert.ErrorIs(t, err, ErrTokenExpired, "an elapsed expiry is reported even when the signature does not check out")
}

func TestVerifyShareTampered(t *testing.T) {
	t.Parallel()
	issuer, err := NewManager("issuer-secret")
	require.NoError(t, err)
	verifier, err := NewManager("other-secret")
	require.NoError(t, err)

	tok, err := issuer.IssueShare("report-1", ModeQR, "", time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyShare(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = verifier.VerifyShare("definitely-not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSessionTokenRoundTrip(t *testing.T) {
	t.Parallel()
	m, err := NewManager("secret")
	require.NoError(t, err)

	tok, err := m.IssueSession("user-1", "pat@example.com", time.Hour)
	require.NoError(t, err)

	claims, err := m.VerifySession(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "pat@example.com", claims.Email)
}

func TestSessionTokenNotValidAsShareToken(t *testing.T) {
	t.Parallel()
	m, err := NewManager("secret")
	require.NoError(t, err)

	tok, err := m.IssueSession("user-1", "pat@example.com", time.Hour)
	require.NoError(t, err)

	// A session token decodes but carries no share mode.
	_, err = m.VerifyShare(tok)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestNewManagerRequiresSecret(t *testing.T) {
	t.Parallel()
	_, err := NewManager("")
	assert.Error(t, err)
}
