package config

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimum environment for LoadConfig to succeed.
// Viper reads the process environment, so these tests cannot run in
// parallel.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("FIREBASE_PROJECT_ID", "medishare-test")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/creds.json")
	t.Setenv("STORAGE_BUCKET", "medishare-test.appspot.com")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{0x11}, 32)))
	t.Setenv("CLIENT_URL", "https://app.example.com")
}

func TestLoadConfig(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port, "port defaults when unset")
	assert.Equal(t, "debug", cfg.GinMode)
	assert.Equal(t, "medishare-test", cfg.FirebaseProjectID)
	assert.False(t, cfg.MessagingConfigured())

	key, err := cfg.DecodedEncryptionKey()
	require.NoError(t, err)
	assert.Len(t, key, 32)
}

func TestLoadConfigMissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfigRejectsBadEncryptionKey(t *testing.T) {
	setRequiredEnv(t)

	t.Setenv("ENCRYPTION_KEY", "!!! not base64 !!!")
	_, err := LoadConfig()
	assert.Error(t, err)

	// Valid base64 but the wrong size for AES-256.
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("too short")))
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRequiresSomeCredentialSource(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", "")

	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64", base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`)))
	_, err = LoadConfig()
	assert.NoError(t, err)
}

func TestMessagingConfigured(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_WHATSAPP_FROM", "+15550009999")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.MessagingConfigured())
}
