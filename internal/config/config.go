package config

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Port                             string `mapstructure:"PORT"`
	GinMode                          string `mapstructure:"GIN_MODE"`
	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`
	StorageBucket                    string `mapstructure:"STORAGE_BUCKET"`
	JWTSecret                        string `mapstructure:"JWT_SECRET"`
	EncryptionKey                    string `mapstructure:"ENCRYPTION_KEY"` // Base64 encoded, 32 bytes
	TwilioAccountSID                 string `mapstructure:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken                  string `mapstructure:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppFrom               string `mapstructure:"TWILIO_WHATSAPP_FROM"`
	ClientURL                        string `mapstructure:"CLIENT_URL"`
}

// LoadConfig loads configuration from environment variables using Viper.
// A local .env file is applied first when present.
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")

	for _, key := range []string{
		"PORT",
		"GIN_MODE",
		"FIREBASE_PROJECT_ID",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
		"STORAGE_BUCKET",
		"JWT_SECRET",
		"ENCRYPTION_KEY",
		"TWILIO_ACCOUNT_SID",
		"TWILIO_AUTH_TOKEN",
		"TWILIO_WHATSAPP_FROM",
		"CLIENT_URL",
	} {
		if err := viper.BindEnv(key); err != nil {
			return nil, errors.New("failed to bind env var " + key + ": " + err.Error())
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is required")
	}
	if cfg.GoogleApplicationCredentials == "" && cfg.FirebaseServiceAccountJSONBase64 == "" {
		return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
	}
	if cfg.StorageBucket == "" {
		return nil, errors.New("STORAGE_BUCKET is required")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}
	if cfg.EncryptionKey == "" {
		return nil, errors.New("ENCRYPTION_KEY is required")
	}
	if _, err := cfg.DecodedEncryptionKey(); err != nil {
		return nil, err
	}
	if cfg.ClientURL == "" {
		return nil, errors.New("CLIENT_URL is required")
	}

	return &cfg, nil
}

// DecodedEncryptionKey returns the raw AES key bytes.
func (c *Config) DecodedEncryptionKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.EncryptionKey)
	if err != nil {
		return nil, errors.New("ENCRYPTION_KEY is not valid base64: " + err.Error())
	}
	if len(key) != 32 {
		return nil, errors.New("ENCRYPTION_KEY must decode to 32 bytes for AES-256")
	}
	return key, nil
}

// MessagingConfigured reports whether Twilio credentials are present.
// WhatsApp dispatch is degraded (logged and skipped) when they are not.
func (c *Config) MessagingConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioWhatsAppFrom != ""
}
