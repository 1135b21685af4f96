package db

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"medishare-backend-go/internal/config"
)

// fsClient is the global Firestore client instance, set by InitFirestore.
var fsClient *firestore.Client

// CredentialsOption resolves the Google credentials client option from the
// application config: a service account file path, a base64-encoded service
// account JSON, or nil for Application Default Credentials.
func CredentialsOption(appConfig *config.Config) (option.ClientOption, error) {
	if appConfig.GoogleApplicationCredentials != "" {
		if _, err := os.Stat(appConfig.GoogleApplicationCredentials); os.IsNotExist(err) {
			return nil, fmt.Errorf("credentials file does not exist: %s", appConfig.GoogleApplicationCredentials)
		}
		return option.WithCredentialsFile(appConfig.GoogleApplicationCredentials), nil
	}
	if appConfig.FirebaseServiceAccountJSONBase64 != "" {
		decoded, err := base64.StdEncoding.DecodeString(appConfig.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, fmt.Errorf("failed to decode FIREBASE_SERVICE_ACCOUNT_JSON_BASE64: %w", err)
		}
		return option.WithCredentialsJSON(decoded), nil
	}
	// Fall back to ADC, common on GCE/GKE/Cloud Run.
	return nil, nil
}

// InitFirestore initializes the Firebase Admin SDK and the Firestore client
// using credentials and project ID from the provided appConfig.
func InitFirestore(ctx context.Context, appConfig *config.Config) error {
	if appConfig == nil {
		return fmt.Errorf("InitFirestore: appConfig cannot be nil")
	}

	credsOption, err := CredentialsOption(appConfig)
	if err != nil {
		return err
	}

	firebaseAppConfig := &firebase.Config{ProjectID: appConfig.FirebaseProjectID}

	var app *firebase.App
	if credsOption != nil {
		app, err = firebase.NewApp(ctx, firebaseAppConfig, credsOption)
	} else {
		app, err = firebase.NewApp(ctx, firebaseAppConfig)
	}
	if err != nil {
		return fmt.Errorf("firebase.NewApp: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return fmt.Errorf("app.Firestore: %w", err)
	}
	fsClient = client
	return nil
}

// GetFirestoreClient returns the global Firestore client. It is nil until
// InitFirestore has succeeded.
func GetFirestoreClient() *firestore.Client {
	return fsClient
}
