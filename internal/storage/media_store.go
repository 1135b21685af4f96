// Package storage handles media persistence in Google Cloud Storage:
// report files, avatars and generated QR images. Images and QR codes are
// uploaded publicly readable; PDFs are uploaded private and resolved to
// short-lived signed URLs on every read.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"

	"medishare-backend-go/internal/config"
	"medishare-backend-go/internal/db"
)

// MediaStore wraps a GCS bucket.
type MediaStore struct {
	client *storage.Client
	bucket string
}

// NewMediaStore creates a MediaStore for the bucket named in appConfig,
// using the same credential resolution as the Firestore client.
func NewMediaStore(ctx context.Context, appConfig *config.Config) (*MediaStore, error) {
	if appConfig == nil {
		return nil, errors.New("NewMediaStore: appConfig cannot be nil")
	}
	if appConfig.StorageBucket == "" {
		return nil, errors.New("NewMediaStore: storage bucket is not configured")
	}

	credsOption, err := db.CredentialsOption(appConfig)
	if err != nil {
		return nil, err
	}

	var client *storage.Client
	if credsOption != nil {
		client, err = storage.NewClient(ctx, credsOption)
	} else {
		client, err = storage.NewClient(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("storage.NewClient: %w", err)
	}

	return &MediaStore{client: client, bucket: appConfig.StorageBucket}, nil
}

// UploadPublic writes data to object and makes it publicly readable.
// Returns the public URL.
func (s *MediaStore) UploadPublic(ctx context.Context, object string, data []byte, contentType string) (string, error) {
	if err := s.upload(ctx, object, data, contentType, true); err != nil {
		return "", err
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, object), nil
}

// UploadPrivate writes data to object with no public access. Returns the
// object name; readers go through SignedURL.
func (s *MediaStore) UploadPrivate(ctx context.Context, object string, data []byte, contentType string) (string, error) {
	if err := s.upload(ctx, object, data, contentType, false); err != nil {
		return "", err
	}
	return object, nil
}

func (s *MediaStore) upload(ctx context.Context, object string, data []byte, contentType string, public bool) error {
	if object == "" {
		return errors.New("object name cannot be empty")
	}

	w := s.client.Bucket(s.bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if public {
		w.PredefinedACL = "publicRead"
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write object '%s': %w", object, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object '%s': %w", object, err)
	}
	return nil
}

// SignedURL returns a V4 signed GET URL for a private object.
func (s *MediaStore) SignedURL(object string, ttl time.Duration) (string, error) {
	if object == "" {
		return "", errors.New("object name cannot be empty")
	}
	url, err := s.client.Bucket(s.bucket).SignedURL(object, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for object '%s': %w", object, err)
	}
	return url, nil
}

// Close releases the underlying client.
func (s *MediaStore) Close() error {
	return s.client.Close()
}
