package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"medishare-backend-go/internal/models"
)

const otpSharesCollection = "otpShares"

// firestoreOtpShareRepository implements the OtpShareRepository interface
// using Firestore.
type firestoreOtpShareRepository struct {
	client *firestore.Client
}

// NewFirestoreOtpShareRepository creates a new instance of firestoreOtpShareRepository.
func NewFirestoreOtpShareRepository(client *firestore.Client) OtpShareRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for OtpShareRepository.")
	}
	return &firestoreOtpShareRepository{client: client}
}

// Create adds a new OTP share document with an auto-generated ID.
func (r *firestoreOtpShareRepository) Create(ctx context.Context, share *models.OtpShare) (string, error) {
	if share == nil {
		return "", errors.New("share cannot be nil for Create operation")
	}
	docRef := r.client.Collection(otpSharesCollection).NewDoc()
	share.ID = docRef.ID
	if _, err := docRef.Create(ctx, share); err != nil {
		return "", fmt.Errorf("failed to create otp share: %w", err)
	}
	return docRef.ID, nil
}
