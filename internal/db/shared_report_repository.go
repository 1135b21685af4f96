package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medishare-backend-go/internal/models"
)

const sharedReportsCollection = "sharedReports"

// firestoreSharedReportRepository implements the SharedReportRepository
// interface using Firestore. Share records are keyed by their report ID, so
// there is at most one record per report.
type firestoreSharedReportRepository struct {
	client *firestore.Client
}

// NewFirestoreSharedReportRepository creates a new instance of firestoreSharedReportRepository.
func NewFirestoreSharedReportRepository(client *firestore.Client) SharedReportRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SharedReportRepository.")
	}
	return &firestoreSharedReportRepository{client: client}
}

// GetByReportID retrieves the share record for a report.
func (r *firestoreSharedReportRepository) GetByReportID(ctx context.Context, reportID string) (*models.SharedReport, error) {
	if reportID == "" {
		return nil, errors.New("reportID cannot be empty for GetByReportID operation")
	}
	docSnap, err := r.client.Collection(sharedReportsCollection).Doc(reportID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("share record for report '%s' not found: %w", reportID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get share record for report '%s': %w", reportID, err)
	}

	var shared models.SharedReport
	if err := docSnap.DataTo(&shared); err != nil {
		return nil, fmt.Errorf("failed to decode share record for report '%s': %w", reportID, err)
	}
	shared.ID = docSnap.Ref.ID
	return &shared, nil
}

// GetBySharedWith retrieves all share records listing userID as a recipient,
// newest first.
func (r *firestoreSharedReportRepository) GetBySharedWith(ctx context.Context, userID string) ([]*models.SharedReport, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetBySharedWith operation")
	}

	iter := r.client.Collection(sharedReportsCollection).
		Where("sharedWith", "array-contains", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var records []*models.SharedReport
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate share records for user '%s': %w", userID, err)
		}

		var shared models.SharedReport
		if err := doc.DataTo(&shared); err != nil {
			log.Printf("Error decoding share record (ID: %s) for user '%s': %v. Skipping.", doc.Ref.ID, userID, err)
			continue
		}
		shared.ID = doc.Ref.ID
		records = append(records, &shared)
	}
	return records, nil
}

// GrantAccess adds targetUserID to both the report's sharableUsers array and
// the share record's sharedWith array in one write batch. The two sets are
// meant to stay in sync; batching keeps a partial failure from splitting them.
func (r *firestoreSharedReportRepository) GrantAccess(ctx context.Context, reportID, sharedBy, targetUserID, accessType string) error {
	if reportID == "" || targetUserID == "" {
		return errors.New("reportID and targetUserID cannot be empty for GrantAccess operation")
	}

	reportRef := r.client.Collection(reportsCollection).Doc(reportID)
	sharedRef := r.client.Collection(sharedReportsCollection).Doc(reportID)

	batch := r.client.Batch()
	batch.Update(reportRef, []firestore.Update{
		{Path: "sharableUsers", Value: firestore.ArrayUnion(targetUserID)},
	})
	batch.Set(sharedRef, map[string]interface{}{
		"reportId":   reportID,
		"sharedBy":   sharedBy,
		"accessType": accessType,
		"sharedWith": firestore.ArrayUnion(targetUserID),
		"createdAt":  time.Now().UTC(),
	}, firestore.MergeAll)

	if _, err := batch.Commit(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("report with ID '%s' not found: %w", reportID, ErrNotFound)
		}
		return fmt.Errorf("failed to grant access on report '%s' to user '%s': %w", reportID, targetUserID, err)
	}
	return nil
}
