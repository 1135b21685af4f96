package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"medishare-backend-go/internal/models"
)

const reportsCollection = "reports"

// Firestore "in" queries accept at most this many values per clause.
const maxInClause = 30

// firestoreReportRepository implements the ReportRepository interface using Firestore.
type firestoreReportRepository struct {
	client *firestore.Client
}

// NewFirestoreReportRepository creates a new instance of firestoreReportRepository.
func NewFirestoreReportRepository(client *firestore.Client) ReportRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ReportRepository.")
	}
	return &firestoreReportRepository{client: client}
}

// Create adds a new report document with an auto-generated ID.
func (r *firestoreReportRepository) Create(ctx context.Context, report *models.Report) (string, error) {
	docRef := r.client.Collection(reportsCollection).NewDoc()
	report.ID = docRef.ID
	if _, err := docRef.Create(ctx, report); err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a report document by its ID.
func (r *firestoreReportRepository) GetByID(ctx context.Context, reportID string) (*models.Report, error) {
	if reportID == "" {
		return nil, errors.New("reportID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(reportsCollection).Doc(reportID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("report with ID '%s' not found: %w", reportID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get report with ID '%s': %w", reportID, err)
	}

	var report models.Report
	if err := docSnap.DataTo(&report); err != nil {
		return nil, fmt.Errorf("failed to decode report data for ID '%s': %w", reportID, err)
	}
	report.ID = docSnap.Ref.ID
	return &report, nil
}

// GetByOwnerID retrieves all reports owned by a user, newest first.
func (r *firestoreReportRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]*models.Report, error) {
	if ownerID == "" {
		return nil, errors.New("ownerID cannot be empty for GetByOwnerID operation")
	}

	iter := r.client.Collection(reportsCollection).
		Where("ownerId", "==", ownerID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	var reports []*models.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate reports for owner '%s': %w", ownerID, err)
		}

		var report models.Report
		if err := doc.DataTo(&report); err != nil {
			log.Printf("Error decoding report data (ID: %s) for owner '%s': %v. Skipping.", doc.Ref.ID, ownerID, err)
			continue
		}
		report.ID = doc.Ref.ID
		reports = append(reports, &report)
	}
	return reports, nil
}

// GetByIDs retrieves the reports with the given IDs. Missing IDs are
// silently skipped; the result preserves no particular order.
func (r *firestoreReportRepository) GetByIDs(ctx context.Context, reportIDs []string) ([]*models.Report, error) {
	if len(reportIDs) == 0 {
		return nil, nil
	}

	var reports []*models.Report
	for start := 0; start < len(reportIDs); start += maxInClause {
		end := start + maxInClause
		if end > len(reportIDs) {
			end = len(reportIDs)
		}

		iter := r.client.Collection(reportsCollection).
			Where(firestore.DocumentID, "in", docRefs(r.client.Collection(reportsCollection), reportIDs[start:end])).
			Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, fmt.Errorf("failed to iterate reports by IDs: %w", err)
			}

			var report models.Report
			if err := doc.DataTo(&report); err != nil {
				log.Printf("Error decoding report data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
				continue
			}
			report.ID = doc.Ref.ID
			reports = append(reports, &report)
		}
		iter.Stop()
	}
	return reports, nil
}

func docRefs(coll *firestore.CollectionRef, ids []string) []*firestore.DocumentRef {
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, coll.Doc(id))
	}
	return refs
}

// Update overwrites an existing report document.
func (r *firestoreReportRepository) Update(ctx context.Context, report *models.Report) error {
	if report.ID == "" {
		return errors.New("report ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(reportsCollection).Doc(report.ID).Set(ctx, report)
	if err != nil {
		return fmt.Errorf("failed to update report with ID '%s': %w", report.ID, err)
	}
	return nil
}

// AddComment appends a comment to the report's inline comment list.
func (r *firestoreReportRepository) AddComment(ctx context.Context, reportID string, comment models.Comment) error {
	if reportID == "" {
		return errors.New("reportID cannot be empty for AddComment operation")
	}
	_, err := r.client.Collection(reportsCollection).Doc(reportID).Update(ctx, []firestore.Update{
		{Path: "comments", Value: firestore.ArrayUnion(comment)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("report with ID '%s' not found: %w", reportID, ErrNotFound)
		}
		return fmt.Errorf("failed to add comment to report '%s': %w", reportID, err)
	}
	return nil
}

// IncrementViews bumps the report's view counter by one.
func (r *firestoreReportRepository) IncrementViews(ctx context.Context, reportID string) error {
	if reportID == "" {
		return errors.New("reportID cannot be empty for IncrementViews operation")
	}
	_, err := r.client.Collection(reportsCollection).Doc(reportID).Update(ctx, []firestore.Update{
		{Path: "views", Value: firestore.Increment(1)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("report with ID '%s' not found: %w", reportID, ErrNotFound)
		}
		return fmt.Errorf("failed to increment views for report '%s': %w", reportID, err)
	}
	return nil
}
