package db

import (
	"context"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"medishare-backend-go/internal/models"
)

const auditLogsCollection = "auditLogs"

// firestoreAuditRepository implements the AuditRepository interface using
// Firestore. Documents are only ever created, never updated or deleted;
// integrity relies on database access control.
type firestoreAuditRepository struct {
	client *firestore.Client
}

// NewFirestoreAuditRepository creates a new instance of firestoreAuditRepository.
func NewFirestoreAuditRepository(client *firestore.Client) AuditRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AuditRepository.")
	}
	return &firestoreAuditRepository{client: client}
}

// Create appends a new audit log document.
func (r *firestoreAuditRepository) Create(ctx context.Context, entry models.AuditLog) error {
	docRef := r.client.Collection(auditLogsCollection).NewDoc()
	entry.ID = docRef.ID
	if _, err := docRef.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListByResources returns all audit entries for the given resource
// identifiers, newest first. Resource lists longer than a single Firestore
// "in" clause are queried in chunks and merged.
func (r *firestoreAuditRepository) ListByResources(ctx context.Context, resources []string) ([]*models.AuditLog, error) {
	if len(resources) == 0 {
		return nil, nil
	}

	var entries []*models.AuditLog
	for start := 0; start < len(resources); start += maxInClause {
		end := start + maxInClause
		if end > len(resources) {
			end = len(resources)
		}

		iter := r.client.Collection(auditLogsCollection).
			Where("resource", "in", resources[start:end]).
			Documents(ctx)
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				iter.Stop()
				return nil, fmt.Errorf("failed to iterate audit logs: %w", err)
			}

			var entry models.AuditLog
			if err := doc.DataTo(&entry); err != nil {
				log.Printf("Error decoding audit log (ID: %s): %v. Skipping.", doc.Ref.ID, err)
				continue
			}
			entry.ID = doc.Ref.ID
			entries = append(entries, &entry)
		}
		iter.Stop()
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}
