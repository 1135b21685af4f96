package models

import (
	"fmt"
	"time"
)

// Audit actions recorded against a report.
const (
	AuditActionCreate = "create"
	AuditActionEdit   = "edit"
	AuditActionDelete = "delete"
	AuditActionView   = "view"
)

// AuditLog is one immutable event record. Entries are append-only; nothing
// in the system mutates or deletes them.
type AuditLog struct {
	ID string `json:"id" firestore:"-"`
	// UserID is empty for anonymous token-based views (OTP/QR redemption
	// is not bound to an identity).
	UserID    string    `json:"userId,omitempty" firestore:"userId"`
	Action    string    `json:"action" firestore:"action"`
	Resource  string    `json:"resource" firestore:"resource"` // "report:<id>"
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// ReportResource builds the resource identifier for a report.
func ReportResource(reportID string) string {
	return fmt.Sprintf("report:%s", reportID)
}
