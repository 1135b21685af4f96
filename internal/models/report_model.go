package models

import "time"

// Report document types.
const (
	ReportTypePDF   = "pdf"
	ReportTypeImage = "image"
)

// Comment is a remark left on a report. Comments are stored inline on the
// report document, matching how they are always read (never queried alone).
type Comment struct {
	UserID    string    `json:"userId" firestore:"userId"`
	Text      string    `json:"text" firestore:"text"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// Report represents a single uploaded medical document or image.
type Report struct {
	ID          string `json:"id" firestore:"-"` // Document ID
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description,omitempty" firestore:"description"`
	OwnerID     string `json:"ownerId" firestore:"ownerId"` // Set at creation, immutable
	Type        string `json:"type" firestore:"type"`       // "pdf" or "image"
	// StorageRef is the public URL for images, or the private object name
	// for PDFs (resolved to a short-lived signed URL on every read).
	StorageRef string `json:"-" firestore:"storageRef"`
	// SharableUsers grows via face-mode share actions; members must pass a
	// face-verification challenge before each view.
	SharableUsers []string `json:"sharableUsers" firestore:"sharableUsers"`
	// Views is incremented on every successful fetch. Monotonic, no
	// deduplication per viewer or session.
	Views     int64     `json:"views" firestore:"views"`
	Comments  []Comment `json:"comments" firestore:"comments"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// IsSharedWith reports whether userID has been granted face-mode access.
func (r *Report) IsSharedWith(userID string) bool {
	for _, id := range r.SharableUsers {
		if id == userID {
			return true
		}
	}
	return false
}
