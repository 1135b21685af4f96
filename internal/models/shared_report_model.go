package models

import "time"

// Share access modes.
const (
	AccessTypeFace = "face"
	AccessTypeOTP  = "otp"
	AccessTypeQR   = "qr"
)

// SharedReport records which users a report has been shared with. One
// document per report (keyed by the report ID); sharing again appends to
// SharedWith rather than creating duplicates.
type SharedReport struct {
	ID         string    `json:"id" firestore:"-"`
	ReportID   string    `json:"reportId" firestore:"reportId"`
	SharedWith []string  `json:"sharedWith" firestore:"sharedWith"`
	SharedBy   string    `json:"sharedBy" firestore:"sharedBy"`
	AccessType string    `json:"accessType" firestore:"accessType"`
	CreatedAt  time.Time `json:"createdAt" firestore:"createdAt"`
}

// OtpShare is the persisted record of an OTP-mode share. Rows are created
// per share request and never deleted; they either get redeemed or expire
// silently.
type OtpShare struct {
	ID        string    `json:"id" firestore:"-"`
	ReportID  string    `json:"reportId" firestore:"reportId"`
	UserID    string    `json:"userId,omitempty" firestore:"userId"` // Optional, empty for public OTP
	Token     string    `json:"-" firestore:"token"`
	OTP       string    `json:"-" firestore:"otp"` // 6-digit code, also embedded in the token claims
	ExpiresAt time.Time `json:"expiresAt" firestore:"expiresAt"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}
