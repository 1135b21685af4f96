package models

// LoginRequest is the request body for password login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ShareReportRequest is the request body for sharing a report. Exactly one
// of Email (face mode) or Phone (otp/qr delivery) is meaningful per mode.
type ShareReportRequest struct {
	AccessType string `json:"accessType" binding:"required,oneof=face otp qr"`
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// CommentRequest is the request body for adding a comment to a report.
type CommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// FaceFrameRequest carries one detection frame from the client camera loop:
// the computed descriptor plus the detector's confidence for that frame.
type FaceFrameRequest struct {
	Descriptor []float64 `json:"descriptor" binding:"required"`
	Confidence float64   `json:"confidence"`
}

// OtpAccessRequest redeems an OTP share token.
type OtpAccessRequest struct {
	Token string `json:"token" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// QrAccessRequest redeems a QR share token.
type QrAccessRequest struct {
	Token string `json:"token" binding:"required"`
}
