package core

import "errors"

// Error taxonomy shared by the services. Handlers map these onto HTTP
// statuses; token-layer errors (invalid/expired) live in internal/token.
var (
	ErrUnauthorized    = errors.New("authentication required")
	ErrAccessDenied    = errors.New("access denied")
	ErrReportNotFound  = errors.New("report not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserExists      = errors.New("user already exists")
	ErrValidation      = errors.New("validation failed")
	ErrAlreadyShared   = errors.New("report already shared with this user")
	ErrShareToSelf     = errors.New("cannot share a report with yourself")
	ErrInvalidOtp      = errors.New("invalid otp")
	ErrFaceNotVerified = errors.New("face verification required")
)
