package models

import "time"

// Roles a user can sign up with. Patients own reports; the other roles
// exist so reports can be shared with medical staff accounts.
const (
	RolePatient    = "patient"
	RoleDoctor     = "doctor"
	RolePharmacist = "pharmacist"
	RoleDiagnostic = "diagnostic"
)

// FaceDescriptorLength is the dimensionality of the face embedding captured
// at signup. Descriptors of any other length are rejected.
const FaceDescriptorLength = 128

// ValidRole reports whether role is one of the known signup roles.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RolePharmacist, RoleDiagnostic:
		return true
	}
	return false
}

// User represents an account in the system.
type User struct {
	ID           string `json:"id" firestore:"-"` // Document ID
	Email        string `json:"email" firestore:"email"`
	PasswordHash string `json:"-" firestore:"passwordHash"`
	Name         string `json:"name" firestore:"name"`
	Age          int    `json:"age" firestore:"age"`
	AvatarURL    string `json:"avatar" firestore:"avatarUrl"`
	Role         string `json:"role" firestore:"role"`
	// FaceDescriptor holds the AES-encrypted signup embedding. It is the
	// ground truth for every future face-match challenge for this identity.
	FaceDescriptor string    `json:"-" firestore:"faceDescriptor"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updatedAt"`
}

// PublicUser is the subset of User safe to embed in report and audit
// responses (owner info, comment authors).
type PublicUser struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar"`
}

// Public returns the shareable view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, AvatarURL: u.AvatarURL}
}
