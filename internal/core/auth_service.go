package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"medishare-backend-go/internal/crypto"
	"medishare-backend-go/internal/db"
	"medishare-backend-go/internal/models"
	"medishare-backend-go/internal/token"
)

// sessionTTL is how long a login or signup session cookie stays valid.
const sessionTTL = 7 * 24 * time.Hour

// SignupInput carries the multipart signup form. Every field is required;
// the face descriptor captured here is the ground truth for all future
// face-match challenges for this account.
type SignupInput struct {
	Email             string
	Password          string
	Name              string
	Age               int
	Role              string
	FaceDescriptor    []float64
	Avatar            []byte
	AvatarContentType string
}

// authService implements the AuthService interface.
type authService struct {
	userRepo      db.UserRepository
	tokens        *token.Manager
	media         MediaStorage
	encryptionKey []byte
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(userRepo db.UserRepository, tokens *token.Manager, media MediaStorage, encryptionKey []byte) AuthService {
	return &authService{
		userRepo:      userRepo,
		tokens:        tokens,
		media:         media,
		encryptionKey: encryptionKey,
	}
}

// Signup creates a new account: validates the form, uploads the avatar,
// hashes the password, encrypts the face descriptor and issues a session.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*models.User, string, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" || strings.TrimSpace(in.Name) == "" || len(in.Avatar) == 0 {
		return nil, "", fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if in.Age < 1 {
		return nil, "", fmt.Errorf("%w: age must be at least 1", ErrValidation)
	}
	if !models.ValidRole(in.Role) {
		return nil, "", fmt.Errorf("%w: unknown role %q", ErrValidation, in.Role)
	}
	if len(in.FaceDescriptor) != models.FaceDescriptorLength {
		return nil, "", fmt.Errorf("%w: face descriptor must have %d elements", ErrValidation, models.FaceDescriptorLength)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, "", fmt.Errorf("%w: email '%s' is taken", ErrUserExists, email)
	} else if !errors.Is(err, db.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check for existing user '%s': %w", email, err)
	}

	avatarURL, err := s.media.UploadPublic(ctx, "avatars/"+uuid.NewString(), in.Avatar, in.AvatarContentType)
	if err != nil {
		return nil, "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	encDescriptor, err := crypto.EncryptDescriptor(in.FaceDescriptor, s.encryptionKey)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encrypt face descriptor: %w", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:          email,
		PasswordHash:   string(hash),
		Name:           strings.TrimSpace(in.Name),
		Age:            in.Age,
		AvatarURL:      avatarURL,
		Role:           in.Role,
		FaceDescriptor: encDescriptor,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	sessionToken, err := s.tokens.IssueSession(user.ID, user.Email, sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return user, sessionToken, nil
}

// Login verifies a password against the stored hash. Unknown emails and bad
// passwords both report ErrUnauthorized, so the response does not reveal
// which accounts exist.
func (s *authService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, "", ErrUnauthorized
		}
		return nil, "", fmt.Errorf("failed to get user by email '%s': %w", email, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrUnauthorized
	}

	sessionToken, err := s.tokens.IssueSession(user.ID, user.Email, sessionTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session token: %w", err)
	}
	return user, sessionToken, nil
}
