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
)

// UpdateProfileInput is a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	Name              *string
	Age               *int
	Password          *string
	FaceDescriptor    []float64 // nil means unchanged
	Avatar            []byte    // nil means unchanged
	AvatarContentType string
}

// userService implements the UserService interface.
type userService struct {
	userRepo      db.UserRepository
	media         MediaStorage
	encryptionKey []byte
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, media MediaStorage, encryptionKey []byte) UserService {
	return &userService{
		userRepo:      userRepo,
		media:         media,
		encryptionKey: encryptionKey,
	}
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s': %w", userID, err)
	}
	return user, nil
}

// UpdateProfile applies the provided fields to the user's profile.
func (s *userService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		user.Name = name
	}
	if in.Age != nil {
		if *in.Age < 1 {
			return nil, fmt.Errorf("%w: age must be at least 1", ErrValidation)
		}
		user.Age = *in.Age
	}
	if in.Password != nil {
		if *in.Password == "" {
			return nil, fmt.Errorf("%w: password cannot be empty", ErrValidation)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	if in.FaceDescriptor != nil {
		if len(in.FaceDescriptor) != models.FaceDescriptorLength {
			return nil, fmt.Errorf("%w: face descriptor must have %d elements", ErrValidation, models.FaceDescriptorLength)
		}
		encDescriptor, err := crypto.EncryptDescriptor(in.FaceDescriptor, s.encryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt face descriptor: %w", err)
		}
		user.FaceDescriptor = encDescriptor
	}
	if in.Avatar != nil {
		avatarURL, err := s.media.UploadPublic(ctx, "avatars/"+uuid.NewString(), in.Avatar, in.AvatarContentType)
		if err != nil {
			return nil, fmt.Errorf("failed to upload avatar: %w", err)
		}
		user.AvatarURL = avatarURL
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user '%s': %w", userID, err)
	}
	return user, nil
}
