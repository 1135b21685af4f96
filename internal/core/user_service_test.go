package core

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"medishare-backend-go/internal/crypto"
	"medishare-backend-go/internal/models"
)

func newUserFixture(t *testing.T) (UserService, *fakeUserRepo, *models.User, []byte) {
	t.Helper()

	users := newFakeUserRepo()
	key := bytes.Repeat([]byte{0x33}, 32)

	user := &models.User{Email: "pat@example.com", Name: "Pat", Age: 30}
	_, err := users.Create(context.Background(), user)
	require.NoError(t, err)

	return NewUserService(users, newFakeMedia(), key), users, user, key
}

func TestGetByIDUnknownUser(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newUserFixture(t)

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdateProfilePartial(t *testing.T) {
	t.Parallel()
	svc, users, user, _ := newUserFixture(t)

	name := "Patricia"
	age := 31
	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Name: &name, Age: &age})
	require.NoError(t, err)
	assert.Equal(t, "Patricia", updated.Name)
	assert.Equal(t, 31, updated.Age)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", stored.Email, "untouched fields stay as they were")
}

func TestUpdateProfileValidation(t *testing.T) {
	t.Parallel()
	svc, _, user, _ := newUserFixture(t)

	empty := ""
	_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Name: &empty})
	assert.ErrorIs(t, err, ErrValidation)

	zero := 0
	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Age: &zero})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{FaceDescriptor: make([]float64, 16)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProfileRehashesPassword(t *testing.T) {
	t.Parallel()
	svc, users, user, _ := newUserFixture(t)

	password := "new-password"
	_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Password: &password})
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)))
}

func TestUpdateProfileReplacesDescriptor(t *testing.T) {
	t.Parallel()
	svc, users, user, key := newUserFixture(t)

	_, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{FaceDescriptor: referenceDescriptor()})
	require.NoError(t, err)

	stored, err := users.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	descriptor, err := crypto.DecryptDescriptor(stored.FaceDescriptor, key)
	require.NoError(t, err)
	assert.Equal(t, referenceDescriptor(), descriptor)
}

func TestUpdateProfileUploadsAvatar(t *testing.T) {
	t.Parallel()
	svc, _, user, _ := newUserFixture(t)

	updated, err := svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{
		Avatar:            []byte("new-avatar"),
		AvatarContentType: "image/png",
	})
	require.NoError(t, err)
	assert.Contains(t, updated.AvatarURL, "avatars/")
}
