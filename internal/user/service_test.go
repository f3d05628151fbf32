package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nekogravitycat/civic-directory-backend/internal/auth"
)

type fakeLookup map[string]bool

func (f fakeLookup) Exists(_ context.Context, id string) (bool, error) {
	return f[id], nil
}

func newTestService(t *testing.T, services ServiceLookup) Service {
	t.Helper()
	return NewService(NewMemoryRepository(), auth.NewBcryptPasswordHasher(4), services, zap.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	u, err := svc.Register(ctx, RegisterRequest{
		Phone:       "+63 912 345 6789",
		Password:    "password1",
		DisplayName: "  Juan  ",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "+639123456789", u.Phone)
	assert.Equal(t, "Juan", u.DisplayName)
	assert.Equal(t, RoleCitizen, u.Role)

	t.Run("Duplicate phone", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Phone: "+639123456789", Password: "password1", DisplayName: "Other"})
		assert.ErrorIs(t, err, ErrPhoneAlreadyUsed)
	})

	t.Run("Provider needs organization", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Phone: "+639170000000", Password: "password1", DisplayName: "P", Role: RoleProvider})
		assert.ErrorIs(t, err, ErrOrganizationRequired)
	})

	t.Run("Invalid input", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Phone: "123", Password: "password1", DisplayName: "X"})
		assert.ErrorIs(t, err, ErrPhoneInvalid)
		_, err = svc.Register(ctx, RegisterRequest{Phone: "+639170000001", Password: "short", DisplayName: "X"})
		assert.ErrorIs(t, err, ErrPasswordTooShort)
		_, err = svc.Register(ctx, RegisterRequest{Phone: "+639170000001", Password: "password1", DisplayName: " "})
		assert.ErrorIs(t, err, ErrDisplayNameRequired)
		_, err = svc.Register(ctx, RegisterRequest{Phone: "+639170000001", Password: "password1", DisplayName: "X", Role: "admin"})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("Login", func(t *testing.T) {
		logged, err := svc.Login(ctx, "+63-912-345-6789", "password1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, logged.ID)
		assert.NotNil(t, logged.LastLoginAt)

		_, err = svc.Login(ctx, "+639123456789", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(ctx, "+639999999999", "password1")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	provider, err := svc.Register(ctx, RegisterRequest{
		Phone: "+639170000010", Password: "password1", DisplayName: "Clinic", Role: RoleProvider, Organization: "City Health",
	})
	require.NoError(t, err)
	other, err := svc.Register(ctx, RegisterRequest{Phone: "+639170000011", Password: "password1", DisplayName: "Other"})
	require.NoError(t, err)

	name := "Barangay Clinic"
	updated, err := svc.UpdateProfile(ctx, provider.ID, UpdateProfileRequest{DisplayName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.DisplayName)
	require.NotNil(t, updated.Organization)
	assert.Equal(t, "City Health", *updated.Organization)

	empty := ""
	_, err = svc.UpdateProfile(ctx, provider.ID, UpdateProfileRequest{Organization: &empty})
	assert.ErrorIs(t, err, ErrOrganizationRequired)

	_, err = svc.UpdateProfile(ctx, provider.ID, UpdateProfileRequest{Phone: &other.Phone})
	assert.ErrorIs(t, err, ErrPhoneAlreadyUsed)

	newPhone := "+639170000012"
	updated, err = svc.UpdateProfile(ctx, provider.ID, UpdateProfileRequest{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)

	_, err = svc.Login(ctx, newPhone, "password1")
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, "missing", UpdateProfileRequest{DisplayName: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, fakeLookup{"svc-1": true, "svc-2": true})

	u, err := svc.Register(ctx, RegisterRequest{Phone: "+639170000020", Password: "password1", DisplayName: "Ana"})
	require.NoError(t, err)

	ids, err := svc.AddFavorite(ctx, u.ID, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"svc-1"}, ids)

	// Adding twice keeps a single entry.
	ids, err = svc.AddFavorite(ctx, u.ID, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"svc-1"}, ids)

	ids, err = svc.AddFavorite(ctx, u.ID, "svc-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"svc-1", "svc-2"}, ids)

	_, err = svc.AddFavorite(ctx, u.ID, "unknown")
	assert.ErrorIs(t, err, ErrServiceNotFound)

	ids, err = svc.RemoveFavorite(ctx, u.ID, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"svc-2"}, ids)

	got, err := svc.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, got.HasFavorite("svc-2"))
	assert.False(t, got.HasFavorite("svc-1"))
}
