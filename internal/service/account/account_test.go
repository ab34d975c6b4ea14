package account

import (
	"context"
	"testing"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/internal/identity"
	"github.com/maasin/byahenow/internal/repository/kv"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccounts(t *testing.T) (*Service, *identity.LocalProvider) {
	t.Helper()
	store := kvstore.NewMemoryStore()
	provider, err := identity.NewLocalProvider(store, identity.LocalConfig{Secret: "s", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	return NewService(provider, kv.NewUserRepository(store), logger.NewNop()), provider
}

func driverSignup() SignupInput {
	return SignupInput{
		Registration: identity.Registration{
			Email:    "juan@example.com",
			Password: "secret1",
			Name:     "Juan Dela Cruz",
			Role:     user.RoleDriver,
		},
		PlateNumber: "ABC-123",
		VehicleType: "tricycle",
	}
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccounts(t)

	p, err := svc.Signup(ctx, driverSignup())
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, user.RoleDriver, p.Role)
	assert.Equal(t, driver.VehicleTricycle, p.VehicleType)
	assert.Equal(t, "ABC-123", p.PlateNumber)

	stored, err := svc.GetProfile(ctx, identity.Identity{UserID: p.ID})
	require.NoError(t, err)
	assert.Equal(t, p.Email, stored.Email)
}

func TestSignup_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		mutate   func(in *SignupInput)
		wantCode string
	}{
		{"missing email", func(in *SignupInput) { in.Email = "" }, apperrors.CodeValidation},
		{"missing password", func(in *SignupInput) { in.Password = "" }, apperrors.CodeValidation},
		{"missing name", func(in *SignupInput) { in.Name = "" }, apperrors.CodeValidation},
		{"missing role", func(in *SignupInput) { in.Role = "" }, apperrors.CodeValidation},
		{"unknown role", func(in *SignupInput) { in.Role = "admin" }, apperrors.CodeValidation},
		{"unknown vehicle", func(in *SignupInput) { in.VehicleType = "bus" }, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newAccounts(t)
			in := driverSignup()
			tt.mutate(&in)
			_, err := svc.Signup(ctx, in)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperrors.GetAppError(err).Code)
		})
	}

	t.Run("duplicate", func(t *testing.T) {
		svc, _ := newAccounts(t)
		_, err := svc.Signup(ctx, driverSignup())
		require.NoError(t, err)
		_, err = svc.Signup(ctx, driverSignup())
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, provider := newAccounts(t)

	p, err := svc.Signup(ctx, driverSignup())
	require.NoError(t, err)

	token, got, err := svc.Login(ctx, "juan@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "ABC-123", got.PlateNumber)

	id, err := provider.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id.UserID)

	_, _, err = svc.Login(ctx, "juan@example.com", "nope")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	_, _, err = svc.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

type verifyOnly struct{ identity.Provider }

func TestLogin_NotSupported(t *testing.T) {
	svc, provider := newAccounts(t)
	svc.provider = verifyOnly{provider}

	_, _, err := svc.Login(context.Background(), "a@example.com", "secret1")
	assert.Equal(t, apperrors.CodeNotImplemented, apperrors.GetAppError(err).Code)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _ := newAccounts(t)
	_, err := svc.GetProfile(context.Background(), identity.Identity{UserID: "ghost", Role: user.RolePassenger})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfile_Merges(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccounts(t)

	p, err := svc.Signup(ctx, driverSignup())
	require.NoError(t, err)
	id := identity.Identity{UserID: p.ID, Role: user.RoleDriver}

	at := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return at }

	plate := "XYZ-987"
	updated, err := svc.UpdateProfile(ctx, id, user.ProfileUpdate{PlateNumber: &plate})
	require.NoError(t, err)
	assert.Equal(t, "XYZ-987", updated.PlateNumber)
	assert.Equal(t, "Juan Dela Cruz", updated.Name)
	assert.Equal(t, user.RoleDriver, updated.Role)
	require.NotNil(t, updated.UpdatedAt)
	assert.Equal(t, at, *updated.UpdatedAt)

	empty := " "
	_, err = svc.UpdateProfile(ctx, id, user.ProfileUpdate{Name: &empty})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUpdateProfile_CreatesMissing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAccounts(t)

	name := "Ana"
	id := identity.Identity{UserID: "u9", Email: "ana@example.com", Role: user.RolePassenger}
	p, err := svc.UpdateProfile(ctx, id, user.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", p.Email)
	assert.Equal(t, user.RolePassenger, p.Role)

	got, err := svc.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}
