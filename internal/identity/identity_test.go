package identity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestProvider(t *testing.T) *LocalProvider {
	t.Helper()
	p, err := NewLocalProvider(kvstore.NewMemoryStore(), LocalConfig{
		Secret:     "test-secret",
		Expiry:     time.Hour,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return p
}

func TestRegistrationValidate(t *testing.T) {
	valid := Registration{Email: "ana@example.com", Password: "secret1", Name: "Ana", Role: user.RolePassenger}

	tests := []struct {
		name    string
		mutate  func(r *Registration)
		wantErr error
	}{
		{"valid", func(r *Registration) {}, nil},
		{"missing email", func(r *Registration) { r.Email = "" }, ErrMissingEmail},
		{"bad email", func(r *Registration) { r.Email = "not-an-email" }, ErrInvalidEmail},
		{"missing password", func(r *Registration) { r.Password = "" }, ErrMissingPassword},
		{"short password", func(r *Registration) { r.Password = "abc" }, ErrWeakPassword},
		{"missing name", func(r *Registration) { r.Name = "" }, ErrMissingName},
		{"missing role", func(r *Registration) { r.Role = "" }, user.ErrInvalidRole},
		{"unknown role", func(r *Registration) { r.Role = "admin" }, user.ErrInvalidRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLocalProvider_RegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	id, err := p.Register(ctx, Registration{
		Email:    "  Juan@Example.com ",
		Password: "secret1",
		Name:     "Juan Dela Cruz",
		Role:     user.RoleDriver,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id.UserID)
	assert.Equal(t, "juan@example.com", id.Email)
	assert.True(t, id.IsDriver())

	token, loggedIn, err := p.Login(ctx, "juan@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, id, loggedIn)

	verified, err := p.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, id, verified)
}

func TestLocalProvider_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	reg := Registration{Email: "ana@example.com", Password: "secret1", Name: "Ana", Role: user.RolePassenger}
	_, err := p.Register(ctx, reg)
	require.NoError(t, err)

	reg.Email = "ANA@example.com"
	_, err = p.Register(ctx, reg)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLocalProvider_WrongPassword(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)

	_, err := p.Register(ctx, Registration{Email: "ana@example.com", Password: "secret1", Name: "Ana", Role: user.RolePassenger})
	require.NoError(t, err)

	_, _, err = p.Login(ctx, "ana@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = p.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalProvider_RejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	p := newTestProvider(t)
	id := Identity{UserID: "u1", Role: user.RolePassenger}

	t.Run("garbage", func(t *testing.T) {
		_, err := p.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewLocalProvider(kvstore.NewMemoryStore(), LocalConfig{Secret: "other"})
		require.NoError(t, err)
		token, err := other.IssueToken(id)
		require.NoError(t, err)

		_, err = p.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		p.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		defer func() { p.now = time.Now }()
		token, err := p.IssueToken(id)
		require.NoError(t, err)
		p.now = time.Now

		_, err = p.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown role", func(t *testing.T) {
		token, err := p.IssueToken(Identity{UserID: "u1", Role: "admin"})
		require.NoError(t, err)

		_, err = p.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrMissingRole)
	})

	t.Run("none algorithm", func(t *testing.T) {
		c := jwt.RegisteredClaims{Subject: "u1", Issuer: "byahenow"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, c).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = p.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestNewLocalProvider_RequiresSecret(t *testing.T) {
	_, err := NewLocalProvider(kvstore.NewMemoryStore(), LocalConfig{})
	assert.Error(t, err)
}

func TestIdentityFromClaims(t *testing.T) {
	id, err := identityFromClaims("uid-1", map[string]interface{}{
		"role":  "driver",
		"email": "d@example.com",
		"name":  "Pedro",
	})
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "uid-1", Email: "d@example.com", Name: "Pedro", Role: user.RoleDriver}, id)

	_, err = identityFromClaims("uid-1", map[string]interface{}{})
	assert.ErrorIs(t, err, ErrMissingRole)

	_, err = identityFromClaims("", map[string]interface{}{"role": "driver"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIsThreePartJWT(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.IssueToken(Identity{UserID: "u1", Role: user.RoleDriver})
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
}
