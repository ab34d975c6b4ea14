package identity

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/maasin/byahenow/internal/domain/user"
)

// FirebaseProvider verifies Firebase ID tokens and creates Firebase users.
// The role lives in a custom claim set at signup.
type FirebaseProvider struct {
	client *auth.Client
}

// NewFirebaseProvider wraps an initialized auth client
func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) Verify(ctx context.Context, token string) (Identity, error) {
	t, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return identityFromClaims(t.UID, t.Claims)
}

func (p *FirebaseProvider) Register(ctx context.Context, reg Registration) (Identity, error) {
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return Identity{}, err
	}

	params := (&auth.UserToCreate{}).
		Email(reg.Email).
		Password(reg.Password).
		DisplayName(reg.Name)

	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) || auth.IsUIDAlreadyExists(err) {
			return Identity{}, ErrEmailTaken
		}
		return Identity{}, fmt.Errorf("create firebase user: %w", err)
	}

	if err := p.client.SetCustomUserClaims(ctx, rec.UID, map[string]interface{}{"role": string(reg.Role)}); err != nil {
		return Identity{}, fmt.Errorf("set role claim for %s: %w", rec.UID, err)
	}

	return Identity{UserID: rec.UID, Email: reg.Email, Name: reg.Name, Role: reg.Role}, nil
}

func identityFromClaims(uid string, c map[string]interface{}) (Identity, error) {
	if uid == "" {
		return Identity{}, ErrInvalidToken
	}
	rawRole, _ := c["role"].(string)
	role, err := user.ParseRole(rawRole)
	if err != nil {
		return Identity{}, ErrMissingRole
	}
	email, _ := c["email"].(string)
	name, _ := c["name"].(string)
	return Identity{UserID: uid, Email: email, Name: name, Role: role}, nil
}
