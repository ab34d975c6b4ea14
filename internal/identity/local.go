package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/pkg/kvstore"
	"golang.org/x/crypto/bcrypt"
)

const credentialPrefix = "auth:"

// LocalConfig configures the self-hosted provider
type LocalConfig struct {
	Secret     string
	Issuer     string
	Expiry     time.Duration
	BcryptCost int
}

type credential struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         user.Role `json:"role"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

type claims struct {
	Role  user.Role `json:"role"`
	Email string    `json:"email,omitempty"`
	Name  string    `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// LocalProvider keeps bcrypt credentials in the key-value store and issues
// HS256 tokens carrying the role claim.
type LocalProvider struct {
	store  kvstore.Store
	config LocalConfig
	now    func() time.Time

	// serializes the existence check and write in Register
	mu sync.Mutex
}

// NewLocalProvider creates a provider backed by store
func NewLocalProvider(store kvstore.Store, cfg LocalConfig) (*LocalProvider, error) {
	if cfg.Secret == "" {
		return nil, errors.New("local identity provider requires a signing secret")
	}
	if cfg.Expiry <= 0 {
		cfg.Expiry = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "byahenow"
	}
	return &LocalProvider{store: store, config: cfg, now: time.Now}, nil
}

func credentialKey(email string) string {
	return credentialPrefix + strings.ToLower(strings.TrimSpace(email))
}

// Register creates credentials and returns the new identity
func (p *LocalProvider) Register(ctx context.Context, reg Registration) (Identity, error) {
	reg = reg.Normalize()
	if err := reg.Validate(); err != nil {
		return Identity{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), p.config.BcryptCost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := credentialKey(reg.Email)
	if _, err := p.store.Get(ctx, key); err == nil {
		return Identity{}, ErrEmailTaken
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		return Identity{}, err
	}

	cred := credential{
		UserID:       uuid.New().String(),
		Email:        reg.Email,
		Name:         reg.Name,
		Role:         reg.Role,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := kvstore.SetJSON(ctx, p.store, key, cred); err != nil {
		return Identity{}, err
	}
	return cred.identity(), nil
}

// Login checks the password and issues a token
func (p *LocalProvider) Login(ctx context.Context, email, password string) (string, Identity, error) {
	var cred credential
	err := kvstore.GetJSON(ctx, p.store, credentialKey(email), &cred)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", Identity{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return "", Identity{}, ErrInvalidCredentials
	}

	id := cred.identity()
	token, err := p.IssueToken(id)
	if err != nil {
		return "", Identity{}, err
	}
	return token, id, nil
}

// IssueToken signs a token for id
func (p *LocalProvider) IssueToken(id Identity) (string, error) {
	now := p.now()
	c := claims{
		Role:  id.Role,
		Email: id.Email,
		Name:  id.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			Issuer:    p.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.config.Expiry)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(p.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates an HS256 token
func (p *LocalProvider) Verify(_ context.Context, token string) (Identity, error) {
	var c claims
	parsed, err := jwt.ParseWithClaims(token, &c, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(p.config.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrInvalidToken
	}
	if c.Subject == "" || !c.VerifyIssuer(p.config.Issuer, true) {
		return Identity{}, ErrInvalidToken
	}
	role, err := user.ParseRole(string(c.Role))
	if err != nil {
		return Identity{}, ErrMissingRole
	}
	return Identity{UserID: c.Subject, Email: c.Email, Name: c.Name, Role: role}, nil
}

func (c credential) identity() Identity {
	return Identity{UserID: c.UserID, Email: c.Email, Name: c.Name, Role: c.Role}
}
