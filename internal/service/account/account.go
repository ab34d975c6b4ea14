package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/internal/identity"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/logger"
)

// SignupInput is a registration plus the optional driver vehicle details
type SignupInput struct {
	identity.Registration
	PlateNumber string
	VehicleType string
}

// Service handles signup, login and profile edits
type Service struct {
	provider identity.Provider
	profiles user.Repository
	logger   *logger.Logger
	now      func() time.Time
}

// NewService creates a new account service
func NewService(provider identity.Provider, profiles user.Repository, log *logger.Logger) *Service {
	return &Service{
		provider: provider,
		profiles: profiles,
		logger:   log.Named("account"),
		now:      time.Now,
	}
}

// Signup registers the account with the identity provider and stores its
// profile
func (s *Service) Signup(ctx context.Context, in SignupInput) (*user.Profile, error) {
	vt, err := driver.ParseOptionalVehicleType(in.VehicleType)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	id, err := s.provider.Register(ctx, in.Registration)
	if err != nil {
		return nil, s.registrationError(err)
	}

	p := &user.Profile{
		ID:          id.UserID,
		Email:       id.Email,
		Name:        id.Name,
		Role:        id.Role,
		PlateNumber: strings.TrimSpace(in.PlateNumber),
		VehicleType: vt,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.profiles.Put(ctx, p); err != nil {
		s.logger.Error("Account created but profile write failed",
			logger.String("user_id", id.UserID),
			logger.Err(err),
		)
		return nil, apperrors.StoreUnavailable("Failed to save profile", err)
	}

	s.logger.Info("Account created",
		logger.String("user_id", p.ID),
		logger.String("role", string(p.Role)),
	)
	return p, nil
}

// Login exchanges credentials for a token when the provider supports it
func (s *Service) Login(ctx context.Context, email, password string) (string, *user.Profile, error) {
	auth, ok := s.provider.(identity.PasswordAuthenticator)
	if !ok {
		return "", nil, apperrors.NotImplemented("Password login is handled by the identity provider client", nil)
	}
	if strings.TrimSpace(email) == "" || password == "" {
		return "", nil, apperrors.Validation("Email and password are required", nil)
	}

	token, id, err := auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return "", nil, apperrors.Unauthenticated("Invalid email or password", err)
		}
		return "", nil, apperrors.StoreUnavailable("Failed to log in", err)
	}

	p, err := s.profiles.Get(ctx, id.UserID)
	if errors.Is(err, user.ErrProfileNotFound) {
		p = profileFromIdentity(id)
	} else if err != nil {
		return "", nil, apperrors.StoreUnavailable("Failed to load profile", err)
	}
	return token, p, nil
}

// GetProfile returns the caller's profile
func (s *Service) GetProfile(ctx context.Context, id identity.Identity) (*user.Profile, error) {
	if id.UserID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	p, err := s.profiles.Get(ctx, id.UserID)
	if errors.Is(err, user.ErrProfileNotFound) {
		return nil, apperrors.ErrProfileNotFound
	}
	if err != nil {
		s.logger.Error("Failed to load profile", logger.String("user_id", id.UserID), logger.Err(err))
		return nil, apperrors.StoreUnavailable("Failed to load profile", err)
	}
	return p, nil
}

// UpdateProfile merges the update into the caller's profile, creating it
// from the token if it does not exist yet. Role and email never change here.
func (s *Service) UpdateProfile(ctx context.Context, id identity.Identity, upd user.ProfileUpdate) (*user.Profile, error) {
	if id.UserID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return nil, apperrors.Validation("name cannot be empty", user.ErrInvalidProfile)
	}

	p, err := s.profiles.Get(ctx, id.UserID)
	switch {
	case errors.Is(err, user.ErrProfileNotFound):
		p = profileFromIdentity(id)
		p.CreatedAt = s.now().UTC()
	case err != nil:
		return nil, apperrors.StoreUnavailable("Failed to load profile", err)
	}

	p.Apply(upd, s.now().UTC())
	if err := s.profiles.Put(ctx, p); err != nil {
		s.logger.Error("Failed to save profile", logger.String("user_id", id.UserID), logger.Err(err))
		return nil, apperrors.StoreUnavailable("Failed to save profile", err)
	}
	return p, nil
}

func (s *Service) registrationError(err error) error {
	switch {
	case errors.Is(err, identity.ErrEmailTaken):
		return apperrors.Conflict("Email already registered", err)
	case errors.Is(err, identity.ErrMissingEmail),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrMissingPassword),
		errors.Is(err, identity.ErrWeakPassword),
		errors.Is(err, identity.ErrMissingName),
		errors.Is(err, user.ErrInvalidRole):
		return apperrors.Validation(err.Error(), err)
	}
	s.logger.Error("Identity provider registration failed", logger.Err(err))
	return apperrors.Internal("Failed to create account", err)
}

func profileFromIdentity(id identity.Identity) *user.Profile {
	return &user.Profile{ID: id.UserID, Email: id.Email, Name: id.Name, Role: id.Role}
}
