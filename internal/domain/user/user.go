package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
)

// KeyPrefix is the store namespace for profiles
const KeyPrefix = "user:"

// Key returns the store key for a user's profile
func Key(userID string) string {
	return KeyPrefix + userID
}

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidRole     = errors.New("role must be one of passenger, driver")
	ErrInvalidProfile  = errors.New("invalid profile data")
)

// Role is fixed at signup and carried in every bearer token
type Role string

const (
	RolePassenger Role = "passenger"
	RoleDriver    Role = "driver"
)

// ParseRole maps a wire value onto the closed role set
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RolePassenger, RoleDriver:
		return r, nil
	}
	return "", ErrInvalidRole
}

// Profile represents a registered user
type Profile struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Role        Role               `json:"role"`
	PlateNumber string             `json:"plateNumber,omitempty"`
	VehicleType driver.VehicleType `json:"vehicleType,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   *time.Time         `json:"updatedAt,omitempty"`
}

// ProfileUpdate holds the editable fields. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name        *string
	PlateNumber *string
	VehicleType *driver.VehicleType
}

// Apply merges the update into p and stamps UpdatedAt
func (p *Profile) Apply(u ProfileUpdate, now time.Time) {
	if u.Name != nil {
		p.Name = strings.TrimSpace(*u.Name)
	}
	if u.PlateNumber != nil {
		p.PlateNumber = strings.TrimSpace(*u.PlateNumber)
	}
	if u.VehicleType != nil {
		p.VehicleType = *u.VehicleType
	}
	p.UpdatedAt = &now
}

// Repository defines the interface for profile data access
type Repository interface {
	Get(ctx context.Context, userID string) (*Profile, error)
	Put(ctx context.Context, p *Profile) error
}
