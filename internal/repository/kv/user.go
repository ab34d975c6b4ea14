package kv

import (
	"context"
	"errors"

	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/pkg/kvstore"
)

// UserRepository stores profiles under user:<id>
type UserRepository struct {
	store kvstore.Store
}

// NewUserRepository creates a new profile repository
func NewUserRepository(store kvstore.Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Get(ctx context.Context, userID string) (*user.Profile, error) {
	var p user.Profile
	err := kvstore.GetJSON(ctx, r.store, user.Key(userID), &p)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, user.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *UserRepository) Put(ctx context.Context, p *user.Profile) error {
	if p.ID == "" {
		return user.ErrInvalidProfile
	}
	return kvstore.SetJSON(ctx, r.store, user.Key(p.ID), p)
}
