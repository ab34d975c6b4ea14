package kv

import (
	"context"
	"errors"

	"github.com/maasin/byahenow/internal/domain/fare"
	"github.com/maasin/byahenow/pkg/kvstore"
)

// FareRepository stores the catalog as a single document
type FareRepository struct {
	store kvstore.Store
}

// NewFareRepository creates a new fare repository
func NewFareRepository(store kvstore.Store) *FareRepository {
	return &FareRepository{store: store}
}

func (r *FareRepository) Get(ctx context.Context) (*fare.Catalog, error) {
	var c fare.Catalog
	err := kvstore.GetJSON(ctx, r.store, fare.CatalogKey, &c)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, fare.ErrCatalogNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *FareRepository) Put(ctx context.Context, c *fare.Catalog) error {
	return kvstore.SetJSON(ctx, r.store, fare.CatalogKey, c)
}
