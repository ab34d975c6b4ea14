package fare

import (
	"context"
	"errors"

	"github.com/maasin/byahenow/internal/domain/driver"
)

// CatalogKey is where the Maasin City fare table is stored
const CatalogKey = "fares:maasin"

var (
	ErrCatalogNotFound = errors.New("fare catalog not found")
	ErrEmptyCatalog    = errors.New("fare catalog has no entries")
)

// Entry is one route's fare. Fare and Distance are display strings such as
// "15-20" and "3km".
type Entry struct {
	Route    string `json:"route" yaml:"route"`
	Fare     string `json:"fare" yaml:"fare"`
	Distance string `json:"distance" yaml:"distance"`
}

// Catalog groups fares by vehicle type
type Catalog struct {
	Tricycle []Entry `json:"tricycle" yaml:"tricycle"`
	Multicab []Entry `json:"multicab" yaml:"multicab"`
}

// For returns the entries for one vehicle type
func (c *Catalog) For(vt driver.VehicleType) []Entry {
	switch vt {
	case driver.VehicleTricycle:
		return c.Tricycle
	case driver.VehicleMulticab:
		return c.Multicab
	}
	return nil
}

// Validate rejects a catalog with no routes at all
func (c *Catalog) Validate() error {
	if len(c.Tricycle) == 0 && len(c.Multicab) == 0 {
		return ErrEmptyCatalog
	}
	return nil
}

// Repository defines the interface for catalog access
type Repository interface {
	Get(ctx context.Context) (*Catalog, error)
	Put(ctx context.Context, c *Catalog) error
}
