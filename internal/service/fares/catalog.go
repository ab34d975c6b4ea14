package fares

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/maasin/byahenow/internal/domain/fare"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/logger"
	"gopkg.in/yaml.v3"
)

//go:embed default_fares.yaml
var defaultFaresYAML []byte

// DefaultCatalog returns the built-in Maasin City fare table
func DefaultCatalog() (*fare.Catalog, error) {
	return parseCatalog(defaultFaresYAML)
}

// LoadCatalog reads a YAML fare table from path
func LoadCatalog(path string) (*fare.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fare seed %s: %w", path, err)
	}
	c, err := parseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("fare seed %s: %w", path, err)
	}
	return c, nil
}

func parseCatalog(data []byte) (*fare.Catalog, error) {
	var c fare.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse fare catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Service serves the fare catalog, seeding it on first read
type Service struct {
	repo   fare.Repository
	seed   *fare.Catalog
	logger *logger.Logger

	// serializes seeding within this process
	mu sync.Mutex
}

// NewService creates a new fare service. seed is written to the store the
// first time the catalog is read and found missing.
func NewService(repo fare.Repository, seed *fare.Catalog, log *logger.Logger) *Service {
	return &Service{repo: repo, seed: seed, logger: log.Named("fares")}
}

// GetFares returns the stored catalog, seeding the default if absent
func (s *Service) GetFares(ctx context.Context) (*fare.Catalog, error) {
	c, err := s.repo.Get(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, fare.ErrCatalogNotFound) {
		s.logger.Error("Failed to load fare catalog", logger.Err(err))
		return nil, apperrors.StoreUnavailable("Failed to load fares", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// another request may have seeded while we waited
	c, err = s.repo.Get(ctx)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, fare.ErrCatalogNotFound) {
		return nil, apperrors.StoreUnavailable("Failed to load fares", err)
	}

	if err := s.repo.Put(ctx, s.seed); err != nil {
		s.logger.Error("Failed to seed fare catalog", logger.Err(err))
		return nil, apperrors.StoreUnavailable("Failed to seed fares", err)
	}
	s.logger.Info("Seeded fare catalog",
		logger.Int("tricycle_routes", len(s.seed.Tricycle)),
		logger.Int("multicab_routes", len(s.seed.Multicab)),
	)

	c, err = s.repo.Get(ctx)
	if err != nil {
		return nil, apperrors.StoreUnavailable("Failed to load fares", err)
	}
	return c, nil
}
