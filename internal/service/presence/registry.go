package presence

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/internal/identity"
	apperrors "github.com/maasin/byahenow/pkg/errors"
	"github.com/maasin/byahenow/pkg/logger"
)

// DefaultMaxSnapshot bounds a snapshot when no limit is configured
const DefaultMaxSnapshot = 500

const unknownDriverName = "Unknown"

// Config holds registry configuration
type Config struct {
	// MaxSnapshot caps the number of records a snapshot returns. Zero
	// means DefaultMaxSnapshot; a negative value disables the cap.
	MaxSnapshot int
}

// Listener is told about every accepted publish, after the record is stored
type Listener interface {
	DriverPublished(ctx context.Context, rec *driver.Record) error
}

// ListenerFunc adapts a function to Listener
type ListenerFunc func(ctx context.Context, rec *driver.Record) error

func (f ListenerFunc) DriverPublished(ctx context.Context, rec *driver.Record) error {
	return f(ctx, rec)
}

// Recorder receives presence counters
type Recorder interface {
	RecordDriverPublished(status, vehicleType string)
	RecordSnapshotSize(n int)
}

// Service is the driver presence registry. It holds no presence state of
// its own; every publish and snapshot goes straight to the repository.
type Service struct {
	drivers  driver.Repository
	profiles user.Repository
	logger   *logger.Logger
	config   Config
	now      func() time.Time

	mu        sync.RWMutex
	listeners []Listener
	recorders []Recorder
}

// NewService creates a new presence registry
func NewService(drivers driver.Repository, profiles user.Repository, log *logger.Logger, cfg Config) *Service {
	if cfg.MaxSnapshot == 0 {
		cfg.MaxSnapshot = DefaultMaxSnapshot
	}
	return &Service{
		drivers:  drivers,
		profiles: profiles,
		logger:   log.Named("presence"),
		config:   cfg,
		now:      time.Now,
	}
}

// AddListener registers l for publish notifications
func (s *Service) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// AddRecorder registers r for publish and snapshot counters
func (s *Service) AddRecorder(r Recorder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorders = append(s.recorders, r)
}

// Publish replaces the caller's presence record in full and returns the
// stored record. The caller must be a driver.
func (s *Service) Publish(ctx context.Context, id identity.Identity, upd driver.StatusUpdate) (*driver.Record, error) {
	if id.UserID == "" {
		return nil, apperrors.ErrUnauthenticated
	}
	if !id.IsDriver() {
		return nil, apperrors.Forbidden("Only drivers can publish status", nil)
	}
	if err := upd.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	profile, err := s.profile(ctx, id)
	if err != nil {
		return nil, err
	}

	// lastUpdated never moves backwards for a driver, even if the clock does
	now := s.now().UTC()
	vehicleType := upd.VehicleType
	prev, err := s.drivers.Get(ctx, id.UserID)
	switch {
	case err == nil:
		if prev.LastUpdated.After(now) {
			now = prev.LastUpdated
		}
		if vehicleType == "" {
			vehicleType = prev.VehicleType
		}
	case !errors.Is(err, driver.ErrDriverNotFound):
		s.logger.Error("Failed to read driver record",
			logger.String("driver_id", id.UserID),
			logger.Err(err),
		)
		return nil, apperrors.StoreUnavailable("Failed to read driver status", err)
	}

	if vehicleType == "" && profile != nil {
		vehicleType = profile.VehicleType
	}

	rec := &driver.Record{
		UserID:      id.UserID,
		Name:        displayName(profile, id),
		Status:      upd.Status,
		Route:       strings.TrimSpace(upd.Route),
		Capacity:    strings.TrimSpace(upd.Capacity),
		Location:    upd.Location,
		VehicleType: vehicleType,
		PlateNumber: strings.TrimSpace(upd.PlateNumber),
		LastUpdated: now,
	}

	if err := s.drivers.Put(ctx, rec); err != nil {
		s.logger.Error("Failed to store driver record",
			logger.String("driver_id", id.UserID),
			logger.Err(err),
		)
		return nil, apperrors.StoreUnavailable("Failed to store driver status", err)
	}

	s.logger.Info("Driver status published",
		logger.String("driver_id", rec.UserID),
		logger.String("status", string(rec.Status)),
		logger.String("vehicle_type", string(rec.VehicleType)),
	)

	s.notify(ctx, rec)
	return rec, nil
}

// Snapshot returns every visible record that matches f, in store scan
// order. Callers must not rely on the order.
func (s *Service) Snapshot(ctx context.Context, f driver.Filter) ([]*driver.Record, error) {
	records, err := s.drivers.List(ctx)
	if err != nil {
		s.logger.Error("Failed to scan driver records", logger.Err(err))
		return nil, apperrors.StoreUnavailable("Failed to load drivers", err)
	}

	visible := f.Apply(records)
	if max := s.config.MaxSnapshot; max > 0 && len(visible) > max {
		s.logger.Warn("Snapshot truncated",
			logger.Int("visible", len(visible)),
			logger.Int("max", max),
			logger.String("filter", f.String()),
		)
		visible = visible[:max]
	}

	s.mu.RLock()
	for _, r := range s.recorders {
		r.RecordSnapshotSize(len(visible))
	}
	s.mu.RUnlock()

	return visible, nil
}

// profile returns the caller's stored profile, or nil if there is none
func (s *Service) profile(ctx context.Context, id identity.Identity) (*user.Profile, error) {
	p, err := s.profiles.Get(ctx, id.UserID)
	if errors.Is(err, user.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("Failed to read profile",
			logger.String("user_id", id.UserID),
			logger.Err(err),
		)
		return nil, apperrors.StoreUnavailable("Failed to read profile", err)
	}
	return p, nil
}

// displayName prefers the stored profile, then the token, then a placeholder
func displayName(p *user.Profile, id identity.Identity) string {
	if p != nil {
		if name := strings.TrimSpace(p.Name); name != "" {
			return name
		}
	}
	if name := strings.TrimSpace(id.Name); name != "" {
		return name
	}
	return unknownDriverName
}

func (s *Service) notify(ctx context.Context, rec *driver.Record) {
	s.mu.RLock()
	listeners := append([]Listener(nil), s.listeners...)
	recorders := append([]Recorder(nil), s.recorders...)
	s.mu.RUnlock()

	for _, r := range recorders {
		r.RecordDriverPublished(string(rec.Status), string(rec.VehicleType))
	}
	for _, l := range listeners {
		if err := l.DriverPublished(ctx, rec); err != nil {
			s.logger.Warn("Presence listener failed",
				logger.String("driver_id", rec.UserID),
				logger.Err(err),
			)
		}
	}
}
