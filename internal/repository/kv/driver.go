package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/maasin/byahenow/pkg/logger"
)

// DriverRepository stores presence records as JSON under driver:<id>
type DriverRepository struct {
	store  kvstore.Store
	logger *logger.Logger
}

// NewDriverRepository creates a new driver repository
func NewDriverRepository(store kvstore.Store, log *logger.Logger) *DriverRepository {
	return &DriverRepository{store: store, logger: log}
}

func (r *DriverRepository) Get(ctx context.Context, driverID string) (*driver.Record, error) {
	var rec driver.Record
	err := kvstore.GetJSON(ctx, r.store, driver.Key(driverID), &rec)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, driver.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *DriverRepository) Put(ctx context.Context, rec *driver.Record) error {
	if rec.UserID == "" {
		return fmt.Errorf("put driver record: empty user id")
	}
	return kvstore.SetJSON(ctx, r.store, driver.Key(rec.UserID), rec)
}

func (r *DriverRepository) List(ctx context.Context) ([]*driver.Record, error) {
	entries, err := r.store.ScanPrefix(ctx, driver.KeyPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]*driver.Record, 0, len(entries))
	for _, e := range entries {
		var rec driver.Record
		if err := json.Unmarshal(e.Value, &rec); err != nil {
			r.logger.Warn("Skipping undecodable driver record",
				logger.String("key", e.Key),
				logger.Err(err),
			)
			continue
		}
		if rec.UserID == "" {
			rec.UserID = strings.TrimPrefix(e.Key, driver.KeyPrefix)
		}
		records = append(records, &rec)
	}
	return records, nil
}
