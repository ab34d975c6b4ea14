package driver

import "context"

// Repository defines the interface for presence record access
type Repository interface {
	// Get returns the stored record or ErrDriverNotFound
	Get(ctx context.Context, driverID string) (*Record, error)

	// Put replaces the record for r.UserID in full
	Put(ctx context.Context, r *Record) error

	// List returns every stored record in store scan order. Records that
	// cannot be decoded are skipped.
	List(ctx context.Context) ([]*Record, error)
}
