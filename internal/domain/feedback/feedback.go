package feedback

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// KeyPrefix is the store namespace for feedback entries
const KeyPrefix = "feedback:"

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrDuplicate     = errors.New("feedback already recorded")
)

// Key builds the append-only key for an entry. The millisecond timestamp
// comes first so a prefix scan returns entries in creation order.
func Key(createdAt time.Time, passengerID string) string {
	return fmt.Sprintf("%s%d_%s", KeyPrefix, createdAt.UnixMilli(), passengerID)
}

// Feedback is an immutable rating event
type Feedback struct {
	ID          string    `json:"id"`
	PassengerID string    `json:"passengerId"`
	DriverID    string    `json:"driverId,omitempty"`
	PlateNumber string    `json:"plateNumber,omitempty"`
	Rating      int       `json:"rating"`
	Comment     string    `json:"comment,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Input is what a passenger submits
type Input struct {
	Rating      int
	DriverID    string
	PlateNumber string
	Comment     string
}

// ValidateRating checks the 1..5 range
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// Repository is append-only; there is no update or delete
type Repository interface {
	// Append stores f under f.ID and fails with ErrDuplicate if the key is taken
	Append(ctx context.Context, f *Feedback) error

	// List returns every entry in key order
	List(ctx context.Context) ([]*Feedback, error)
}
