package kv

import (
	"context"
	"testing"
	"time"

	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/fare"
	"github.com/maasin/byahenow/internal/domain/feedback"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriverRepository(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewDriverRepository(store, logger.NewNop())

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, driver.ErrDriverNotFound)

	rec := &driver.Record{
		UserID:      "d1",
		Name:        "Juan Dela Cruz",
		Status:      driver.StatusAvailable,
		Route:       "Poblacion to Combado",
		VehicleType: driver.VehicleTricycle,
		Location:    driver.Location{Latitude: 10.1328, Longitude: 124.8422},
		LastUpdated: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Put(ctx, rec))

	raw, err := store.Get(ctx, "driver:d1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"vehicleType":"tricycle"`)
	assert.Contains(t, string(raw), `"location":{"latitude":10.1328,"longitude":124.8422}`)

	got, err := repo.Get(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	assert.Error(t, repo.Put(ctx, &driver.Record{}))
}

func TestDriverRepository_ListSkipsUndecodable(t *testing.T) {
	ctx := context.Background()
	store := kvstore.NewMemoryStore()
	repo := NewDriverRepository(store, logger.NewNop())

	require.NoError(t, repo.Put(ctx, &driver.Record{UserID: "d1", Status: driver.StatusAvailable}))
	require.NoError(t, store.Set(ctx, "driver:broken", []byte("{not json")))
	require.NoError(t, store.Set(ctx, "driver:legacy", []byte(`{"status":"occupied"}`)))
	require.NoError(t, store.Set(ctx, "user:d1", []byte(`{}`)))

	records, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "d1", records[0].UserID)
	assert.Equal(t, "legacy", records[1].UserID, "id falls back to the key suffix")
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(kvstore.NewMemoryStore())

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, user.ErrProfileNotFound)

	p := &user.Profile{ID: "u1", Email: "ana@example.com", Name: "Ana", Role: user.RolePassenger}
	require.NoError(t, repo.Put(ctx, p))

	got, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
	assert.Equal(t, user.RolePassenger, got.Role)

	assert.ErrorIs(t, repo.Put(ctx, &user.Profile{}), user.ErrInvalidProfile)
}

func TestFeedbackRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFeedbackRepository(kvstore.NewMemoryStore(), logger.NewNop())

	at := time.UnixMilli(1700000000000)
	f := &feedback.Feedback{ID: feedback.Key(at, "p1"), PassengerID: "p1", Rating: 5, CreatedAt: at}
	require.NoError(t, repo.Append(ctx, f))

	dup := *f
	dup.Rating = 1
	assert.ErrorIs(t, repo.Append(ctx, &dup), feedback.ErrDuplicate)

	later := &feedback.Feedback{ID: feedback.Key(at.Add(time.Millisecond), "p1"), PassengerID: "p1", Rating: 3}
	require.NoError(t, repo.Append(ctx, later))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 5, list[0].Rating, "first entry is immutable")
	assert.Equal(t, 3, list[1].Rating)
}

func TestFareRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewFareRepository(kvstore.NewMemoryStore())

	_, err := repo.Get(ctx)
	assert.ErrorIs(t, err, fare.ErrCatalogNotFound)

	c := &fare.Catalog{Tricycle: []fare.Entry{{Route: "A to B", Fare: "10", Distance: "1km"}}}
	require.NoError(t, repo.Put(ctx, c))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Tricycle, got.Tricycle)
}
