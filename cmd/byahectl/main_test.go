package main

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maasin/byahenow/internal/api/handlers"
	"github.com/maasin/byahenow/internal/api/middleware"
	"github.com/maasin/byahenow/internal/api/routes"
	"github.com/maasin/byahenow/internal/client"
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/identity"
	"github.com/maasin/byahenow/internal/repository/kv"
	"github.com/maasin/byahenow/internal/service/account"
	feedbacksvc "github.com/maasin/byahenow/internal/service/feedback"
	"github.com/maasin/byahenow/internal/service/fares"
	"github.com/maasin/byahenow/internal/service/presence"
	"github.com/maasin/byahenow/pkg/kvstore"
	"github.com/maasin/byahenow/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	store := kvstore.NewMemoryStore()
	provider, err := identity.NewLocalProvider(store, identity.LocalConfig{Secret: "s", BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	users := kv.NewUserRepository(store)
	seed, err := fares.DefaultCatalog()
	require.NoError(t, err)

	h := handlers.NewHandlers(
		presence.NewService(kv.NewDriverRepository(store, log), users, log, presence.Config{}),
		fares.NewService(kv.NewFareRepository(store), seed, log),
		feedbacksvc.NewService(kv.NewFeedbackRepository(store, log), log, nil),
		account.NewService(provider, users, log),
		nil,
		log,
	)
	r := gin.New()
	routes.SetupRoutes(r, h, middleware.AuthMiddleware(provider, log), nil, nil)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestSeedDriver_Idempotent(t *testing.T) {
	srv := newServer(t)
	ctx := context.Background()

	rec, err := seedDriver(ctx, client.New(srv.URL), 3)
	require.NoError(t, err)
	assert.Equal(t, "Demo Driver 3", rec.Name)
	assert.Equal(t, driver.VehicleMulticab, rec.VehicleType)
	assert.InDelta(t, maasinLatitude, rec.Location.Latitude, demoSpread)
	assert.InDelta(t, maasinLongitude, rec.Location.Longitude, demoSpread)

	// the account already exists the second time
	_, err = seedDriver(ctx, client.New(srv.URL), 3)
	require.NoError(t, err)
}

func testCommand(output string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	cmd.Flags().String("output", output, "")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	return cmd, &buf
}

func TestRender(t *testing.T) {
	drivers := []*driver.Record{{
		UserID:      "d1",
		Name:        "Juan",
		Status:      driver.StatusAvailable,
		VehicleType: driver.VehicleTricycle,
	}}

	cmd, buf := testCommand("json")
	require.NoError(t, render(cmd, drivers[0], func(w io.Writer) {}))
	assert.Contains(t, buf.String(), `"userId": "d1"`)

	cmd, buf = testCommand("yaml")
	require.NoError(t, render(cmd, drivers[0], func(w io.Writer) {}))
	assert.Contains(t, buf.String(), "userId: d1")

	cmd, buf = testCommand("table")
	require.NoError(t, render(cmd, drivers, func(w io.Writer) { driverTable(w, drivers, nil) }))
	assert.Contains(t, buf.String(), "Juan")
	assert.Contains(t, buf.String(), "tricycle")

	cmd, _ = testCommand("xml")
	assert.Error(t, render(cmd, drivers, func(w io.Writer) {}))
}

func TestDriverTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	driverTable(&buf, nil, nil)
	assert.Contains(t, buf.String(), "No drivers available")
}

func TestDriverTable_Near(t *testing.T) {
	origin := &driver.Location{Latitude: maasinLatitude, Longitude: maasinLongitude}
	drivers := []*driver.Record{
		{Name: "Far", Location: driver.Location{Latitude: 10.20, Longitude: 124.90}},
		{Name: "Near", Location: driver.Location{Latitude: 10.133, Longitude: 124.842}},
	}

	var buf bytes.Buffer
	driverTable(&buf, drivers, origin)

	out := buf.String()
	assert.Contains(t, out, "DISTANCE")
	assert.Less(t, strings.Index(out, "Near"), strings.Index(out, "Far"))
	assert.Equal(t, "Far", drivers[0].Name, "caller slice is not reordered")
}

func TestParseLocation(t *testing.T) {
	loc, err := parseLocation("10.1328, 124.8422")
	require.NoError(t, err)
	assert.Equal(t, 10.1328, loc.Latitude)
	assert.Equal(t, 124.8422, loc.Longitude)

	for _, bad := range []string{"10.1", "x,124", "10,y", "95,124"} {
		_, err := parseLocation(bad)
		assert.Error(t, err, bad)
	}
}
