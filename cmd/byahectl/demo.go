package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/client"
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/domain/user"
	"github.com/spf13/cobra"
)

// Maasin City center
const (
	maasinLatitude  = 10.1328
	maasinLongitude = 124.8422
	demoSpread      = 0.01 // degrees, roughly 1km
	demoPassword    = "demo-pass-123"
)

var (
	demoRoutes = []string{
		"Maasin Cathedral to Tunga-Tunga",
		"Public Market to Combado",
		"City Hall to Abgao",
		"Port Area to Mantahan",
		"Maasin to Macrohon",
		"Maasin to Padre Burgos",
	}
	demoCapacities = []string{
		"Full",
		"1 seat available",
		"2 seats available",
		"3 seats available",
		"Plenty of space",
	}
	demoStatuses = []driver.Status{
		driver.StatusAvailable,
		driver.StatusAvailable,
		driver.StatusOccupied,
		driver.StatusOffline,
	}
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Demo data helpers",
}

var demoSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register demo drivers and publish random statuses around Maasin City",
	Long: `Register N demo drivers (demo-driver-<i>@byahenow.local) and publish a
random status, route and location for each. Running it again reuses the
existing accounts and publishes fresh statuses. Requires the local identity
provider.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("count")
		if n <= 0 {
			return fmt.Errorf("--count must be positive")
		}
		server, _ := cmd.Flags().GetString("server")

		for i := 1; i <= n; i++ {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
			rec, err := seedDriver(ctx, client.New(server), i)
			cancel()
			if err != nil {
				return fmt.Errorf("demo driver %d: %w", i, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%s) %s\n", rec.Name, rec.VehicleType, rec.Status)
		}
		return nil
	},
}

func seedDriver(ctx context.Context, c *client.Client, i int) (*driver.Record, error) {
	email := fmt.Sprintf("demo-driver-%d@byahenow.local", i)
	vt := driver.VehicleTricycle
	if i%3 == 0 {
		vt = driver.VehicleMulticab
	}
	plate := fmt.Sprintf("DMO-%03d", i)

	_, err := c.Signup(ctx, dto.SignupRequest{
		Email:       email,
		Password:    demoPassword,
		Name:        fmt.Sprintf("Demo Driver %d", i),
		Role:        string(user.RoleDriver),
		PlateNumber: plate,
		VehicleType: string(vt),
	})
	var apiErr *client.APIError
	if err != nil && !(errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict) {
		return nil, err
	}

	if _, _, err := c.Login(ctx, email, demoPassword); err != nil {
		return nil, err
	}

	return c.Publish(ctx, dto.PublishStatusRequest{
		Status:      string(pick(demoStatuses)),
		Route:       pick(demoRoutes),
		Capacity:    pick(demoCapacities),
		Latitude:    maasinLatitude + (rand.Float64()*2-1)*demoSpread,
		Longitude:   maasinLongitude + (rand.Float64()*2-1)*demoSpread,
		VehicleType: string(vt),
		PlateNumber: plate,
	})
}

func pick[T any](xs []T) T {
	return xs[rand.IntN(len(xs))]
}

func init() {
	demoSeedCmd.Flags().Int("count", 10, "Number of demo drivers")
	demoCmd.AddCommand(demoSeedCmd)
}
