package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/maasin/byahenow/internal/api/dto"
	"github.com/maasin/byahenow/internal/domain/driver"
	"github.com/maasin/byahenow/internal/poller"
	"github.com/maasin/byahenow/pkg/metrics"
	"github.com/spf13/cobra"
)

var driversCmd = &cobra.Command{
	Use:   "drivers",
	Short: "See available tricycles and multicabs",
}

var driversListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the current driver snapshot once",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFlag(cmd)
		if err != nil {
			return err
		}

		origin, err := nearFlag(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		drivers, err := newClient(cmd).Drivers(ctx, f)
		if err != nil {
			return err
		}
		return render(cmd, dto.DriversResponse{Drivers: drivers}, func(w io.Writer) { driverTable(w, drivers, origin) })
	},
}

var driversWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the driver snapshot until interrupted",
	Long: `Poll the server on a fixed interval and redraw the driver list.

While watching, type a line and press enter:
  all | tricycle | multicab   change the filter without fetching
  r                           refresh now
  q                           quit`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := filterFlag(cmd)
		if err != nil {
			return err
		}
		origin, err := nearFlag(cmd)
		if err != nil {
			return err
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		out := cmd.OutOrStdout()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var m *metrics.Metrics
		if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
			m = metrics.New()
			srv := &http.Server{Addr: addr, Handler: m.Handler()}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					fmt.Fprintf(cmd.ErrOrStderr(), "metrics server: %v\n", err)
				}
			}()
			defer srv.Close()
		}

		p := poller.New(newClient(cmd), poller.Config{
			Interval: interval,
			Filter:   f,
			OnUpdate: func(records []*driver.Record) {
				fmt.Fprintln(out)
				driverTable(out, records, origin)
			},
			OnError: func(err error) {
				fmt.Fprintf(cmd.ErrOrStderr(), "fetch failed: %v\n", err)
			},
			Recorder: m,
		})
		if err := p.Start(ctx); err != nil {
			return err
		}
		defer p.Stop()

		fmt.Fprintf(out, "Watching %s drivers every %s. Type all, tricycle, multicab, r or q.\n", f, interval)

		lines := make(chan string)
		go func() {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				lines <- strings.TrimSpace(scanner.Text())
			}
			close(lines)
		}()

		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// stdin closed; keep polling until interrupted
					lines = nil
					continue
				}
				switch strings.ToLower(line) {
				case "":
				case "q", "quit":
					return nil
				case "r", "refresh":
					p.Refresh()
				default:
					nf, err := driver.ParseFilter(line)
					if err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
						continue
					}
					fmt.Fprintf(out, "Filter: %s\n", nf)
					p.SetFilter(nf)
				}
			}
		}
	},
}

var driverCmd = &cobra.Command{
	Use:   "driver",
	Short: "Driver commands",
}

var driverPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish your status, route and location",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		route, _ := cmd.Flags().GetString("route")
		capacity, _ := cmd.Flags().GetString("capacity")
		lat, _ := cmd.Flags().GetFloat64("lat")
		lng, _ := cmd.Flags().GetFloat64("lng")
		vehicle, _ := cmd.Flags().GetString("vehicle-type")
		plate, _ := cmd.Flags().GetString("plate")

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout(cmd))
		defer cancel()

		rec, err := newClient(cmd).Publish(ctx, dto.PublishStatusRequest{
			Status:      status,
			Route:       route,
			Capacity:    capacity,
			Latitude:    lat,
			Longitude:   lng,
			VehicleType: vehicle,
			PlateNumber: plate,
		})
		if err != nil {
			return fmt.Errorf("publish failed: %w", err)
		}
		return render(cmd, rec, func(w io.Writer) {
			fmt.Fprintf(w, "✓ %s is now %s\n", rec.Name, rec.Status)
		})
	},
}

func filterFlag(cmd *cobra.Command) (driver.Filter, error) {
	vt, _ := cmd.Flags().GetString("vehicle-type")
	return driver.ParseFilter(vt)
}

// nearFlag parses --near "lat,lng"; nil when unset
func nearFlag(cmd *cobra.Command) (*driver.Location, error) {
	near, _ := cmd.Flags().GetString("near")
	if near == "" {
		return nil, nil
	}
	return parseLocation(near)
}

func parseLocation(s string) (*driver.Location, error) {
	lat, lng, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("--near must be \"lat,lng\"")
	}
	var loc driver.Location
	var err error
	if loc.Latitude, err = strconv.ParseFloat(strings.TrimSpace(lat), 64); err != nil {
		return nil, fmt.Errorf("invalid latitude: %w", err)
	}
	if loc.Longitude, err = strconv.ParseFloat(strings.TrimSpace(lng), 64); err != nil {
		return nil, fmt.Errorf("invalid longitude: %w", err)
	}
	if err := loc.Validate(); err != nil {
		return nil, err
	}
	return &loc, nil
}

func init() {
	for _, c := range []*cobra.Command{driversListCmd, driversWatchCmd} {
		c.Flags().String("vehicle-type", driver.FilterAll, "Filter: all, tricycle or multicab")
		c.Flags().String("near", "", "Your position as \"lat,lng\" to sort by distance")
	}
	driversWatchCmd.Flags().Duration("interval", poller.DefaultInterval, "Polling interval")
	driversWatchCmd.Flags().String("metrics-addr", "", "Serve poller metrics on this address, e.g. :9091")

	driverPublishCmd.Flags().String("status", string(driver.StatusAvailable), "Status: available, occupied or offline")
	driverPublishCmd.Flags().String("route", "", "Route, e.g. \"Maasin Cathedral to Tunga-Tunga\"")
	driverPublishCmd.Flags().String("capacity", "", "Capacity, e.g. \"2 seats available\"")
	driverPublishCmd.Flags().Float64("lat", maasinLatitude, "Latitude")
	driverPublishCmd.Flags().Float64("lng", maasinLongitude, "Longitude")
	driverPublishCmd.Flags().String("vehicle-type", "", "Vehicle type: tricycle or multicab; defaults to your last status or profile")
	driverPublishCmd.Flags().String("plate", "", "Plate number")

	driversCmd.AddCommand(driversListCmd)
	driversCmd.AddCommand(driversWatchCmd)
	driverCmd.AddCommand(driverPublishCmd)
}
