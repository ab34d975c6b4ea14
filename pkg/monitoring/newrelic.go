package monitoring

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
)

// Config holds New Relic configuration
type Config struct {
	LicenseKey string
	AppName    string
	Enabled    bool
	LogLevel   string
}

// NewRelicApp wraps the New Relic application. A disabled or nil app
// accepts every call and records nothing.
type NewRelicApp struct {
	*newrelic.Application
	enabled bool
}

// New creates a new New Relic application
func New(cfg Config) (*NewRelicApp, error) {
	if !cfg.Enabled || cfg.LicenseKey == "" {
		return &NewRelicApp{nil, false}, nil
	}

	opts := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.AppName),
		newrelic.ConfigLicense(cfg.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(true),
		newrelic.ConfigDistributedTracerEnabled(true),
	}
	if cfg.LogLevel == "debug" {
		opts = append(opts, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create New Relic application: %w", err)
	}

	return &NewRelicApp{app, true}, nil
}

// Agent returns the underlying application, or nil when disabled
func (nr *NewRelicApp) Agent() *newrelic.Application {
	if !nr.IsEnabled() {
		return nil
	}
	return nr.Application
}

// RecordCustomEvent records a custom event
func (nr *NewRelicApp) RecordCustomEvent(eventType string, params map[string]interface{}) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomEvent(eventType, params)
}

// RecordCustomMetric records a custom metric
func (nr *NewRelicApp) RecordCustomMetric(name string, value float64) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.RecordCustomMetric(name, value)
}

// Shutdown gracefully shuts down the New Relic application
func (nr *NewRelicApp) Shutdown(timeout time.Duration) {
	if !nr.IsEnabled() {
		return
	}
	nr.Application.Shutdown(timeout)
}

// RecordDriverPublished records an accepted driver status publish
func (nr *NewRelicApp) RecordDriverPublished(status, vehicleType string) {
	nr.RecordCustomEvent("DriverPublished", map[string]interface{}{
		"status":       status,
		"vehicle_type": vehicleType,
		"timestamp":    time.Now().Unix(),
	})
}

// RecordSnapshotSize records how many drivers a snapshot returned
func (nr *NewRelicApp) RecordSnapshotSize(n int) {
	nr.RecordCustomMetric("custom/presence/snapshot_size", float64(n))
}

// RecordFeedback records a passenger rating
func (nr *NewRelicApp) RecordFeedback(rating int) {
	nr.RecordCustomEvent("FeedbackRecorded", map[string]interface{}{
		"rating": rating,
	})
}

// RecordDatabasePoolStats records database connection pool statistics
func (nr *NewRelicApp) RecordDatabasePoolStats(stats sql.DBStats) {
	nr.RecordCustomMetric("custom/db/open_connections", float64(stats.OpenConnections))
	nr.RecordCustomMetric("custom/db/idle_connections", float64(stats.Idle))
	nr.RecordCustomMetric("custom/db/in_use_connections", float64(stats.InUse))
}

// RecordRedisPoolStats records Redis pool statistics
func (nr *NewRelicApp) RecordRedisPoolStats(stats map[string]interface{}) {
	for key, name := range map[string]string{
		"hits":     "custom/redis/pool_hits",
		"misses":   "custom/redis/pool_misses",
		"timeouts": "custom/redis/timeouts",
	} {
		if v, ok := stats[key].(uint32); ok {
			nr.RecordCustomMetric(name, float64(v))
		}
	}
}

// RecordStoreBackend tags the process with the store backend in use
func (nr *NewRelicApp) RecordStoreBackend(backend string, durable bool) {
	nr.RecordCustomEvent("StoreBackend", map[string]interface{}{
		"backend": backend,
		"durable": strconv.FormatBool(durable),
	})
}

// IsEnabled returns whether New Relic is enabled
func (nr *NewRelicApp) IsEnabled() bool {
	return nr != nil && nr.enabled && nr.Application != nil
}
