package monitoring

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledWithoutLicense(t *testing.T) {
	nr, err := New(Config{AppName: "ByaheNow", Enabled: true})
	require.NoError(t, err)
	assert.False(t, nr.IsEnabled())
	assert.Nil(t, nr.Agent())

	nr, err = New(Config{LicenseKey: "x", Enabled: false})
	require.NoError(t, err)
	assert.False(t, nr.IsEnabled())
}

func TestDisabledAppIsNoop(t *testing.T) {
	for _, nr := range []*NewRelicApp{nil, {}} {
		assert.NotPanics(t, func() {
			nr.RecordDriverPublished("available", "tricycle")
			nr.RecordSnapshotSize(3)
			nr.RecordFeedback(5)
			nr.RecordDatabasePoolStats(sql.DBStats{OpenConnections: 2})
			nr.RecordRedisPoolStats(map[string]interface{}{"hits": uint32(1)})
			nr.RecordStoreBackend("bolt", true)
			nr.Shutdown(time.Second)
		})
	}
}
