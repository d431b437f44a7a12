package events

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/seliv/tempwatch/internal/errors"
	"codeberg.org/seliv/tempwatch/internal/sensor"
)

func testConfig(t *testing.T) Config {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = filepath.Join(t.TempDir(), "events.db")
	cfg.BatchSize = 2
	cfg.BatchTimeout = 0 // no background flusher in tests

	return cfg
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Enabled = true
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, ErrInvalidDBPath, errors.CodeOf(err))

	cfg.DBPath = "/tmp/events.db"
	assert.NoError(t, cfg.Validate())
}

func TestNewServiceDisabled(t *testing.T) {
	collector, err := NewService(DefaultConfig())
	require.NoError(t, err)

	assert.NoError(t, collector.Record(context.Background(), AlertTransition("cpu", "CPU", "alert_raised", nil)))
	assert.NoError(t, collector.Close())
}

func TestNewServiceEnabledWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	_, err := NewService(cfg)
	require.Error(t, err)
}

func TestAlertTransitionKind(t *testing.T) {
	raised := AlertTransition("cpu", "CPU", "alert_raised", sensor.Float(92.0))
	assert.Equal(t, KindAlertRaised, raised.Kind)
	require.NotNil(t, raised.TemperatureC)
	assert.Equal(t, 92.0, *raised.TemperatureC)

	cleared := AlertTransition("gpu", "GPU", "alert_cleared", sensor.Float(60.0))
	assert.Equal(t, KindAlertCleared, cleared.Kind)
}

func TestCycleSkipped(t *testing.T) {
	event := CycleSkipped("lhm", errors.ErrorCode("sensor_sample_timeout"))
	assert.Equal(t, KindCycleSkipped, event.Kind)
	assert.Equal(t, "lhm", event.Component)
	assert.Equal(t, "sensor_sample_timeout", event.Detail)
	assert.Nil(t, event.TemperatureC)
}

func TestRecordNilEvent(t *testing.T) {
	cfg := testConfig(t)
	collector, err := NewService(cfg)
	require.NoError(t, err)
	defer collector.Close()

	err = collector.Record(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidEvent, errors.CodeOf(err))
}

func TestRecordCancelledContext(t *testing.T) {
	cfg := testConfig(t)
	collector, err := NewService(cfg)
	require.NoError(t, err)
	defer collector.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = collector.Record(ctx, CycleSkipped("host", "sensor_source_unavailable"))
	require.Error(t, err)
}

func TestRecordAndReadBack(t *testing.T) {
	cfg := testConfig(t)
	collector, err := NewService(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, collector.Record(ctx, AlertTransition("cpu", "AMD Ryzen 7 5800X", "alert_raised", sensor.Float(92.5))))
	require.NoError(t, collector.Record(ctx, AlertTransition("cpu", "AMD Ryzen 7 5800X", "alert_cleared", sensor.Float(71.0))))
	require.NoError(t, collector.Record(ctx, CycleSkipped("lhm", "sensor_sample_timeout")))
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count))
	assert.Equal(t, 3, count)

	var kind, component string
	var temperature sql.NullFloat64
	require.NoError(t, db.QueryRow(`
        SELECT kind, component, temperature
        FROM events
        ORDER BY id
        LIMIT 1
    `).Scan(&kind, &component, &temperature))
	assert.Equal(t, "alert_raised", kind)
	assert.Equal(t, "cpu", component)
	require.True(t, temperature.Valid)
	assert.Equal(t, 92.5, temperature.Float64)

	var detail string
	require.NoError(t, db.QueryRow(`
        SELECT detail FROM events WHERE kind = 'cycle_skipped'
    `).Scan(&detail))
	assert.Equal(t, "sensor_sample_timeout", detail)
}

func TestSchemaReopen(t *testing.T) {
	cfg := testConfig(t)

	collector, err := NewService(cfg)
	require.NoError(t, err)
	require.NoError(t, collector.Record(context.Background(), CycleSkipped("host", "sensor_source_unavailable")))
	require.NoError(t, collector.Close())

	// A second open must validate against the existing schema, not recreate it.
	collector, err = NewService(cfg)
	require.NoError(t, err)
	require.NoError(t, collector.Record(context.Background(), CycleSkipped("host", "sensor_source_unavailable")))
	require.NoError(t, collector.Close())

	db, err := sql.Open("sqlite3", cfg.DBPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count))
	assert.Equal(t, 2, count)

	var version int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_versions").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestSchemaVersionAhead(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "events.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)
	require.NoError(t, InitSchema(db))
	_, err = db.Exec("INSERT INTO schema_versions (version, applied_at) VALUES (?, datetime('now'))", SchemaVersion+1)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.DBPath = dbPath

	_, err = NewService(cfg)
	require.Error(t, err)
}
