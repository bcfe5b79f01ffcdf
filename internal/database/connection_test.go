package database

import (
	"testing"
	"time"

	"github.com/BradenHooton/dancingpony/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabaseConfig() *config.DatabaseConfig {
	return &config.DatabaseConfig{
		Host:              "db.internal",
		Port:              5433,
		User:              "dancingponysvc",
		Password:          "secret",
		Name:              "dancingpony",
		SSLMode:           "disable",
		MaxConns:          12,
		MinConns:          3,
		MaxConnLifetime:   5 * time.Minute,
		MaxConnIdleTime:   time.Minute,
		HealthCheckPeriod: 30 * time.Second,
	}
}

func TestBuildPoolConfig(t *testing.T) {
	pc, err := buildPoolConfig(testDatabaseConfig())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", pc.ConnConfig.Host)
	assert.Equal(t, uint16(5433), pc.ConnConfig.Port)
	assert.Equal(t, "dancingpony", pc.ConnConfig.Database)
	assert.Equal(t, int32(12), pc.MaxConns)
	assert.Equal(t, int32(3), pc.MinConns)
	assert.Equal(t, 5*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 30*time.Second, pc.HealthCheckPeriod)
	assert.Equal(t, dialTimeout, pc.ConnConfig.ConnectTimeout)
}

func TestBuildPoolConfig_MinConnsAboveMaxIsIgnored(t *testing.T) {
	cfg := testDatabaseConfig()
	cfg.MaxConns = 2
	cfg.MinConns = 5

	pc, err := buildPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(2), pc.MaxConns)
	assert.Equal(t, int32(0), pc.MinConns)
}

func TestNextRetryDelay(t *testing.T) {
	d := firstRetryDelay
	var got []time.Duration
	for i := 0; i < 6; i++ {
		got = append(got, d)
		d = nextRetryDelay(d)
	}
	assert.Equal(t, []time.Duration{
		500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 8 * time.Second,
	}, got)
}
