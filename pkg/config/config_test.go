package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fernwood-labs/gatehouse/pkg/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "9090", cfg.Server.OpsPort)
	assert.Equal(t, "memory", cfg.Registry.Backend)
	assert.True(t, cfg.Registry.AutoMigrate)
	assert.Equal(t, 2*time.Hour, cfg.Tickets.GrantingMaxIdle)
	assert.Equal(t, 8*time.Hour, cfg.Tickets.GrantingMaxLifetime)
	assert.Equal(t, 10*time.Second, cfg.Tickets.ServiceLifetime)
	assert.Equal(t, 1<<20, cfg.Tickets.MaxLiveTickets)
	assert.Equal(t, 5*time.Minute, cfg.Tickets.SweepInterval)
	assert.Equal(t, observability.InfoLevel, cfg.Logging.Level)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("GATEHOUSE_PORT", "8888")
	t.Setenv("GATEHOUSE_TGT_MAX_IDLE", "30m")
	t.Setenv("GATEHOUSE_ST_LIFETIME", "5s")
	t.Setenv("GATEHOUSE_MAX_LIVE_TICKETS", "1000")
	t.Setenv("GATEHOUSE_LOG_LEVEL", "debug")
	t.Setenv("GATEHOUSE_REGISTRY_BACKEND", "postgres")
	t.Setenv("GATEHOUSE_POSTGRES_URL", "postgres://localhost/gatehouse")
	t.Setenv("GATEHOUSE_REGISTRY_AUTO_MIGRATE", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8888", cfg.Server.Port)
	assert.Equal(t, 30*time.Minute, cfg.Tickets.GrantingMaxIdle)
	assert.Equal(t, 5*time.Second, cfg.Tickets.ServiceLifetime)
	assert.Equal(t, 1000, cfg.Tickets.MaxLiveTickets)
	assert.Equal(t, observability.DebugLevel, cfg.Logging.Level)
	assert.Equal(t, "postgres", cfg.Registry.Backend)
	assert.False(t, cfg.Registry.AutoMigrate)
}

func TestBooleanEnvParsing(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"false", false},
		{"0", false},
		{"bogus", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("GATEHOUSE_REGISTRY_AUTO_MIGRATE", tt.value)
			cfg, err := LoadConfig()
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Registry.AutoMigrate)
		})
	}
}

func TestLoadConfigMalformedValuesFallBack(t *testing.T) {
	t.Setenv("GATEHOUSE_TGT_MAX_IDLE", "not-a-duration")
	t.Setenv("GATEHOUSE_MAX_LIVE_TICKETS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.Tickets.GrantingMaxIdle)
	assert.Equal(t, 1<<20, cfg.Tickets.MaxLiveTickets)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg, err := LoadConfig()
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"missing port", func(c *Config) { c.Server.Port = "" }, "server port is required"},
		{"missing ops port", func(c *Config) { c.Server.OpsPort = "" }, "ops port is required"},
		{"colliding ports", func(c *Config) { c.Server.OpsPort = c.Server.Port }, "must be different"},
		{"unknown backend", func(c *Config) { c.Registry.Backend = "etcd" }, "invalid registry backend"},
		{"postgres without url", func(c *Config) { c.Registry.Backend = "postgres" }, "postgres URL is required"},
		{"zero idle", func(c *Config) { c.Tickets.GrantingMaxIdle = 0 }, "idle bound must be positive"},
		{"zero lifetime", func(c *Config) { c.Tickets.GrantingMaxLifetime = 0 }, "lifetime must be positive"},
		{"zero st lifetime", func(c *Config) { c.Tickets.ServiceLifetime = 0 }, "lifetime must be positive"},
		{"zero sweep", func(c *Config) { c.Tickets.SweepInterval = 0 }, "sweep interval must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
