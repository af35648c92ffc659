// Package config loads Gatehouse configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fernwood-labs/gatehouse/pkg/observability"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Registry RegistryConfig
	Tickets  TicketConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Ops server (health + metrics, separate port for probes)
	OpsPort string
}

// RegistryConfig selects the service-registry persistence backend.
type RegistryConfig struct {
	// Backend is "memory" or "postgres"
	Backend     string
	PostgresURL string
	// AutoMigrate controls whether the postgres backend creates its schema
	// on startup. Disable when migrations are managed externally.
	AutoMigrate bool
}

// TicketConfig holds ticket lifetime and store settings.
type TicketConfig struct {
	// GrantingMaxIdle is the sliding idle bound on granting tickets
	GrantingMaxIdle time.Duration
	// GrantingMaxLifetime is the hard ceiling on granting tickets
	GrantingMaxLifetime time.Duration
	// ServiceLifetime is the hard ceiling on service tickets
	ServiceLifetime time.Duration
	// MaxLiveTickets caps the ticket store; zero means unlimited
	MaxLiveTickets int
	// SweepInterval is how often expired tickets are reclaimed
	SweepInterval time.Duration
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level observability.LogLevel
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("GATEHOUSE_HOST", "0.0.0.0"),
			Port:            getEnv("GATEHOUSE_PORT", "8080"),
			ReadTimeout:     getEnvDuration("GATEHOUSE_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvDuration("GATEHOUSE_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:     getEnvDuration("GATEHOUSE_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("GATEHOUSE_SHUTDOWN_TIMEOUT", 30*time.Second),
			OpsPort:         getEnv("GATEHOUSE_OPS_PORT", "9090"),
		},
		Registry: RegistryConfig{
			Backend:     getEnv("GATEHOUSE_REGISTRY_BACKEND", "memory"),
			PostgresURL: getEnv("GATEHOUSE_POSTGRES_URL", ""),
			AutoMigrate: getEnvBool("GATEHOUSE_REGISTRY_AUTO_MIGRATE", true),
		},
		Tickets: TicketConfig{
			GrantingMaxIdle:     getEnvDuration("GATEHOUSE_TGT_MAX_IDLE", 2*time.Hour),
			GrantingMaxLifetime: getEnvDuration("GATEHOUSE_TGT_MAX_LIFETIME", 8*time.Hour),
			ServiceLifetime:     getEnvDuration("GATEHOUSE_ST_LIFETIME", 10*time.Second),
			MaxLiveTickets:      getEnvInt("GATEHOUSE_MAX_LIVE_TICKETS", 1<<20),
			SweepInterval:       getEnvDuration("GATEHOUSE_SWEEP_INTERVAL", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level: observability.ParseLogLevel(getEnv("GATEHOUSE_LOG_LEVEL", "info")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.OpsPort == "" {
		return fmt.Errorf("ops port is required")
	}
	if c.Server.Port == c.Server.OpsPort {
		return fmt.Errorf("server port and ops port must be different")
	}

	switch c.Registry.Backend {
	case "memory":
	case "postgres":
		if c.Registry.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres registry backend")
		}
	default:
		return fmt.Errorf("invalid registry backend: %s (must be memory or postgres)", c.Registry.Backend)
	}

	if c.Tickets.GrantingMaxIdle <= 0 {
		return fmt.Errorf("granting-ticket idle bound must be positive")
	}
	if c.Tickets.GrantingMaxLifetime <= 0 {
		return fmt.Errorf("granting-ticket lifetime must be positive")
	}
	if c.Tickets.ServiceLifetime <= 0 {
		return fmt.Errorf("service-ticket lifetime must be positive")
	}
	if c.Tickets.SweepInterval <= 0 {
		return fmt.Errorf("sweep interval must be positive")
	}
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}
