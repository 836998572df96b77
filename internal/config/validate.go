package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
// Database settings are checked separately by commands that connect.
func (c *Config) Validate() error {
	if err := validPort(c.Server.Port); err != nil {
		return fmt.Errorf("server.port %w", err)
	}
	if c.Server.MetricsPort != 0 {
		if err := validPort(c.Server.MetricsPort); err != nil {
			return fmt.Errorf("server.metrics_port %w", err)
		}
		if c.Server.MetricsPort == c.Server.Port {
			return errors.New("server.metrics_port must differ from server.port")
		}
	}
	if err := validPort(c.Gateway.Port); err != nil {
		return fmt.Errorf("gateway.port %w", err)
	}
	if strings.TrimSpace(c.Gateway.Upstream) == "" {
		return errors.New("gateway.upstream is required")
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.Log.Format)) {
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limit.requests_per_second must be > 0 (got %v)", c.RateLimit.RequestsPerSecond)
		}
		if c.RateLimit.Burst < 1 {
			return fmt.Errorf("rate_limit.burst must be >= 1 (got %d)", c.RateLimit.Burst)
		}
	}

	if c.Query.MaxPageSize < 1 {
		return fmt.Errorf("query.max_page_size must be >= 1 (got %d)", c.Query.MaxPageSize)
	}
	if c.Audit.WriteTimeout <= 0 {
		return fmt.Errorf("audit.write_timeout must be > 0 (got %s)", c.Audit.WriteTimeout)
	}
	if c.Cleanup.RetentionDays < 0 {
		return fmt.Errorf("cleanup.retention_days must be >= 0 (got %d)", c.Cleanup.RetentionDays)
	}
	if c.Cleanup.AuditRetentionDays < 0 {
		return fmt.Errorf("cleanup.audit_retention_days must be >= 0 (got %d)", c.Cleanup.AuditRetentionDays)
	}

	return nil
}

// Validate checks the settings needed to open a pool.
func (d DatabaseConfig) Validate() error {
	if strings.TrimSpace(d.DSN) == "" {
		return errors.New("database.dsn is required")
	}
	if d.MinConns < 0 || d.MaxConns < 1 || d.MinConns > d.MaxConns {
		return fmt.Errorf("database pool bounds invalid (min %d, max %d)", d.MinConns, d.MaxConns)
	}
	if d.StatementTimeout < 0 {
		return errors.New("database.statement_timeout must be >= 0")
	}
	return nil
}
