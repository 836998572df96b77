package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Query     QueryConfig     `yaml:"query"`
	Audit     AuditConfig     `yaml:"audit"`
	Cleanup   CleanupConfig   `yaml:"cleanup"`
}

// ServerConfig holds gRPC server settings. MetricsPort serves /metrics and
// health probes over HTTP; 0 disables it.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"9090"`
	MetricsPort     int           `yaml:"metrics_port"     env:"SERVER_METRICS_PORT"     env-default:"9091"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns the gRPC listen address.
func (c ServerConfig) Addr() string { return joinHostPort(c.Host, c.Port) }

// MetricsAddr returns the HTTP listen address for metrics and probes.
func (c ServerConfig) MetricsAddr() string { return joinHostPort(c.Host, c.MetricsPort) }

// GatewayConfig holds HTTP gateway settings.
type GatewayConfig struct {
	Host            string        `yaml:"host"             env:"GATEWAY_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"GATEWAY_PORT"             env-default:"8080"`
	Upstream        string        `yaml:"upstream"         env:"GATEWAY_UPSTREAM"         env-default:"localhost:9090"`
	UpstreamTimeout time.Duration `yaml:"upstream_timeout" env:"GATEWAY_UPSTREAM_TIMEOUT" env-default:"30s"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"GATEWAY_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"GATEWAY_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"GATEWAY_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"GATEWAY_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns the HTTP listen address.
func (c GatewayConfig) Addr() string { return joinHostPort(c.Host, c.Port) }

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	// StatementTimeout is applied per connection; 0 leaves the server default.
	StatementTimeout time.Duration `yaml:"statement_timeout" env:"DATABASE_STATEMENT_TIMEOUT" env-default:"30s"`
	ApplicationName  string        `yaml:"application_name"  env:"DATABASE_APPLICATION_NAME"  env-default:"kbm"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings for the gateway.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// Origins splits AllowedOrigins.
func (c CORSConfig) Origins() []string { return splitList(c.AllowedOrigins) }

// Methods splits AllowedMethods.
func (c CORSConfig) Methods() []string { return splitList(c.AllowedMethods) }

// Headers splits AllowedHeaders.
func (c CORSConfig) Headers() []string { return splitList(c.AllowedHeaders) }

// RateLimitConfig holds the per-client gateway rate limit.
type RateLimitConfig struct {
	Enabled           bool    `yaml:"enabled"             env:"RATE_LIMIT_ENABLED"  env-default:"true"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"RATE_LIMIT_RPS"      env-default:"20"`
	Burst             int     `yaml:"burst"               env:"RATE_LIMIT_BURST"    env-default:"40"`
}

// QueryConfig bounds collection queries.
type QueryConfig struct {
	MaxPageSize int `yaml:"max_page_size" env:"QUERY_MAX_PAGE_SIZE" env-default:"100"`
}

// AuditConfig controls audit recording.
type AuditConfig struct {
	Enabled      bool          `yaml:"enabled"       env:"AUDIT_ENABLED"       env-default:"true"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"AUDIT_WRITE_TIMEOUT" env-default:"5s"`
}

// CleanupConfig controls how long soft-deleted rows and audit records are
// kept. AuditRetentionDays 0 keeps audit records forever.
type CleanupConfig struct {
	RetentionDays      int `yaml:"retention_days"       env:"CLEANUP_RETENTION_DAYS"       env-default:"30"`
	AuditRetentionDays int `yaml:"audit_retention_days" env:"CLEANUP_AUDIT_RETENTION_DAYS" env-default:"0"`
}

// Retention returns RetentionDays as a duration.
func (c CleanupConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// AuditRetention returns AuditRetentionDays as a duration.
func (c CleanupConfig) AuditRetention() time.Duration {
	return time.Duration(c.AuditRetentionDays) * 24 * time.Hour
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func validPort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be in 1..65535 (got %d)", port)
	}
	return nil
}
