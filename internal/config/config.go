package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

type Config struct {
	// HTTP server
	Port               string `env:"PORT"                  envDefault:"8081"`
	LogLevel           string `env:"LOG_LEVEL"             envDefault:"info"`
	RateLimitPerMinute int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`

	// Leads
	LeadBackend  string `env:"LEAD_BACKEND"   envDefault:"memory"`
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/mfdist.db"`

	// Sessions
	SessionBackend string        `env:"SESSION_BACKEND" envDefault:"memory"`
	SessionTTL     time.Duration `env:"SESSION_TTL"     envDefault:"30m"`
	SessionMax     int           `env:"SESSION_MAX"     envDefault:"1000"`
	RedisAddr      string        `env:"REDIS_ADDR"      envDefault:"localhost:6379"`

	// AMQP; an empty URL disables lead events
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"mfdist"`
	AMQPQueue    string `env:"AMQP_QUEUE"    envDefault:"lead_submitted"`

	// Google Sheets lead export
	GoogleSpreadsheetID      string `env:"GOOGLE_SPREADSHEET_ID"`
	GoogleLeadsSheetName     string `env:"GOOGLE_LEADS_SHEET_NAME"     envDefault:"Leads"`
	GoogleServiceAccountJSON string `env:"GOOGLE_SERVICE_ACCOUNT_JSON"`
	GoogleServiceAccountFile string `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`

	// Export worker
	ExportBatchSize   int           `env:"EXPORT_BATCH_SIZE"   envDefault:"10"`
	ExportInterval    time.Duration `env:"EXPORT_INTERVAL"     envDefault:"30s"`
	ExportMaxAttempts int           `env:"EXPORT_MAX_ATTEMPTS" envDefault:"5"`

	// Tracing; an empty endpoint disables the OTLP exporter
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// EventsEnabled reports whether lead events are published.
func (c *Config) EventsEnabled() bool {
	return c.AMQPURL != ""
}

// ExportConfigured reports whether a lead export target is set.
func (c *Config) ExportConfigured() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	leadBackends := []string{BackendMemory, BackendSQLite}
	if !slices.Contains(leadBackends, c.LeadBackend) {
		errors = append(errors, fmt.Sprintf("invalid lead backend '%s': must be one of %v", c.LeadBackend, leadBackends))
	}

	if c.LeadBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	sessionBackends := []string{BackendMemory, BackendRedis}
	if !slices.Contains(sessionBackends, c.SessionBackend) {
		errors = append(errors, fmt.Sprintf("invalid session backend '%s': must be one of %v", c.SessionBackend, sessionBackends))
	}
	if c.SessionBackend == BackendRedis && c.RedisAddr == "" {
		errors = append(errors, "Redis address cannot be empty when using redis session backend")
	}
	if c.SessionTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session TTL %v: must be at least 1 minute", c.SessionTTL))
	}
	if c.SessionMax < 1 {
		errors = append(errors, fmt.Sprintf("invalid session max %d: must be at least 1", c.SessionMax))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
		if c.LeadBackend != BackendSQLite {
			errors = append(errors, "lead events require the sqlite lead backend")
		}
	}

	if c.GoogleSpreadsheetID != "" {
		if c.GoogleLeadsSheetName == "" {
			errors = append(errors, "Google leads sheet name is required when a spreadsheet ID is set")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for lead export")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errors = append(errors, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	}

	if c.ExportBatchSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid export batch size %d: must be at least 1", c.ExportBatchSize))
	} else if c.ExportBatchSize > 1000 {
		errors = append(errors, fmt.Sprintf("invalid export batch size %d: must be at most 1000", c.ExportBatchSize))
	}

	if c.ExportInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at least 1 second", c.ExportInterval))
	} else if c.ExportInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid export interval %v: must be at most 24 hours", c.ExportInterval))
	}

	if c.ExportMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("invalid export max attempts %d: must be at least 1", c.ExportMaxAttempts))
	}

	if c.OTelEndpoint != "" {
		if parsedURL, err := url.Parse(c.OTelEndpoint); err != nil {
			errors = append(errors, fmt.Sprintf("invalid OTel endpoint '%s': %v", c.OTelEndpoint, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid OTel endpoint scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}

	if c.RateLimitPerMinute < 1 {
		errors = append(errors, fmt.Sprintf("invalid rate limit %d: must be at least 1 per minute", c.RateLimitPerMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}
