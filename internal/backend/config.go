package backend

import (
	"fmt"
	"time"

	"mfdist/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	cfg := Config{
		Type: BackendType(appConfig.LeadBackend),

		SQLiteDBPath: appConfig.SQLiteDBPath,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,

		SessionType:     BackendType(appConfig.SessionBackend),
		SessionTTL:      appConfig.SessionTTL,
		SessionMax:      appConfig.SessionMax,
		RedisAddr:       appConfig.RedisAddr,
		CleanupInterval: time.Minute,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	if !c.SessionType.IsValidSession() {
		return fmt.Errorf("invalid session backend type: %s", c.SessionType)
	}
	if c.SessionType == RedisBackend && c.RedisAddr == "" {
		return fmt.Errorf("Redis address is required for redis session backend")
	}
	return nil
}

// GetBackendTypes returns the valid lead backend types.
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}

// GetBackendTypeStrings returns GetBackendTypes as strings.
func GetBackendTypeStrings() []string {
	types := GetBackendTypes()
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
