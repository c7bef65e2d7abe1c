package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the process configuration of the gateway tooling. Merchant
// credentials are not part of it; they live in the sealed settings file.
type Config struct {
	Audit     AuditConfig
	Keys      KeyProviderConfig
	Transport TransportConfig
	Logger    LoggerConfig
	Gateway   GatewayProcessConfig
}

// AuditConfig holds the optional audit database configuration
type AuditConfig struct {
	DatabaseURL string // empty disables the postgres sink
	MaxConns    int32
	EnsureTable bool
}

// KeyProviderConfig selects where the settings sealing key is read from
type KeyProviderConfig struct {
	Provider string // local, aws, vault
	KeyPath  string // file path, secret name, or KV path
	CacheTTL time.Duration

	LocalBasePath string

	AWSRegion string

	VaultAddress string
	VaultToken   string
	VaultMount   string
}

// TransportConfig holds outbound HTTP settings
type TransportConfig struct {
	Timeout        time.Duration
	RateLimit      float64 // requests per second, 0 disables
	RateLimitBurst int
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level       string // debug, info, warn, error
	Development bool
}

// GatewayProcessConfig holds the per-process gateway defaults
type GatewayProcessConfig struct {
	SettingsPath string // sealed settings file
	Currency     string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Audit: AuditConfig{
			DatabaseURL: getEnv("AUDIT_DATABASE_URL", ""),
			MaxConns:    int32(getEnvAsInt("AUDIT_DB_MAX_CONNS", 5)),
			EnsureTable: getEnvAsBool("AUDIT_ENSURE_TABLE", false),
		},
		Keys: KeyProviderConfig{
			Provider:      getEnv("KEY_PROVIDER", "local"),
			KeyPath:       getEnv("SETTINGS_KEY_PATH", "settings.key"),
			CacheTTL:      time.Duration(getEnvAsInt("KEY_CACHE_TTL_SECONDS", 300)) * time.Second,
			LocalBasePath: getEnv("LOCAL_KEY_BASE_PATH", "./secrets"),
			AWSRegion:     getEnv("AWS_REGION", "us-east-1"),
			VaultAddress:  getEnv("VAULT_ADDR", "http://127.0.0.1:8200"),
			VaultToken:    getEnv("VAULT_TOKEN", ""),
			VaultMount:    getEnv("VAULT_MOUNT", "secret"),
		},
		Transport: TransportConfig{
			Timeout:        time.Duration(getEnvAsInt("GATEWAY_TIMEOUT_SECONDS", 30)) * time.Second,
			RateLimit:      getEnvAsFloat("GATEWAY_RATE_LIMIT", 5),
			RateLimitBurst: getEnvAsInt("GATEWAY_RATE_LIMIT_BURST", 5),
		},
		Logger: LoggerConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnvAsBool("LOG_DEVELOPMENT", false),
		},
		Gateway: GatewayProcessConfig{
			SettingsPath: getEnv("GATEWAY_SETTINGS_PATH", "gateway_settings.json"),
			Currency:     getEnv("GATEWAY_CURRENCY", "USD"),
		},
	}

	switch cfg.Keys.Provider {
	case "local", "aws", "vault":
	default:
		return nil, fmt.Errorf("KEY_PROVIDER must be one of local, aws, vault (got %q)", cfg.Keys.Provider)
	}
	if cfg.Keys.Provider == "vault" && cfg.Keys.VaultToken == "" {
		return nil, fmt.Errorf("VAULT_TOKEN is required when KEY_PROVIDER=vault")
	}
	if len(cfg.Gateway.Currency) != 3 {
		return nil, fmt.Errorf("GATEWAY_CURRENCY must be a 3-letter code")
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
