// Package config provides centralized configuration management.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback), optionally read from a .env file
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	baseURL := cfg.API.BaseURL
//	dbPath := cfg.Storage.DatabasePath
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the entire application configuration
type Config struct {
	API           APIConfig           `yaml:"api"`
	Dashboard     DashboardConfig     `yaml:"dashboard"`
	Server        ServerConfig        `yaml:"server"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// APIConfig holds the remote editions API settings
type APIConfig struct {
	// BaseURL is the API host. Data lives under /v2/, tokens under /oauth.
	BaseURL         string        `yaml:"base_url" validate:"required,url"`
	TokenURL        string        `yaml:"token_url" validate:"omitempty,url"`
	ClientID        string        `yaml:"client_id"`
	ClientSecret    string        `yaml:"client_secret"`
	Timeout         time.Duration `yaml:"timeout" validate:"gte=0"`
	CoalesceRefresh bool          `yaml:"coalesce_refresh"`
}

// DataURL returns the base URL for data requests.
func (a APIConfig) DataURL() string {
	return strings.TrimRight(a.BaseURL, "/") + "/v2/"
}

// OAuthURL returns the client-credentials endpoint.
func (a APIConfig) OAuthURL() string {
	if a.TokenURL != "" {
		return a.TokenURL
	}
	return strings.TrimRight(a.BaseURL, "/") + "/oauth"
}

// DashboardConfig holds dashboard session settings
type DashboardConfig struct {
	DefaultLimit    int           `yaml:"default_limit" validate:"gte=0"`
	DetailCacheSize int           `yaml:"detail_cache_size" validate:"gte=0"`
	DetailCacheTTL  time.Duration `yaml:"detail_cache_ttl" validate:"gte=0"`
	SessionIdleTTL  time.Duration `yaml:"session_idle_ttl" validate:"gte=0"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port           int      `yaml:"port" validate:"gte=0,lte=65535"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageConfig holds database configuration
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" validate:"required"`
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=maven text json pretty"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TracingConfig controls OTLP trace export
type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint" validate:"required_if=Enabled true"`
	ServiceName string `yaml:"service_name"`
	Insecure    bool   `yaml:"insecure"`
}

// Load reads and parses the config file, filling unset fields with defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${CLIENT_SECRET})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Dashboard: DashboardConfig{
			DefaultLimit:    10,
			DetailCacheSize: 1000,
			DetailCacheTTL:  5 * time.Minute,
			SessionIdleTTL:  time.Hour,
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
		},
		Storage: StorageConfig{
			DatabasePath: "dashboard.db",
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  "info",
				Format: "maven",
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
			Tracing: TracingConfig{
				ServiceName: "edition-dashboard",
			},
		},
	}
}

// LoadFromEnv loads configuration from environment variables only.
// A .env file in the working directory is read first when present.
func LoadFromEnv() *Config {
	_ = godotenv.Load()

	def := Default()
	return &Config{
		API: APIConfig{
			BaseURL:         os.Getenv("BASE_URL_API"),
			TokenURL:        os.Getenv("TOKEN_URL_API"),
			ClientID:        os.Getenv("CLIENT_ID"),
			ClientSecret:    os.Getenv("CLIENT_SECRET"),
			Timeout:         getEnvDuration("API_TIMEOUT", def.API.Timeout),
			CoalesceRefresh: getEnvBool("API_COALESCE_REFRESH", false),
		},
		Dashboard: DashboardConfig{
			DefaultLimit:    getEnvInt("DASHBOARD_DEFAULT_LIMIT", def.Dashboard.DefaultLimit),
			DetailCacheSize: getEnvInt("DASHBOARD_DETAIL_CACHE_SIZE", def.Dashboard.DetailCacheSize),
			DetailCacheTTL:  getEnvDuration("DASHBOARD_DETAIL_CACHE_TTL", def.Dashboard.DetailCacheTTL),
			SessionIdleTTL:  getEnvDuration("DASHBOARD_SESSION_IDLE_TTL", def.Dashboard.SessionIdleTTL),
		},
		Server: ServerConfig{
			Port:           getEnvInt("PORT", def.Server.Port),
			AllowedOrigins: getEnvList("ALLOWED_ORIGINS", def.Server.AllowedOrigins),
		},
		Storage: StorageConfig{
			DatabasePath: getEnv("DASHBOARD_DB_PATH", def.Storage.DatabasePath),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", def.Observability.Logging.Level),
				Format: getEnv("LOG_FORMAT", def.Observability.Logging.Format),
			},
			Metrics: MetricsConfig{
				Enabled: getEnvBool("METRICS_ENABLED", def.Observability.Metrics.Enabled),
				Path:    getEnv("METRICS_PATH", def.Observability.Metrics.Path),
			},
			Tracing: TracingConfig{
				Enabled:     getEnvBool("TRACING_ENABLED", false),
				Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
				ServiceName: getEnv("OTEL_SERVICE_NAME", def.Observability.Tracing.ServiceName),
				Insecure:    getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", false),
			},
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath("config.yaml")
}

// LoadOrEnvWithPath tries to load from specified path, falls back to environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports every invalid field at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getEnvInt retrieves an integer environment variable with a fallback default
func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
