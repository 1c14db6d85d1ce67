package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	dbpkg "github.com/yungbote/researchtrack-backend/internal/data/db"
	"github.com/yungbote/researchtrack-backend/internal/observability"
	"github.com/yungbote/researchtrack-backend/internal/platform/envutil"
	"github.com/yungbote/researchtrack-backend/internal/platform/openai"
)

// ConfigPathEnv names an optional YAML file whose values replace the built-in defaults.
// Environment variables still win over the file.
const ConfigPathEnv = "RESEARCHTRACK_CONFIG"

type Config struct {
	Port        string `yaml:"port"`
	LogMode     string `yaml:"log_mode"`
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`

	DBDriver         string `yaml:"db_driver"`
	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	SQLitePath       string `yaml:"sqlite_path"`

	OpenAIAPIKey          string  `yaml:"openai_api_key"`
	OpenAIBaseURL         string  `yaml:"openai_base_url"`
	OpenAIModel           string  `yaml:"openai_model"`
	OpenAITemperature     float64 `yaml:"openai_temperature"`
	ExtractTimeoutSeconds int     `yaml:"extract_timeout_seconds"`

	MetricsEnabled         bool `yaml:"metrics_enabled"`
	DBStatsIntervalSeconds int  `yaml:"db_stats_interval_seconds"`

	OtelEnabled     bool    `yaml:"otel_enabled"`
	OtelExporter    string  `yaml:"otel_exporter"`
	OtelEndpoint    string  `yaml:"otel_endpoint"`
	OtelHeaders     string  `yaml:"otel_headers"`
	OtelInsecure    bool    `yaml:"otel_insecure"`
	OtelSampleRatio float64 `yaml:"otel_sample_ratio"`
}

func defaultConfig() Config {
	return Config{
		Port:        "8080",
		LogMode:     "development",
		ServiceName: "researchtrack",
		Environment: "development",

		DBDriver:     dbpkg.DriverPostgres,
		PostgresHost: "localhost",
		PostgresPort: "5432",
		PostgresUser: "postgres",
		PostgresName: "researchtrack",
		SQLitePath:   "researchtrack.sqlite",

		OpenAIBaseURL:         openai.DefaultBaseURL,
		OpenAIModel:           openai.DefaultModel,
		OpenAITemperature:     openai.DefaultTemperature,
		ExtractTimeoutSeconds: 60,

		MetricsEnabled:         true,
		DBStatsIntervalSeconds: 15,

		OtelExporter:    observability.ExporterStdout,
		OtelSampleRatio: 1,
	}
}

// LoadConfig reads .env (when present), then the optional YAML file, then the environment.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaultConfig()
	if path := strings.TrimSpace(os.Getenv(ConfigPathEnv)); path != "" {
		if err := overlayYAML(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func overlayYAML(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.ServiceName = envutil.String("SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = envutil.String("APP_ENV", cfg.Environment)

	cfg.DBDriver = envutil.String("DB_DRIVER", cfg.DBDriver)
	cfg.PostgresHost = envutil.String("POSTGRES_HOST", cfg.PostgresHost)
	cfg.PostgresPort = envutil.String("POSTGRES_PORT", cfg.PostgresPort)
	cfg.PostgresUser = envutil.String("POSTGRES_USER", cfg.PostgresUser)
	cfg.PostgresPassword = envutil.String("POSTGRES_PASSWORD", cfg.PostgresPassword)
	cfg.PostgresName = envutil.String("POSTGRES_NAME", cfg.PostgresName)
	cfg.SQLitePath = envutil.String("SQLITE_PATH", cfg.SQLitePath)

	cfg.OpenAIAPIKey = envutil.String("OPENAI_API_KEY", cfg.OpenAIAPIKey)
	cfg.OpenAIBaseURL = envutil.String("OPENAI_BASE_URL", cfg.OpenAIBaseURL)
	cfg.OpenAIModel = envutil.String("OPENAI_MODEL", cfg.OpenAIModel)
	cfg.OpenAITemperature = envutil.Float("OPENAI_TEMPERATURE", cfg.OpenAITemperature)
	cfg.ExtractTimeoutSeconds = envutil.Int("EXTRACT_TIMEOUT_SECONDS", cfg.ExtractTimeoutSeconds)

	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.DBStatsIntervalSeconds = envutil.Int("DB_STATS_INTERVAL_SECONDS", cfg.DBStatsIntervalSeconds)

	cfg.OtelEnabled = envutil.Bool("OTEL_ENABLED", cfg.OtelEnabled)
	cfg.OtelExporter = envutil.String("OTEL_EXPORTER", cfg.OtelExporter)
	cfg.OtelEndpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OtelEndpoint)
	cfg.OtelHeaders = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.OtelHeaders)
	cfg.OtelInsecure = envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", cfg.OtelInsecure)
	cfg.OtelSampleRatio = envutil.Float("OTEL_SAMPLE_RATIO", cfg.OtelSampleRatio)
}

func (c Config) DB() dbpkg.Config {
	return dbpkg.Config{
		Driver:           c.DBDriver,
		PostgresHost:     c.PostgresHost,
		PostgresPort:     c.PostgresPort,
		PostgresUser:     c.PostgresUser,
		PostgresPassword: c.PostgresPassword,
		PostgresName:     c.PostgresName,
		SQLitePath:       c.SQLitePath,
	}
}

func (c Config) OpenAI() openai.Config {
	return openai.Config{
		APIKey:      c.OpenAIAPIKey,
		BaseURL:     c.OpenAIBaseURL,
		Model:       c.OpenAIModel,
		Temperature: float32(c.OpenAITemperature),
		Timeout:     seconds(c.ExtractTimeoutSeconds, 60*time.Second),
	}
}

func (c Config) Otel() observability.OtelConfig {
	return observability.OtelConfig{
		Enabled:     c.OtelEnabled,
		ServiceName: c.ServiceName,
		Environment: c.Environment,
		Exporter:    c.OtelExporter,
		Endpoint:    c.OtelEndpoint,
		Headers:     c.OtelHeaders,
		Insecure:    c.OtelInsecure,
		SampleRatio: c.OtelSampleRatio,
	}
}

func (c Config) DBStatsInterval() time.Duration {
	return seconds(c.DBStatsIntervalSeconds, 15*time.Second)
}

func seconds(n int, def time.Duration) time.Duration {
	if n <= 0 {
		return def
	}
	return time.Duration(n) * time.Second
}
