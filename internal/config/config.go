package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MinIO     MinIOConfig
	AI        AIConfig
	Auth      AuthConfig
	Export    ExportConfig
	RateLimit RateLimitConfig
	Telemetry TelemetryConfig
	LogLevel  string
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int
}

type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// MinIOConfig holds object storage settings for exported PDFs.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	URLExpiry time.Duration
}

type AIConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Language string
	Timeout  time.Duration
}

type AuthConfig struct {
	JWTSecret    string
	OIDCIssuer   string
	OIDCClientID string
}

type ExportConfig struct {
	Scale      float64
	Quality    int
	MaxWidthPx int
	ChromePath string
	Timeout    time.Duration
	OutputDir  string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

type TelemetryConfig struct {
	ServiceName string
	Disabled    bool
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first; real environment variables take precedence.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3000")
	v.SetDefault("SERVER_READ_TIMEOUT", "30s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "120s")
	v.SetDefault("SERVER_BODY_LIMIT", 4*1024*1024)
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("REDIS_PREFIX", "resume-builder:")
	v.SetDefault("MINIO_URL_EXPIRY", "15m")
	v.SetDefault("AI_BASE_URL", "https://api.openai.com")
	v.SetDefault("AI_MODEL", "gpt-4o-mini")
	v.SetDefault("AI_TIMEOUT", "30s")
	v.SetDefault("EXPORT_SCALE", 3.0)
	v.SetDefault("EXPORT_QUALITY", 95)
	v.SetDefault("EXPORT_TIMEOUT", "60s")
	v.SetDefault("EXPORT_OUTPUT_DIR", "exports")
	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)
	v.SetDefault("OTEL_SERVICE_NAME", "resume-builder")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
			BodyLimit:    v.GetInt("SERVER_BODY_LIMIT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			Prefix:   v.GetString("REDIS_PREFIX"),
		},
		MinIO: MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			URLExpiry: v.GetDuration("MINIO_URL_EXPIRY"),
		},
		AI: AIConfig{
			BaseURL:  v.GetString("AI_BASE_URL"),
			APIKey:   firstSet(os.Getenv("AI_API_KEY"), os.Getenv("OPENAI_API_KEY")),
			Model:    v.GetString("AI_MODEL"),
			Language: v.GetString("AI_LANGUAGE"),
			Timeout:  v.GetDuration("AI_TIMEOUT"),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			OIDCIssuer:   v.GetString("OIDC_ISSUER"),
			OIDCClientID: v.GetString("OIDC_CLIENT_ID"),
		},
		Export: ExportConfig{
			Scale:      v.GetFloat64("EXPORT_SCALE"),
			Quality:    v.GetInt("EXPORT_QUALITY"),
			MaxWidthPx: v.GetInt("EXPORT_MAX_WIDTH_PX"),
			ChromePath: firstSet(v.GetString("EXPORT_CHROME_PATH"), os.Getenv("CHROME_PATH")),
			Timeout:    v.GetDuration("EXPORT_TIMEOUT"),
			OutputDir:  v.GetString("EXPORT_OUTPUT_DIR"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Telemetry: TelemetryConfig{
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Disabled:    v.GetBool("OTEL_SDK_DISABLED"),
		},
		LogLevel: v.GetString("LOG_LEVEL"),
	}

	if cfg.Auth.JWTSecret == "" && cfg.Auth.OIDCIssuer == "" {
		slog.Warn("config: neither JWT_SECRET nor OIDC_ISSUER is set; every request is anonymous")
	}
	return cfg, nil
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func firstSet(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
