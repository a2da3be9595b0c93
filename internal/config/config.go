package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type ServerConfig struct {
	Port            string
	Env             string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	AdminUser       string
	AdminPassword   string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// URL returns the pgx connection string for the application database.
func (c DatabaseConfig) URL() string {
	return c.url(c.User, c.Password, c.Name)
}

// AdminURL connects to the maintenance database with the admin role, used
// to create the application database.
func (c DatabaseConfig) AdminURL() string {
	user, password := c.AdminUser, c.AdminPassword
	if user == "" {
		user, password = c.User, c.Password
	}
	return c.url(user, password, "postgres")
}

func (c DatabaseConfig) url(user, password, name string) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

type MediaConfig struct {
	Root           string
	BaseURL        string
	MaxUploadBytes int64
}

type LogConfig struct {
	Level string
}

type MetricsConfig struct {
	Prefix string
}

// SiteConfig is the branding shown by the admin front end.
type SiteConfig struct {
	Header     string `json:"site_header"`
	Title      string `json:"site_title"`
	IndexTitle string `json:"index_title"`
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Media    MediaConfig
	Log      LogConfig
	Metrics  MetricsConfig
	Site     SiteConfig
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			AllowedOrigins:  getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USERNAME", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Name:            getEnv("DB_DATABASE", "brokerage"),
			AdminUser:       getEnv("DB_ADMIN_USER", ""),
			AdminPassword:   getEnv("DB_ADMIN_PASSWORD", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConns:        int32(getEnvAsInt("DB_MAX_CONNS", 25)),
			MinConns:        int32(getEnvAsInt("DB_MIN_CONNS", 5)),
			MaxConnLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("ACCESS_TOKEN_SECRET", ""),
			RefreshSecret: getEnv("REFRESH_TOKEN_SECRET", ""),
			AccessTTL:     getEnvAsDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    getEnvAsDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		},
		Media: MediaConfig{
			Root:           getEnv("MEDIA_ROOT", "./media"),
			BaseURL:        getEnv("MEDIA_URL", "/media"),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_MB", 50)) << 20,
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", "brokerage"),
		},
		Site: SiteConfig{
			Header:     getEnv("SITE_HEADER", "Brokerage Administration"),
			Title:      getEnv("SITE_TITLE", "Brokerage Admin"),
			IndexTitle: getEnv("SITE_INDEX_TITLE", "Catalog management"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

func (c *Config) validate() error {
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		if c.IsProduction() {
			return errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required in production")
		}
		if c.JWT.AccessSecret == "" {
			c.JWT.AccessSecret = "dev-access-secret"
		}
		if c.JWT.RefreshSecret == "" {
			c.JWT.RefreshSecret = "dev-refresh-secret"
		}
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	return nil
}

// LogFields describes the configuration without secrets.
func (c *Config) LogFields() []zap.Field {
	return []zap.Field{
		zap.String("environment", c.Server.Env),
		zap.String("port", c.Server.Port),
		zap.String("db_host", c.Database.Host),
		zap.String("db_port", c.Database.Port),
		zap.String("db_user", c.Database.User),
		zap.String("db_name", c.Database.Name),
		zap.String("redis_addr", c.Redis.Addr),
		zap.String("media_root", c.Media.Root),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
