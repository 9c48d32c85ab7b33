package config

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string        `mapstructure:"PORT"`
	Env         string        `mapstructure:"ENV"`
	DatabaseURL string        `mapstructure:"DATABASE_URL"`
	DBName      string        `mapstructure:"DB_NAME"`
	DBUser      string        `mapstructure:"DB_USER"`
	DBPassword  string        `mapstructure:"DB_PASSWORD"`
	DBHost      string        `mapstructure:"DB_HOST"`
	DBPort      string        `mapstructure:"DB_PORT"`
	DBSSLMode   string        `mapstructure:"DB_SSLMODE"`
	DBMaxConns  int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32         `mapstructure:"DB_MIN_CONNS"`
	JWTSecret   string        `mapstructure:"JWT_SECRET"`
	JWTTTL      time.Duration `mapstructure:"JWT_TTL"`
	BcryptCost  int           `mapstructure:"BCRYPT_COST"`
	CORSOrigins []string      `mapstructure:"CORS_ORIGINS"`

	LoginRateLimitRPS   float64 `mapstructure:"LOGIN_RATE_LIMIT_RPS"`
	LoginRateLimitBurst int     `mapstructure:"LOGIN_RATE_LIMIT_BURST"`

	LogLevel          string `mapstructure:"LOG_LEVEL"`
	LogFile           string `mapstructure:"LOG_FILE"`
	LogFileMaxSizeMB  int    `mapstructure:"LOG_FILE_MAX_SIZE_MB"`
	LogFileMaxBackups int    `mapstructure:"LOG_FILE_MAX_BACKUPS"`
	LogFileMaxAgeDays int    `mapstructure:"LOG_FILE_MAX_AGE_DAYS"`
	MetricsEnabled    bool   `mapstructure:"METRICS_ENABLED"`
}

// keys lists every environment variable bound by Load.
var keys = []string{
	"PORT", "ENV", "DATABASE_URL",
	"DB_NAME", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_SSLMODE",
	"DB_MAX_CONNS", "DB_MIN_CONNS",
	"JWT_SECRET", "JWT_TTL", "BCRYPT_COST", "CORS_ORIGINS",
	"LOGIN_RATE_LIMIT_RPS", "LOGIN_RATE_LIMIT_BURST",
	"LOG_LEVEL", "LOG_FILE", "LOG_FILE_MAX_SIZE_MB", "LOG_FILE_MAX_BACKUPS", "LOG_FILE_MAX_AGE_DAYS",
	"METRICS_ENABLED",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_NAME", "hospital")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("LOGIN_RATE_LIMIT_RPS", 5)
	v.SetDefault("LOGIN_RATE_LIMIT_BURST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_FILE_MAX_BACKUPS", 5)
	v.SetDefault("LOG_FILE_MAX_AGE_DAYS", 30)
	v.SetDefault("METRICS_ENABLED", true)

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.buildDatabaseURL()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SigningKey returns the HMAC key used for session tokens. Development mode
// falls back to a fixed key so the server can start without configuration.
func (c *Config) SigningKey() []byte {
	if c.JWTSecret == "" && c.IsDev() {
		return []byte("hms-development-signing-key-not-for-production")
	}
	return []byte(c.JWTSecret)
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL or DB_NAME/DB_HOST is required")
	}
	if !c.IsDev() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when ENV=%q", c.Env)
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes in production, got %d", len(c.JWTSecret))
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("invalid pool size: min=%d max=%d", c.DBMinConns, c.DBMaxConns)
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	return nil
}

func (c *Config) buildDatabaseURL() string {
	if c.DBName == "" || c.DBHost == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.DBHost, c.DBPort),
		Path:   "/" + c.DBName,
	}
	if c.DBPassword != "" {
		u.User = url.UserPassword(c.DBUser, c.DBPassword)
	} else {
		u.User = url.User(c.DBUser)
	}
	if c.DBSSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(c.DBSSLMode)
	}
	return u.String()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
