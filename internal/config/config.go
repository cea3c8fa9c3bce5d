package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string
	DBDSN         string
	DBPool        DBPoolConfig
	ServerPort    string
	GinMode       string
	SessionSecret string
	JWTSecret     string
	JWTExpiration time.Duration
	LogLevel      string
	CORSOrigins   []string
	SeedFile      string

	AdminUsername string
	AdminPassword string

	Recalc RecalcConfig
	SMTP   SMTPConfig
}

// DBPoolConfig sizes the database/sql connection pool behind gorm.
type DBPoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RecalcConfig drives the monthly profile recalculation.
type RecalcConfig struct {
	Enabled bool
	Cron    string // "m h dom * *"
	Workers int
}

type SMTPConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string
	SkipTLSVerify bool
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.From != ""
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBDriver: getEnv("DB_DRIVER", "postgres"),
		DBDSN:    os.Getenv("DB_DSN"),
		DBPool: DBPoolConfig{
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
		},
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		SeedFile:      os.Getenv("SEED_FILE"),
		AdminUsername: getEnv("ADMIN_USERNAME", "superadmin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "Admin123!"),
		Recalc: RecalcConfig{
			Enabled: getBool("RECALC_ENABLED", true),
			Cron:    getEnv("RECALC_CRON", "0 2 1 * *"),
			Workers: getInt("RECALC_WORKERS", 4),
		},
		SMTP: SMTPConfig{
			Host:          os.Getenv("SMTP_HOST"),
			Port:          getInt("SMTP_PORT", 587),
			User:          os.Getenv("SMTP_USER"),
			Pass:          os.Getenv("SMTP_PASS"),
			From:          os.Getenv("SMTP_FROM"),
			SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		},
	}

	lifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}
	cfg.DBPool.ConnMaxLifetime = lifetime

	exp, err := time.ParseDuration(getEnv("JWT_EXPIRATION", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION: %w", err)
	}
	cfg.JWTExpiration = exp

	for _, o := range strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSOrigins = append(cfg.CORSOrigins, o)
		}
	}

	switch cfg.DBDriver {
	case "postgres", "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is not set")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}
	if cfg.Recalc.Workers < 1 {
		cfg.Recalc.Workers = 1
	}

	return cfg, nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return n
}

func getBool(key string, def bool) bool {
	b, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return def
	}
	return b
}
