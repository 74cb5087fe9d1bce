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
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// Hosted Postgres convenience:
	// - DATABASE_URL: runtime connection (often a pooler)
	// - DIRECT_URL: direct connection for migrations
	DatabaseURL string
	DirectURL   string

	// PublicBaseURL is the externally reachable URL of the SPA; used for links in emails.
	PublicBaseURL string

	DB DBConfig

	Auth AuthConfig

	Payments PaymentsConfig

	// CORSAllowedOrigins is a comma-separated allowlist of SPA origins. Example:
	//   https://treks.example.com,http://localhost:5173
	CORSAllowedOrigins []string

	// RedisAddr enables the trek catalog cache when set.
	RedisAddr    string
	TrekCacheTTL time.Duration

	Mail MailConfig

	NewRelic NewRelicConfig

	// SupportEmail is printed on invoices (optional).
	SupportEmail string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
	MaxConns int32

	// ApplicationName tags sessions in pg_stat_activity.
	ApplicationName string

	// SimpleProtocol turns off prepared statements for transaction-mode poolers (PgBouncer).
	// It is also on whenever DATABASE_URL carries pgbouncer=true.
	SimpleProtocol bool

	// MaxConnIdle closes pooled connections idle longer than this. Zero keeps pgx's default.
	MaxConnIdle time.Duration
}

type AuthConfig struct {
	// JWTSecret verifies bearer tokens minted by the account service (HS256).
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type PaymentsConfig struct {
	// WebhookSecret is the shared secret the payment gateway signs webhook bodies with.
	WebhookSecret string

	DefaultCurrency string

	// BalanceDueDays is how many days before the trek start the remaining balance of a
	// partial booking falls due.
	BalanceDueDays int
}

type MailConfig struct {
	SendGridAPIKey string
	FromEmail      string
	FromName       string
}

type NewRelicConfig struct {
	AppName    string
	LicenseKey string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8081"
		}
	}

	databaseURL := os.Getenv("DATABASE_URL")
	simpleProtocol := envBool("DB_SIMPLE_PROTOCOL", false) ||
		strings.Contains(strings.ToLower(databaseURL), "pgbouncer=true")

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    databaseURL,
		DirectURL:      os.Getenv("DIRECT_URL"),
		PublicBaseURL:  env("PUBLIC_BASE_URL", "http://localhost:5173"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "trekbooking"),
			User:     env("DB_USER", "trekbooking"),
			Password: env("DB_PASSWORD", "trekbooking"),
			SSLMode:  env("DB_SSLMODE", "disable"),
			MaxConns: int32(envInt("DB_MAX_CONNS", 10)),

			ApplicationName: env("DB_APPLICATION_NAME", "trekbooking-api"),
			SimpleProtocol:  simpleProtocol,
			MaxConnIdle:     envDuration("DB_MAX_CONN_IDLE", 0),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			Issuer:    env("JWT_ISSUER", "trekbooking"),
			TokenTTL:  envDuration("JWT_TTL", 24*time.Hour),
		},
		Payments: PaymentsConfig{
			WebhookSecret:   os.Getenv("PAYMENT_WEBHOOK_SECRET"),
			DefaultCurrency: env("DEFAULT_CURRENCY", "INR"),
			BalanceDueDays:  envInt("BALANCE_DUE_DAYS", 7),
		},
		CORSAllowedOrigins: envList("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:4173"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		TrekCacheTTL:       envDuration("TREK_CACHE_TTL", 5*time.Minute),
		Mail: MailConfig{
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			FromEmail:      env("EMAIL_FROM", "bookings@localhost"),
			FromName:       env("EMAIL_FROM_NAME", "Trek Bookings"),
		},
		NewRelic: NewRelicConfig{
			AppName:    env("NEW_RELIC_APP_NAME", "trekbooking-api"),
			LicenseKey: os.Getenv("NEW_RELIC_LICENSE_KEY"),
		},
		SupportEmail: os.Getenv("SUPPORT_EMAIL"),
	}
}

func (c Config) IsProd() bool {
	return c.AppEnv == "prod"
}

// RuntimeDSN is the connection string the API pool uses: DATABASE_URL when set, otherwise
// one assembled from the DB_* parts.
func (c Config) RuntimeDSN() string {
	if strings.TrimSpace(c.DatabaseURL) != "" {
		return c.DatabaseURL
	}
	sslmode := c.DB.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, sslmode)
}

// MigrationDSN prefers DIRECT_URL so schema changes bypass a pooler.
func (c Config) MigrationDSN() string {
	if strings.TrimSpace(c.DirectURL) != "" {
		return c.DirectURL
	}
	return c.RuntimeDSN()
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
