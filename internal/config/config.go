package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Order store backends.
const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"
)

const (
	defaultPort           = 3000
	defaultUnitPriceCents = 14900
)

// Config is the process configuration, read from the environment.
type Config struct {
	Port           int
	DatabaseURL    string
	PGSSL          string
	CORSOrigins    []string // empty allows any origin
	UnitPriceCents int
	LogLevel       string

	OrderStore       string
	OrdersTable      string
	QueueURL         string
	MetricsNamespace string

	// Lambda is true when running inside the Lambda runtime and RUN_LOCAL is not set.
	Lambda bool

	SMTP SMTPConfig
}

// SMTPConfig configures the confirmation mailer used by the worker.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether enough is configured to actually send mail.
func (s SMTPConfig) Enabled() bool { return s.Host != "" && s.From != "" }

// Load reads an optional .env file and then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables, applying defaults.
func FromEnv() (Config, error) {
	var err error
	cfg := Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		PGSSL:            os.Getenv("PGSSL"),
		CORSOrigins:      splitList(os.Getenv("CORS_ORIGIN")),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		OrderStore:       strings.ToLower(getEnv("ORDER_STORE", StorePostgres)),
		OrdersTable:      getEnv("ORDERS_TABLE", "orders"),
		QueueURL:         os.Getenv("ORDERS_QUEUE_URL"),
		MetricsNamespace: os.Getenv("METRICS_NAMESPACE"),
		Lambda:           os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" && os.Getenv("RUN_LOCAL") != "true",
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("MAIL_FROM"),
		},
	}

	if cfg.Port, err = getInt("PORT", defaultPort); err != nil {
		return Config{}, err
	}
	if cfg.UnitPriceCents, err = getInt("PRICE_CENTS", defaultUnitPriceCents); err != nil {
		return Config{}, err
	}
	if cfg.SMTP.Port, err = getInt("SMTP_PORT", 587); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.UnitPriceCents < 0 {
		return fmt.Errorf("PRICE_CENTS must not be negative: %d", c.UnitPriceCents)
	}
	switch c.OrderStore {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when ORDER_STORE=postgres")
		}
	case StoreDynamoDB:
		if c.OrdersTable == "" {
			return errors.New("ORDERS_TABLE is required when ORDER_STORE=dynamodb")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown ORDER_STORE %q", c.OrderStore)
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

// NeedsAWS reports whether any AWS client will be used.
func (c Config) NeedsAWS() bool {
	return c.OrderStore == StoreDynamoDB || c.QueueURL != "" || c.MetricsNamespace != ""
}

// PostgresDSN returns DATABASE_URL with sslmode set from PGSSL, unless the
// URL already names an sslmode.
func (c Config) PostgresDSN() string {
	mode := "disable"
	if strings.EqualFold(c.PGSSL, "require") {
		mode = "require"
	}
	dsn := c.DatabaseURL
	if strings.Contains(dsn, "sslmode=") {
		return dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("sslmode", mode)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return strings.TrimSpace(dsn + " sslmode=" + mode)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
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
