package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort       string `env:"APP_PORT" envDefault:"8080"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`
	SecretKey     string `env:"SECRET_KEY,required,notEmpty"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL" envDefault:"http://localhost:8080"`
	Organization  string `env:"ORGANIZATION" envDefault:"DIT Robotics"`

	FacebookAppID     string `env:"FACEBOOK_APP_ID,required,notEmpty"`
	FacebookAppSecret string `env:"FACEBOOK_APP_SECRET,required,notEmpty"`

	// StaffIDs replaces the built-in allow-list when set.
	StaffIDs []string `env:"STAFF_IDS" envSeparator:","`

	SQLitePath string `env:"SQLITE_PATH" envDefault:"ditrobotics.db"`
	DBHost     string `env:"DB_HOST"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBName     string `env:"DB_NAME" envDefault:"ditrobotics"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	LoginRateLimit float64 `env:"LOGIN_RATE_LIMIT" envDefault:"1"`
	LoginRateBurst int     `env:"LOGIN_RATE_BURST" envDefault:"5"`
}

// Load reads an optional .env file and then the process environment.
// Missing required values are returned as an error; nothing is defaulted
// silently.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return Parse()
}

// Parse reads the configuration from the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var missing []string
	if !c.Debug {
		if c.DBHost == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.DBUser == "" {
			missing = append(missing, "DB_USER")
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("config: production requires %s", strings.Join(missing, ", "))
	}
	if _, err := url.Parse(c.PublicBaseURL); err != nil {
		return fmt.Errorf("config: invalid PUBLIC_BASE_URL: %w", err)
	}
	return nil
}

// Database returns the sql driver name and DSN. Debug mode uses a local
// SQLite file; production assembles a Postgres URL from its parts.
func (c Config) Database() (driver string, dsn string) {
	if c.Debug {
		return DriverSQLite, "file:" + c.SQLitePath + "?_pragma=busy_timeout(5000)"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return DriverPostgres, u.String()
}

// CallbackURL is the redirect_uri registered with the OAuth provider.
func (c Config) CallbackURL() string {
	return strings.TrimRight(c.PublicBaseURL, "/") + "/authorized"
}

// SecureCookies reports whether cookies must carry the Secure flag.
func (c Config) SecureCookies() bool {
	return strings.HasPrefix(c.PublicBaseURL, "https://")
}
