package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Server struct {
	Port int `envconfig:"PORT" default:"3000"`
}

type DB struct {
	Driver     string `envconfig:"DRIVER" default:"postgres"` // postgres | sqlite
	URL        string `envconfig:"URL"`
	Host       string `envconfig:"HOST" default:"localhost"`
	User       string `envconfig:"USER"`
	Password   string `envconfig:"PASSWORD"`
	Name       string `envconfig:"NAME"`
	Port       string `envconfig:"PORT" default:"5432"`
	SQLitePath string `envconfig:"SQLITE_PATH" default:"retreat.db"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" default:"your-super-secret-key-change-in-production"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"24h"`
}

type Redis struct {
	URL string        `envconfig:"URL"` // empty disables the catalog cache
	TTL time.Duration `envconfig:"TTL" default:"5m"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"20"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level  int    `envconfig:"LEVEL" default:"0"` // slog levels: -4 debug, 0 info, 4 warn, 8 error
	Format string `envconfig:"FORMAT" default:"text"`
}

type Seed struct {
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:"admin123"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	DB        *DB        `envconfig:"DATABASE"`
	Jwt       *Jwt       `envconfig:"JWT"`
	Redis     *Redis     `envconfig:"REDIS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Log       *Log       `envconfig:"LOG"`
	Seed      *Seed      `envconfig:"SEED"`
}

// Load reads an optional .env file and decodes the environment into App
func Load(envFiles ...string) (*App, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Warn("No .env file found, using system environment variables")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}
	if cfg.DB.Driver != "postgres" && cfg.DB.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DB.Driver)
	}

	slog.Info("App config loaded",
		"env", cfg.Env,
		"port", cfg.Server.Port,
		"db_driver", cfg.DB.Driver,
		"db", maskValue(cfg.DB.URL),
		"jwt_expiry", cfg.Jwt.Expiry,
		"redis", maskValue(cfg.Redis.URL),
	)
	return &cfg, nil
}

// DSN returns the Postgres connection string, preferring DATABASE_URL
func (d *DB) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port,
	)
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
