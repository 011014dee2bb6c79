package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/sudo-init-do/lotengo/internal/db"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SQLiteFile is the database file name created under StorePath.
const SQLiteFile = "lotengo.sqlite"

// Config holds the application configuration
type Config struct {
	Port        string
	StoreDriver string
	StorePath   string
	DatabaseURL string
	JWTSecret   string
	AdminKey    string
	RedisAddr   string
	// ExposeOTP returns password reset codes in the API response.
	ExposeOTP bool
}

// Load reads the environment, after loading .env if there is one.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[config][WARN] .env: %v", err)
	}
	exposeOTP, _ := strconv.ParseBool(os.Getenv("EXPOSE_OTP"))

	return &Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: getEnv("STORE_DRIVER", DriverFile),
		StorePath:   getEnv("STORE_PATH", "./data"),
		DatabaseURL: getEnv("DATABASE_URL", DSN()),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AdminKey:    os.Getenv("ADMIN_KEY"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),
		ExposeOTP:   exposeOTP,
	}
}

// Validate checks what the HTTP server needs to start.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.StoreDriver {
	case DriverMemory, DriverFile, DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("postgres driver needs DATABASE_URL or DB_HOST")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	return nil
}

// DSN builds a postgres URL from the DB_* variables. It is empty when
// DB_HOST is unset.
func DSN() string {
	if os.Getenv("DB_HOST") == "" {
		return ""
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		getEnv("DB_PORT", "5432"),
		os.Getenv("DB_NAME"),
	)
}

// OpenBlobs opens the blob backend selected by cfg. The returned func
// releases it.
func OpenBlobs(ctx context.Context, cfg *Config) (db.BlobStore, func(), error) {
	noop := func() {}
	switch cfg.StoreDriver {
	case DriverMemory:
		return db.NewMemoryBlobs(), noop, nil
	case DriverFile:
		return db.NewFileBlobs(cfg.StorePath), noop, nil
	case DriverSQLite:
		if err := os.MkdirAll(cfg.StorePath, 0o755); err != nil {
			return nil, nil, err
		}
		blobs, err := db.OpenSQLite(filepath.Join(cfg.StorePath, SQLiteFile))
		if err != nil {
			return nil, nil, err
		}
		return blobs, func() {
			if err := blobs.Close(); err != nil {
				log.Printf("[store][WARN] close sqlite: %v", err)
			}
		}, nil
	case DriverPostgres:
		blobs, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return blobs, blobs.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
