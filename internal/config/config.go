package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store driver names accepted in STORE_DRIVER.
const (
	DriverFile    = "file"
	DriverSurreal = "surreal"
)

// Config holds all configuration for the application.
type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string

	// StoreDriver selects the chatroom store backend: "file" or "surreal".
	StoreDriver string
	// StorePath is the document path for the file driver.
	StorePath string

	SurrealURL  string
	SurrealUser string
	SurrealPass string
	SurrealNS   string
	SurrealDB   string

	// SessionSecret signs the viewer-identity cookie session.
	SessionSecret string

	// MarkerTTL bounds a marker's lifetime; zero disables the expiry sweep.
	MarkerTTL time.Duration
	// SweepInterval is how often expired markers are collected.
	SweepInterval time.Duration
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		Addr:          getEnv("PLACETALK_ADDR", ":4000"),
		StoreDriver:   getEnv("STORE_DRIVER", DriverFile),
		StorePath:     getEnv("STORE_PATH", "db.json"),
		SurrealURL:    os.Getenv("SURREAL_URL"),
		SurrealUser:   os.Getenv("SURREAL_USER"),
		SurrealPass:   os.Getenv("SURREAL_PASS"),
		SurrealNS:     os.Getenv("SURREAL_NS"),
		SurrealDB:     os.Getenv("SURREAL_DB"),
		SessionSecret: getEnv("SESSION_SECRET", "placetalk-dev-secret"),
		MarkerTTL:     getDuration("MARKER_TTL", 0),
		SweepInterval: getDuration("SWEEP_INTERVAL", time.Hour),
	}

	if cfg.StoreDriver != DriverFile && cfg.StoreDriver != DriverSurreal {
		log.Fatalf("STORE_DRIVER must be %q or %q, got %q", DriverFile, DriverSurreal, cfg.StoreDriver)
	}
	if cfg.StoreDriver == DriverSurreal && (cfg.SurrealURL == "" || cfg.SurrealNS == "" || cfg.SurrealDB == "") {
		log.Fatal("Required environment variables SURREAL_URL, SURREAL_NS, or SURREAL_DB are not set.")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s is not a valid duration: %v", key, err)
	}
	return d
}
